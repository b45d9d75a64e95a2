// Package ddg searches the DuckDuckGo HTML endpoint. It needs no credential.
package ddg

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/scrape/util"
)

const DefaultEndpoint = "https://html.duckduckgo.com/html/"

type Client struct {
	endpoint string
	hc       *http.Client
	lim      *util.HostLimiter
	max      int
}

func New(endpoint string, timeout time.Duration, maxResults int, lim *util.HostLimiter) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{endpoint: endpoint, hc: &http.Client{Timeout: timeout}, lim: lim, max: maxResults}
}

func (c *Client) Name() string { return "duckduckgo" }

func (c *Client) Search(ctx context.Context, query string) []domain.Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	u := c.endpoint + "?q=" + url.QueryEscape(query)
	if err := c.lim.WaitURL(ctx, u); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		log.Printf("[ddg] search failed q=%q err=%v", query, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[ddg] search status=%d q=%q", resp.StatusCode, query)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Printf("[ddg] parse failed q=%q err=%v", query, err)
		return nil
	}
	return c.parse(doc)
}

func (c *Client) parse(doc *goquery.Document) []domain.Candidate {
	var out []domain.Candidate
	// DDG HTML results: <div class="result"><a class="result__a" href="//duckduckgo.com/l/?uddg=...">
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		a := s.Find("a.result__a").First()
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		if strings.HasPrefix(href, "//") {
			href = "https:" + href
		}
		target := util.UnwrapRedirect(href)
		if target == "" {
			return true
		}
		out = append(out, domain.Candidate{
			SourceURL: target,
			Title:     util.CleanText(a.Text()),
			Snippet:   util.CleanText(s.Find(".result__snippet").First().Text()),
		})
		return c.max <= 0 || len(out) < c.max
	})
	return out
}
