package resolve

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadhunt-engine/internal/scrape/util"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// PageNamer returns the display name a company page advertises.
type PageNamer interface {
	PageName(ctx context.Context, pageURL string) (string, bool)
}

// HTTPPageNamer reads og:title (or <title>) from the live page.
type HTTPPageNamer struct {
	Client  *http.Client
	Limiter *util.HostLimiter
}

func NewHTTPPageNamer(timeout time.Duration, lim *util.HostLimiter) *HTTPPageNamer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPPageNamer{Client: &http.Client{Timeout: timeout}, Limiter: lim}
}

func (p *HTTPPageNamer) PageName(ctx context.Context, pageURL string) (string, bool) {
	if err := p.Limiter.WaitURL(ctx, pageURL); err != nil {
		return "", false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", false
	}
	return nameFromDocument(doc)
}

func nameFromDocument(doc *goquery.Document) (string, bool) {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if name := util.CleanText(og); name != "" {
			return name, true
		}
	}
	title := util.CleanText(util.StripLinkedInSuffix(doc.Find("title").First().Text()))
	title = strings.TrimSpace(title)
	return title, title != ""
}
