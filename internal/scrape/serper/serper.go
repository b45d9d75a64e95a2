// Package serper is a client for the google.serper.dev search proxy.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/scrape/util"
)

const DefaultEndpoint = "https://google.serper.dev"

type Config struct {
	Endpoint string
	APIKey   string
	Num      int
	NewsNum  int
	GL       string
	HL       string
	Timeout  time.Duration
}

type Client struct {
	cfg Config
	hc  *http.Client
	lim *util.HostLimiter
}

func New(cfg Config, lim *util.HostLimiter) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Num <= 0 {
		cfg.Num = 50
	}
	if cfg.NewsNum <= 0 {
		cfg.NewsNum = 5
	}
	if cfg.GL == "" {
		cfg.GL = "us"
	}
	if cfg.HL == "" {
		cfg.HL = "en"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{cfg: cfg, hc: &http.Client{Timeout: cfg.Timeout}, lim: lim}
}

func (c *Client) Name() string { return "serper" }

// Search returns organic results. Failures are logged and yield nil.
func (c *Client) Search(ctx context.Context, query string) []domain.Candidate {
	body, err := c.post(ctx, "/search", query, c.cfg.Num)
	if err != nil {
		log.Printf("[serper] search failed q=%q err=%v", query, err)
		return nil
	}
	return candidates(body, "organic")
}

// News returns recent articles about query.
func (c *Client) News(ctx context.Context, query string) []domain.Candidate {
	body, err := c.post(ctx, "/news", query, c.cfg.NewsNum)
	if err != nil {
		log.Printf("[serper] news failed q=%q err=%v", query, err)
		return nil
	}
	return candidates(body, "news")
}

type request struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

func (c *Client) post(ctx context.Context, path, query string, num int) ([]byte, error) {
	u := c.cfg.Endpoint + path
	if err := c.lim.WaitURL(ctx, u); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request{Q: query, Num: num, GL: c.cfg.GL, HL: c.cfg.HL})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", res.StatusCode, util.Clip(strings.TrimSpace(string(body)), 200))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed json response")
	}
	return body, nil
}

func candidates(body []byte, key string) []domain.Candidate {
	var out []domain.Candidate
	for _, r := range gjson.GetBytes(body, key).Array() {
		link := strings.TrimSpace(r.Get("link").String())
		if link == "" {
			continue
		}
		out = append(out, domain.Candidate{
			SourceURL: link,
			Title:     util.CleanText(r.Get("title").String()),
			Snippet:   util.CleanText(r.Get("snippet").String()),
			Date:      strings.TrimSpace(r.Get("date").String()),
		})
	}
	return out
}
