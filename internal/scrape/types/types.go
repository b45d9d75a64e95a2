package types

import (
	"context"

	"leadhunt-engine/internal/domain"
)

// Searcher is a web search backend. Implementations swallow transport and decode
// failures and return an empty slice; they never return an error.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) []domain.Candidate
}

// NewsSearcher is implemented by backends that expose a news vertical.
type NewsSearcher interface {
	News(ctx context.Context, query string) []domain.Candidate
}

// ScrapeStatus is the last-run summary served at /scrape/status.
type ScrapeStatus struct {
	RunID     string `json:"run_id"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Running   bool   `json:"running"`
}

// SearcherFunc adapts a plain function to Searcher.
type SearcherFunc func(ctx context.Context, query string) []domain.Candidate

func (f SearcherFunc) Name() string { return "func" }

func (f SearcherFunc) Search(ctx context.Context, query string) []domain.Candidate {
	return f(ctx, query)
}
