package scrape

import (
	"database/sql"
	"time"

	"golang.org/x/time/rate"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/ledger"
	"leadhunt-engine/internal/rank"
	"leadhunt-engine/internal/report"
	"leadhunt-engine/internal/resolve"
	"leadhunt-engine/internal/scrape/types"
)

// Runner drives the company pipeline. One identity is processed fully before the
// next begins; the only shared state is the ledger.
type Runner struct {
	Cfg    config.Config
	Search types.Searcher
	Ledger *ledger.Ledger

	News     types.NewsSearcher // optional, used when search.include_news
	Pages    resolve.PageNamer  // optional display-name scrape
	Resolver *resolve.Resolver  // optional, needed for name inputs
	DB       *sql.DB            // optional postings mirror
	Scorer   rank.Scorer        // optional
	Notifier report.Notifier    // optional
	Hub      *events.Hub        // optional

	// Pace is waited on between identities. nil means no courtesy delay.
	Pace *rate.Limiter

	// Progress is called after each input with (done, total).
	Progress func(done, total int)

	Now func() time.Time
}

// Result summarizes one run.
type Result struct {
	RunID     string
	Inputs    int
	Companies int
	Checked   int
	Added     []domain.PostingRecord
	Skipped   map[string]int
	Lines     []string // plaintext report
	MapLines  []string // company map
}

func (r *Result) skip(reason string) {
	if r.Skipped == nil {
		r.Skipped = map[string]int{}
	}
	r.Skipped[reason]++
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) source() string {
	if r.Search == nil {
		return ""
	}
	return r.Search.Name()
}
