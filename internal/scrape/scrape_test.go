package scrape

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/ledger"
	"leadhunt-engine/internal/rank"
	"leadhunt-engine/internal/resolve"
	"leadhunt-engine/internal/scrape/email"
	"leadhunt-engine/internal/store"
)

// fakeSearch answers from a fixed query table and records every query.
type fakeSearch struct {
	results map[string][]domain.Candidate
	queries []string
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) Search(_ context.Context, q string) []domain.Candidate {
	f.queries = append(f.queries, q)
	return f.results[q]
}

func (f *fakeSearch) News(_ context.Context, q string) []domain.Candidate {
	return []domain.Candidate{{Title: q + " raises round", SourceURL: "https://news.example.com/1"}}
}

type fakePages map[string]string

func (p fakePages) PageName(_ context.Context, u string) (string, bool) {
	n, ok := p[u]
	return n, ok
}

type sent struct {
	rec   domain.PostingRecord
	score int
}

type fakeNotifier struct{ sent []sent }

func (n *fakeNotifier) Notify(_ context.Context, rec domain.PostingRecord, score int) error {
	n.sent = append(n.sent, sent{rec, score})
	return nil
}

const acmeInput = "https://www.linkedin.com/company/acme-corp/"

func view(id string) string { return "https://www.linkedin.com/jobs/view/" + id }

func acmeSearch() *fakeSearch {
	return &fakeSearch{results: map[string][]domain.Candidate{
		"linkedin.com acme-corp jobs": {
			{SourceURL: view("111")},
			{SourceURL: view("222")},
			{SourceURL: view("333")},
			{SourceURL: view("111")},
			{SourceURL: view("444")},
			{SourceURL: "https://www.linkedin.com/company/acme-corp/"},
		},
		view("111"): {
			{SourceURL: "https://example.com/unrelated", Title: "noise"},
			{SourceURL: view("111"), Title: "Data Engineering Lead | LinkedIn", Snippet: "Posted 3 days ago. Build data engineering pipelines."},
		},
		view("222"): {{SourceURL: view("222"), Title: "Java Developer - LinkedIn", Snippet: "Posted 2 days ago. Spring."}},
		view("333"): {{SourceURL: view("333"), Title: "Data Engineering Manager", Snippet: "Posted 6 weeks ago."}},
	}}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input.Keywords = []string{"data engineering"}
	cfg.Output.LedgerCSV = filepath.Join(dir, "out", "ledger.csv")
	cfg.Output.Text = filepath.Join(dir, "out", "jobs.txt")
	cfg.Output.CompanyMap = filepath.Join(dir, "out", "map.txt")
	cfg.Search.DelayMS = 0
	return cfg
}

func newRunner(t *testing.T, cfg config.Config, s *fakeSearch) *Runner {
	t.Helper()
	led, err := ledger.Open(cfg.Output.LedgerCSV)
	require.NoError(t, err)
	t.Cleanup(func() { _ = led.Close() })
	return &Runner{
		Cfg:    cfg,
		Search: s,
		Ledger: led,
		Now:    func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRunAcceptsFreshRelevantListings(t *testing.T) {
	cfg := testConfig(t)
	r := newRunner(t, cfg, acmeSearch())

	var progress []int
	r.Progress = func(done, total int) { progress = append(progress, done, total) }

	res, err := r.Run(context.Background(), []string{acmeInput})
	require.NoError(t, err)

	require.Len(t, res.Added, 1)
	rec := res.Added[0]
	assert.Equal(t, "Acme Corp", rec.Company)
	assert.Equal(t, "111", rec.ListingID)
	assert.Equal(t, "Data Engineering Lead", rec.Role)
	assert.Equal(t, view("111"), rec.URL)
	assert.Equal(t, "3 days ago", rec.Recency())

	assert.Equal(t, 1, res.Companies)
	assert.Equal(t, 4, res.Checked)
	assert.Equal(t, map[string]int{"no_keyword_match": 1, "stale": 1, "listing_not_found": 1}, res.Skipped)
	assert.Equal(t, []int{1, 1}, progress)
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, []string{
		"",
		"=== Company: Acme Corp ===",
		"Acme Corp, 111, Data Engineering Lead, " + view("111"),
	}, res.Lines)

	text, err := os.ReadFile(cfg.Output.Text)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(res.Lines, "\n")+"\n", string(text))

	m, err := os.ReadFile(cfg.Output.CompanyMap)
	require.NoError(t, err)
	assert.Equal(t, acmeInput+", Acme Corp, https://www.linkedin.com/company/acme-corp/\n", string(m))
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	cfg := testConfig(t)

	r := newRunner(t, cfg, acmeSearch())
	first, err := r.Run(context.Background(), []string{acmeInput})
	require.NoError(t, err)
	require.Len(t, first.Added, 1)
	require.NoError(t, r.Ledger.Close())

	r2 := newRunner(t, cfg, acmeSearch())
	assert.True(t, r2.Ledger.Seen("111"))

	second, err := r2.Run(context.Background(), []string{acmeInput})
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	assert.Equal(t, 1, second.Skipped["seen"])
	assert.Equal(t, "No relevant jobs found in the last 30 days", second.Lines[len(second.Lines)-1])

	// the report is only rewritten when something new was found
	text, err := os.ReadFile(cfg.Output.Text)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Acme Corp, 111,")
}

func TestRunSkipsSeenBeforeLookup(t *testing.T) {
	cfg := testConfig(t)
	s := acmeSearch()
	r := newRunner(t, cfg, s)
	require.NoError(t, r.Ledger.Record(domain.PostingRecord{ListingID: "111", Company: "Acme Corp"}))

	_, err := r.Run(context.Background(), []string{acmeInput})
	require.NoError(t, err)
	assert.NotContains(t, s.queries, view("111"))
}

func TestRunCancelledStillWritesReport(t *testing.T) {
	cfg := testConfig(t)
	r := newRunner(t, cfg, acmeSearch())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Progress = func(done, _ int) {
		if done == 1 {
			cancel()
		}
	}

	res, err := r.Run(ctx, []string{acmeInput, "https://www.linkedin.com/company/globex/"})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Added, 1)
	assert.Equal(t, 1, res.Companies)

	text, err := os.ReadFile(cfg.Output.Text)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Acme Corp, 111, Data Engineering Lead, "+view("111"))
	assert.NotContains(t, string(text), "Globex")

	m, err := os.ReadFile(cfg.Output.CompanyMap)
	require.NoError(t, err)
	assert.Equal(t, acmeInput+", Acme Corp, https://www.linkedin.com/company/acme-corp/\n", string(m))
}

func TestRunDisplayNameNewsAndAppend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.IncludeNews = true
	cfg.Output.TextMode = "append"
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Output.Text), 0o755))
	require.NoError(t, os.WriteFile(cfg.Output.Text, []byte("earlier\n"), 0o644))

	s := acmeSearch()
	r := newRunner(t, cfg, s)
	r.News = s
	r.Pages = fakePages{"https://www.linkedin.com/company/acme-corp/": "ACME Corporation"}
	s.results["linkedin.com acme-corp jobs"] = s.results["linkedin.com acme-corp jobs"][:1]

	res, err := r.Run(context.Background(), []string{acmeInput})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "ACME Corporation", res.Added[0].Company)
	assert.Equal(t, "  news: ACME Corporation raises round (https://news.example.com/1)", res.Lines[len(res.Lines)-1])

	text, err := os.ReadFile(cfg.Output.Text)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(text), "earlier\n\n=== Company: ACME Corporation ==="))
}

func TestRunResolvesNameInputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.ResolveNames = true

	s := &fakeSearch{results: map[string][]domain.Candidate{
		`site:linkedin.com/company "Globex"`: {
			{SourceURL: "https://www.linkedin.com/company/globex/", Title: "Globex | LinkedIn"},
		},
	}}
	r := newRunner(t, cfg, s)
	r.Resolver = &resolve.Resolver{Search: s}

	res, err := r.Run(context.Background(), []string{"Globex", "not a url at all but unresolvable"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Companies)
	assert.Equal(t, 1, res.Skipped["unparsed_input"])
	assert.Equal(t, []string{"Globex, Globex, https://www.linkedin.com/company/globex/"}, res.MapLines)
	assert.Contains(t, s.queries, "linkedin.com globex jobs")

	_, err = os.Stat(cfg.Output.Text)
	assert.True(t, os.IsNotExist(err), "no records means no text report")
}

func TestRunNameInputsDisabled(t *testing.T) {
	cfg := testConfig(t)
	r := newRunner(t, cfg, &fakeSearch{})
	res, err := r.Run(context.Background(), []string{"Globex", "https://www.linkedin.com/feed/"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Companies)
	assert.Equal(t, 2, res.Skipped["unparsed_input"])
}

func TestAcceptMirrorsScoresNotifiesAndPublishes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scoring.NotifyMinScore = 3
	cfg.Scoring.TitleRules = []config.Rule{{Tag: "data", Weight: 5, Any: []string{"data"}}}

	db, err := store.Open(filepath.Join(t.TempDir(), "leadhunt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := events.NewHub()
	sub := hub.Subscribe()
	notifier := &fakeNotifier{}

	r := newRunner(t, cfg, acmeSearch())
	r.DB = db.Pool
	r.Scorer = rank.YAMLScorer{Cfg: cfg}
	r.Notifier = notifier
	r.Hub = hub

	res, err := r.Run(context.Background(), []string{acmeInput})
	require.NoError(t, err)
	require.Len(t, res.Added, 1)

	rows, err := store.ListPostings(context.Background(), db.Pool, store.ListPostingsOpts{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "111", rows[0].ListingID)
	assert.Equal(t, "fake", rows[0].Source)
	assert.Equal(t, 5, rows[0].Score)
	assert.Equal(t, []string{"data"}, rows[0].Tags)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, 5, notifier.sent[0].score)

	var types []string
	for len(sub) > 0 {
		e := <-sub
		for _, typ := range []string{events.RunStarted, events.PostingCreated, events.RunFinished} {
			if strings.Contains(e, `"type":"`+typ+`"`) {
				types = append(types, typ)
			}
		}
	}
	assert.Equal(t, []string{events.RunStarted, events.PostingCreated, events.RunFinished}, types)
}

func TestRoleFromTitle(t *testing.T) {
	assert.Equal(t, "Data Engineer", RoleFromTitle("Data Engineer | LinkedIn"))
	assert.Equal(t, "Data Engineer", RoleFromTitle("Data Engineer - LinkedIn"))
	assert.Equal(t, "Job Posting", RoleFromTitle(" | LinkedIn"))
}

type fakeInbox struct {
	alerts []email.Alert
	seen   []imap.UID
}

func (f *fakeInbox) Alerts(context.Context) ([]email.Alert, error) { return f.alerts, nil }

func (f *fakeInbox) MarkSeen(_ context.Context, uids []imap.UID) error {
	f.seen = append(f.seen, uids...)
	return nil
}

func (f *fakeInbox) Close() error { return nil }

func TestRunEmailGatesAlertCards(t *testing.T) {
	cfg := testConfig(t)
	r := newRunner(t, cfg, &fakeSearch{})
	now := r.Now()

	inbox := &fakeInbox{alerts: []email.Alert{
		{
			UID:      imap.UID(1),
			Subject:  "Your job alert",
			Received: now.Add(-5 * time.Hour),
			Jobs: []email.AlertJob{
				{ListingID: "901", Title: "Data Engineering Intern", Company: "Initech", URL: view("901")},
				{ListingID: "902", Title: "Frontend Developer", Company: "Initech", URL: view("902")},
			},
		},
		{
			UID:      imap.UID(2),
			Subject:  "Old alert",
			Received: now.AddDate(0, 0, -45),
			Jobs:     []email.AlertJob{{ListingID: "903", Title: "Data Engineering Lead", Company: "Hooli", URL: view("903")}},
		},
		{UID: imap.UID(3), Subject: "job alert with no cards"},
	}}

	res, err := r.RunEmail(context.Background(), inbox)
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "901", res.Added[0].ListingID)
	assert.Equal(t, "5 hours ago", res.Added[0].Recency())
	assert.Equal(t, map[string]int{"stale": 1, "no_keyword_match": 1}, res.Skipped)
	assert.Equal(t, []imap.UID{1, 2, 3}, inbox.seen)

	again, err := r.RunEmail(context.Background(), inbox)
	require.NoError(t, err)
	assert.Empty(t, again.Added)
	assert.Equal(t, 1, again.Skipped["seen"])
}
