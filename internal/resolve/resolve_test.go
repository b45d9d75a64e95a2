package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/scrape/types"
)

func TestNormalizeCompanyName(t *testing.T) {
	tests := map[string]string{
		"Acme Corp":                "acme",
		"Acme, Inc.":               "acme",
		"ACME Corporation":         "acme",
		"Smith & Sons (UK) Ltd":    "smith sons uk",
		"O'Neil-Brown Company LLC": "o neil brown",
		"  Globex   GmbH ":         "globex",
		"Inc":                      "inc",
		"":                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCompanyName(in), in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("acme", "acme"))
	assert.Equal(t, 0.5, Similarity("acme", "acme bakery"))
	assert.Equal(t, 0.0, Similarity("", "acme"))
	assert.Equal(t, 0.0, Similarity("acme", ""))
}

func TestScoreAndBest(t *testing.T) {
	corp := Candidate{Title: "Acme Corporation | LinkedIn", Slug: "acme-corporation"}
	bakery := Candidate{Title: "Acme Bakery", Slug: "acme-bakery"}

	assert.InDelta(t, 0.94, Score("Acme Corp", corp), 1e-9)
	assert.InDelta(t, 0.45875, Score("Acme Corp", bakery), 1e-9)

	best, score, ok := Best("Acme Corp", []Candidate{bakery, corp})
	require.True(t, ok)
	assert.Equal(t, "acme-corporation", best.Slug)
	assert.InDelta(t, 0.94, score, 1e-9)

	_, _, ok = Best("Acme Corp", nil)
	assert.False(t, ok)
}

func TestBestTieKeepsFirst(t *testing.T) {
	a := Candidate{Title: "Globex", Slug: "globex-a"}
	b := Candidate{Title: "Globex", Slug: "globex-b"}
	best, _, ok := Best("Globex", []Candidate{a, b})
	require.True(t, ok)
	assert.Equal(t, "globex-a", best.Slug)
}

type memCache struct {
	m    map[string]domain.Identity
	puts int
}

func (c *memCache) GetIdentity(_ context.Context, key string) (domain.Identity, bool, error) {
	id, ok := c.m[key]
	return id, ok, nil
}

func (c *memCache) PutIdentity(_ context.Context, key string, id domain.Identity) error {
	c.m[key] = id
	c.puts++
	return nil
}

func acmeSearcher(calls *int) types.Searcher {
	return types.SearcherFunc(func(_ context.Context, q string) []domain.Candidate {
		*calls++
		return []domain.Candidate{
			{SourceURL: "https://www.linkedin.com/school/acme-university/", Title: "Acme University"},
			{SourceURL: "https://www.linkedin.com/company/acme-bakery/", Title: "Acme Bakery"},
			{SourceURL: "https://www.linkedin.com/company-beta/123/", Title: "Acme Corp"},
			{SourceURL: "https://www.linkedin.com/company/acme-corporation/about/", Title: "Acme Corporation | LinkedIn"},
		}
	})
}

func TestResolverResolve(t *testing.T) {
	calls := 0
	cache := &memCache{m: map[string]domain.Identity{}}
	r := &Resolver{Search: acmeSearcher(&calls), Cache: cache}

	id, ok := r.Resolve(context.Background(), "Acme Corp")
	require.True(t, ok)
	assert.Equal(t, "acme-corporation", id.Slug)
	assert.Equal(t, "Acme Corporation", id.DisplayName)
	assert.Equal(t, "https://www.linkedin.com/company/acme-corporation/", id.CanonicalURL)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, cache.puts)

	// second lookup is served from the cache
	_, ok = r.Resolve(context.Background(), "ACME corp.")
	require.True(t, ok)
	assert.Equal(t, 2, calls)
}

func TestResolverNoResults(t *testing.T) {
	r := &Resolver{Search: types.SearcherFunc(func(context.Context, string) []domain.Candidate { return nil })}
	_, ok := r.Resolve(context.Background(), "Nobody Inc")
	assert.False(t, ok)

	_, ok = r.Resolve(context.Background(), "  ")
	assert.False(t, ok)
}

func TestResolverLowercasesSlug(t *testing.T) {
	s := types.SearcherFunc(func(context.Context, string) []domain.Candidate {
		return []domain.Candidate{
			{SourceURL: "https://www.linkedin.com/company/Globex-Corp/", Title: "Globex | LinkedIn"},
			{SourceURL: "https://www.linkedin.com/company/globex-corp/jobs/", Title: "Globex Jobs"},
		}
	})
	r := &Resolver{Search: s}

	cands := r.candidates(context.Background(), "Globex")
	require.Len(t, cands, 1)
	assert.Equal(t, "globex-corp", cands[0].Slug)

	id, ok := r.Resolve(context.Background(), "Globex")
	require.True(t, ok)
	assert.Equal(t, "globex-corp", id.Slug)
	assert.Equal(t, "https://www.linkedin.com/company/globex-corp/", id.CanonicalURL)
}

type fixedNamer string

func (f fixedNamer) PageName(context.Context, string) (string, bool) { return string(f), f != "" }

func TestResolverDisplayNameFallbacks(t *testing.T) {
	calls := 0
	r := &Resolver{Search: acmeSearcher(&calls), Pages: fixedNamer("ACME Corporation Worldwide")}
	id, ok := r.Resolve(context.Background(), "Acme Corp")
	require.True(t, ok)
	assert.Equal(t, "ACME Corporation Worldwide", id.DisplayName)

	untitled := types.SearcherFunc(func(context.Context, string) []domain.Candidate {
		return []domain.Candidate{{SourceURL: "https://www.linkedin.com/company/initech/"}}
	})
	r = &Resolver{Search: untitled, Pages: fixedNamer("")}
	id, ok = r.Resolve(context.Background(), "Initech")
	require.True(t, ok)
	assert.Equal(t, "Initech", id.DisplayName)
}

func TestHTTPPageNamer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		switch r.URL.Path {
		case "/og":
			_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="Acme Corporation"><title>ignored</title></head></html>`))
		case "/title":
			_, _ = w.Write([]byte(`<html><head><title>Globex | LinkedIn</title></head></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewHTTPPageNamer(time.Second, nil)
	name, ok := p.PageName(context.Background(), srv.URL+"/og")
	require.True(t, ok)
	assert.Equal(t, "Acme Corporation", name)

	name, ok = p.PageName(context.Background(), srv.URL+"/title")
	require.True(t, ok)
	assert.Equal(t, "Globex", name)

	_, ok = p.PageName(context.Background(), srv.URL+"/missing")
	assert.False(t, ok)
}

func TestRosterMatch(t *testing.T) {
	r := NewRoster([]string{"Acme", "Acme Data", "AT&T", "Initech LLC", "IBM", ""})
	assert.Equal(t, 5, r.Len())

	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Acme Data is hiring a Data Engineer", "Acme Data", true},
		{"acme is hiring", "Acme", true},
		{"Join AT&T today", "AT&T", true},
		{"initech hiring Analyst", "Initech LLC", true},
		{"ibm cloud team", "IBM", true},
		{"IBMer wanted", "", false},
		{"Globex is hiring", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Match(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestRosterMatchNonASCII(t *testing.T) {
	tests := []struct {
		names []string
		text  string
		want  string
		ok    bool
	}{
		// three characters, five bytes: too short for the substring passes
		{[]string{"Ünï"}, "xünïx labs", "", false},
		{[]string{"Ünï"}, "Ünï labs is hiring", "Ünï", true},
		// accented letters are word characters
		{[]string{"Ana"}, "Anaïs Nin joined", "", false},
		{[]string{"Ana"}, "ana, josé and co", "Ana", true},
		{[]string{"Café"}, "the café team", "Café", true},
	}
	for _, tt := range tests {
		got, ok := NewRoster(tt.names).Match(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestRosterOrdersByCharacters(t *testing.T) {
	// "Ünïcödé" is seven characters in eleven bytes; "Unicode X" has nine of each
	r := NewRoster([]string{"Ünïcödé", "Unicode X"})
	got, ok := r.Match("Unicode X and Ünïcödé are hiring")
	require.True(t, ok)
	assert.Equal(t, "Unicode X", got)
}
