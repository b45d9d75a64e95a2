package resolve

import (
	"context"
	"log"
	"strings"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/identity"
	"leadhunt-engine/internal/scrape/types"
	"leadhunt-engine/internal/scrape/util"
)

var excludedPaths = []string{"/company-beta/", "/learning/", "/school/"}

// Cache stores identities keyed by normalized company name.
type Cache interface {
	GetIdentity(ctx context.Context, key string) (domain.Identity, bool, error)
	PutIdentity(ctx context.Context, key string, id domain.Identity) error
}

type Resolver struct {
	Search types.Searcher
	Pages  PageNamer // optional
	Cache  Cache     // optional
}

// Queries returns the two site-restricted searches run for name.
func Queries(name string) []string {
	return []string{
		`site:linkedin.com/company "` + name + `"`,
		"site:linkedin.com/company " + name,
	}
}

// Resolve finds the LinkedIn company page that best matches name.
// ok is false when no /company/ result came back.
func (r *Resolver) Resolve(ctx context.Context, name string) (domain.Identity, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Identity{}, false
	}
	key := NormalizeCompanyName(name)

	if r.Cache != nil && key != "" {
		id, ok, err := r.Cache.GetIdentity(ctx, key)
		if err != nil {
			log.Printf("[resolve] cache get failed name=%q err=%v", name, err)
		} else if ok {
			return id, true
		}
	}

	cands := r.candidates(ctx, name)
	best, score, ok := Best(name, cands)
	if !ok {
		log.Printf("[resolve] no company pages name=%q", name)
		return domain.Identity{}, false
	}

	id := domain.Identity{
		DisplayName:  r.displayName(ctx, name, best),
		Slug:         best.Slug,
		CanonicalURL: identity.CompanyURL(best.Slug),
	}
	log.Printf("[resolve] name=%q slug=%s score=%.3f candidates=%d", name, id.Slug, score, len(cands))

	if r.Cache != nil && key != "" {
		if err := r.Cache.PutIdentity(ctx, key, id); err != nil {
			log.Printf("[resolve] cache put failed name=%q err=%v", name, err)
		}
	}
	return id, true
}

func (r *Resolver) candidates(ctx context.Context, name string) []Candidate {
	var out []Candidate
	seen := map[string]bool{}
	for _, q := range Queries(name) {
		for _, res := range r.Search.Search(ctx, q) {
			link := res.SourceURL
			if !isCompanyLink(link) {
				continue
			}
			parsed, ok := identity.Parse(link)
			if !ok {
				continue
			}
			if seen[parsed.Slug] {
				continue
			}
			seen[parsed.Slug] = true
			out = append(out, Candidate{Title: res.Title, Slug: parsed.Slug, Link: link})
		}
	}
	return out
}

func (r *Resolver) displayName(ctx context.Context, name string, c Candidate) string {
	if r.Pages != nil {
		if n, ok := r.Pages.PageName(ctx, c.Link); ok {
			return n
		}
	}
	if t := util.CleanText(util.StripLinkedInSuffix(c.Title)); t != "" {
		return t
	}
	return name
}

func isCompanyLink(link string) bool {
	l := strings.ToLower(link)
	if !strings.Contains(l, "linkedin.com/company/") {
		return false
	}
	for _, x := range excludedPaths {
		if strings.Contains(l, x) {
			return false
		}
	}
	return true
}
