// Package identity turns LinkedIn URLs into canonical company identities and listing ids.
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/scrape/util"
)

const (
	companyMarker = "/company/"
	jobsMarker    = "/jobs/"
	viewMarker    = "/jobs/view/"
)

var reSlug = regexp.MustCompile(`^[A-Za-z0-9._~%-]+$`)

// Parse tries the /company/<slug>/ form first, then /jobs/<tokens>-jobs-<location>.
// Slugs are lowercased, so URLs differing only in case give the same Identity.
// ok is false when neither form yields a usable slug; callers skip the input.
func Parse(raw string) (domain.Identity, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Identity{}, false
	}

	if i := indexFold(raw, companyMarker); i >= 0 {
		slug := strings.ToLower(firstSegment(raw[i+len(companyMarker):]))
		if validSlug(slug) {
			return domain.Identity{
				DisplayName:  titleCase(strings.ReplaceAll(slug, "-", " ")),
				Slug:         slug,
				CanonicalURL: CompanyURL(slug),
			}, true
		}
	}

	if i := indexFold(raw, jobsMarker); i >= 0 {
		seg := firstSegment(raw[i+len(jobsMarker):])
		parts := strings.Split(seg, "-")
		at := -1
		for k, p := range parts {
			if p == "jobs" {
				at = k
				break
			}
		}
		if at > 0 {
			tokens := parts[:at]
			slug := strings.ToLower(strings.Join(tokens, "-"))
			if validSlug(slug) {
				return domain.Identity{
					DisplayName:  titleCase(strings.ReplaceAll(slug, "-", " ")),
					Slug:         slug,
					CanonicalURL: util.CanonicalizeURL(raw),
				}, true
			}
		}
	}

	return domain.Identity{}, false
}

// CompanyURL is the canonical company page for a slug.
func CompanyURL(slug string) string {
	return "https://www.linkedin.com/company/" + slug + "/"
}

func titleCase(s string) string {
	// Casers keep state; one per call.
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

func validSlug(s string) bool {
	return s != "" && strings.Trim(s, "-") != "" && reSlug.MatchString(s)
}

// firstSegment returns s up to the first '/', '?' or '#'.
func firstSegment(s string) string {
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		return s[:i]
	}
	return s
}

// indexFold is strings.Index with ASCII case folding on the needle.
func indexFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}
