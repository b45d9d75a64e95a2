package resolve

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"leadhunt-engine/internal/scrape/util"
)

// Candidate is one /company/ search hit considered by the resolver.
type Candidate struct {
	Title string
	Slug  string
	Link  string
}

const (
	titleWeight = 0.7
	slugWeight  = 0.3
	slugPenalty = 0.15
	slugCap     = 40
)

// Similarity is the Jaccard index of the whitespace token sets of a and b.
func Similarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if ta.Cardinality() == 0 || tb.Cardinality() == 0 {
		return 0
	}
	inter := ta.Intersect(tb).Cardinality()
	union := ta.Union(tb).Cardinality()
	return float64(inter) / float64(union)
}

func tokenSet(s string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, t := range strings.Fields(s) {
		set.Add(t)
	}
	return set
}

// Score rates a candidate against the target name. Long slugs pay a small penalty
// so "acme" beats "acme-holdings-international-careers" on an otherwise equal match.
func Score(target string, c Candidate) float64 {
	nt := NormalizeCompanyName(target)
	title := NormalizeCompanyName(util.StripLinkedInSuffix(c.Title))
	slug := NormalizeCompanyName(c.Slug)

	n := len(c.Slug)
	if n > slugCap {
		n = slugCap
	}
	return titleWeight*Similarity(nt, title) +
		slugWeight*Similarity(nt, slug) -
		slugPenalty*float64(n)/slugCap
}

// Best returns the highest scoring candidate. Ties keep the earliest one.
func Best(target string, cands []Candidate) (Candidate, float64, bool) {
	if len(cands) == 0 {
		return Candidate{}, 0, false
	}
	best, bestScore := cands[0], Score(target, cands[0])
	for _, c := range cands[1:] {
		if s := Score(target, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore, true
}
