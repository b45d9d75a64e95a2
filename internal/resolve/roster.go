package resolve

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var rosterSuffixes = []string{" llc", " inc", " corporation", " corp", " limited", " ltd", " plc", " consulting"}

var reRosterPunct = regexp.MustCompile(`[.,&()']`)

// Roster matches free text against a fixed list of company names.
type Roster struct {
	names []rosterName
}

type rosterName struct {
	name  string
	lower string
	norm  string
	re    *regexp.Regexp
}

// NewRoster drops blank names and orders the rest longest first so that
// "Acme Data" wins over "Acme" when both occur.
func NewRoster(names []string) *Roster {
	var out []rosterName
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		lower := strings.ToLower(n)
		out = append(out, rosterName{
			name:  n,
			lower: lower,
			norm:  normalizeRosterName(n),
			re:    wordPattern(lower),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].name) > utf8.RuneCountInString(out[j].name)
	})
	return &Roster{names: out}
}

func (r *Roster) Len() int { return len(r.names) }

// Match returns the roster name found in text: word-boundary pass, then plain
// substring, then suffix-insensitive substring.
func (r *Roster) Match(text string) (string, bool) {
	if r == nil || text == "" {
		return "", false
	}
	lower := strings.ToLower(text)

	for _, n := range r.names {
		if n.re.MatchString(lower) {
			return n.name, true
		}
	}
	for _, n := range r.names {
		if utf8.RuneCountInString(n.name) > 3 && strings.Contains(lower, n.lower) {
			return n.name, true
		}
	}
	normText := normalizeRosterName(text)
	for _, n := range r.names {
		if utf8.RuneCountInString(n.norm) > 3 && strings.Contains(normText, n.norm) {
			return n.name, true
		}
	}
	return "", false
}

const (
	wordClass    = `[\p{L}\p{N}_]`
	nonWordClass = `[^\p{L}\p{N}_]`
)

// wordPattern matches s between word boundaries. RE2's \b only knows ASCII word
// characters, so "ana" would match inside "anaïs"; the boundaries here treat
// every letter and digit as a word character.
func wordPattern(s string) *regexp.Regexp {
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)

	// at a word character the neighbor must be a non-word character or the end,
	// and the other way round
	before := `(?:^|` + nonWordClass + `)`
	if !isWordRune(first) {
		before = wordClass
	}
	after := `(?:$|` + nonWordClass + `)`
	if !isWordRune(last) {
		after = wordClass
	}
	return regexp.MustCompile(before + regexp.QuoteMeta(s) + after)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func normalizeRosterName(s string) string {
	s = strings.ToLower(s)
	for _, suf := range rosterSuffixes {
		s = strings.ReplaceAll(s, suf, "")
	}
	s = reRosterPunct.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
