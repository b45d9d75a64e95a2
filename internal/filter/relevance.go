package filter

import "strings"

// IsRelevant is plain substring containment over title+description.
// Short keywords can over-match ("go" hits "google"); that is the accepted contract
// for job keywords. Company names use resolve.Roster's word-boundary passes instead.
func IsRelevant(title, description string, keywords []string) bool {
	text := strings.ToLower(title + " " + description)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// NormalizeKeywords trims, lowercases and drops blanks and duplicates, keeping order.
// A single comma separated entry is split.
func NormalizeKeywords(in []string) []string {
	var parts []string
	for _, k := range in {
		parts = append(parts, strings.Split(k, ",")...)
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(parts))
	for _, k := range parts {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
