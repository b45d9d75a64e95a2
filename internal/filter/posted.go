package filter

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reDaysAgo  = regexp.MustCompile(`(\d+)\s+days?\s+ago`)
	reWeeksAgo = regexp.MustCompile(`(\d+)\s+weeks?\s+ago`)
	reHoursAgo = regexp.MustCompile(`(\d+)\s+hours?\s+ago`)
)

// PostedPhrase pulls "N days ago" / "N weeks ago" / "N hours ago" out of a search
// snippet, falling back to the provider date when it is itself relative.
func PostedPhrase(snippet, date string) (string, bool) {
	s := strings.ToLower(snippet)
	if strings.Contains(s, "posted ") || strings.Contains(s, " ago") || strings.Contains(s, "reposted ") {
		if strings.Contains(s, "day") {
			if m := reDaysAgo.FindStringSubmatch(s); m != nil {
				return fmt.Sprintf("%s days ago", m[1]), true
			}
		}
		if strings.Contains(s, "week") {
			if m := reWeeksAgo.FindStringSubmatch(s); m != nil {
				return fmt.Sprintf("%s weeks ago", m[1]), true
			}
		}
		if strings.Contains(s, "hour") {
			if m := reHoursAgo.FindStringSubmatch(s); m != nil {
				return fmt.Sprintf("%s hours ago", m[1]), true
			}
		}
	}

	d := strings.TrimSpace(date)
	if strings.Contains(strings.ToLower(d), "ago") {
		return d, true
	}
	return "", false
}
