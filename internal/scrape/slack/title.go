package slack

import (
	"regexp"
	"strings"

	"leadhunt-engine/internal/scrape/util"
)

const (
	maxTitleLen  = 150
	defaultTitle = "Job Posting"
)

var (
	reLinkLabelHiring = regexp.MustCompile(`<[^|]+\|([^>]+hiring\s+([^>]+?)\s+in\s+[^>]+)>`)
	reHiringIn        = regexp.MustCompile(`hiring\s+([A-Z][^\n\r|]+?)\s+in\s+[A-Z]`)
	reLabeledTitle    = regexp.MustCompile(`(?:Role|Position|Title):\s*([A-Z][^\n\r|]+)`)
	reJobWordTitle    = regexp.MustCompile(`([A-Z][a-zA-Z\s&/\-]+(?:Engineer|Architect|Manager|Leader|Scientist|Analyst|Developer|Designer|Consultant|Specialist))`)
	reHiringLoose     = regexp.MustCompile(`hiring\s+([A-Z][^\n]+?)\s+in\s+`)
)

// Title guesses the job title from alert text such as
// "<https://www.linkedin.com/jobs/view/123|Acme hiring Data Engineer in Atlanta, GA>".
func Title(text string) string {
	if m := reLinkLabelHiring.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(m[2]); len(t) > 3 {
			return util.Clip(t, maxTitleLen)
		}
	}

	if m := reHiringIn.FindStringSubmatch(text); m != nil {
		t := strings.TrimSpace(m[1])
		for _, d := range []string{" at ", " - ", "  ", "\n"} {
			if i := strings.Index(t, d); i >= 0 {
				t = strings.TrimSpace(t[:i])
			}
		}
		if len(t) > 3 {
			return util.Clip(t, maxTitleLen)
		}
	}

	for _, re := range []*regexp.Regexp{reLabeledTitle, reJobWordTitle} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		t := strings.TrimSpace(m[1])
		t = strings.TrimSpace(strings.NewReplacer("*", "", "_", "").Replace(t))
		if i := strings.Index(t, "\n"); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		t = util.Clip(t, maxTitleLen)
		if len(t) > 5 {
			return t
		}
	}

	if strings.Contains(strings.ToLower(text), "hiring") {
		if m := reHiringLoose.FindStringSubmatch(text); m != nil {
			return util.Clip(strings.TrimSpace(m[1]), maxTitleLen)
		}
	}
	return defaultTitle
}
