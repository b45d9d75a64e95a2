package email

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadhunt-engine/internal/identity"
	"leadhunt-engine/internal/scrape/util"
)

// AlertJob is one listing card from a LinkedIn job-alert email.
type AlertJob struct {
	ListingID string
	Title     string
	Company   string
	Location  string
	Salary    string
	URL       string // canonical /jobs/view/<id> URL
}

var (
	reSalary    = regexp.MustCompile(`\$\s?\d[\d,.]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,.]*(?:K|M)?)?\s*/\s*(?:year|yr|hour|hr)`)
	reNumericID = regexp.MustCompile(`(\d{6,})$`)
)

var cardNoise = []string{"Actively recruiting", "Easy Apply", "Promoted", "Be an early applicant"}

// ParseLinkedInAlert merges every anchor that points at the same listing id, so a
// logo link seen before the title link does not leave the card untitled. Cards
// without a title are dropped. Order follows the first anchor of each card.
func ParseLinkedInAlert(htmlBody string) ([]AlertJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*AlertJob{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		jobURL := util.UnwrapRedirect(strings.TrimSpace(href))
		if !isAlertListingURL(jobURL) {
			return
		}
		id, ok := alertListingID(jobURL)
		if !ok {
			return
		}

		j, seen := byID[id]
		if !seen {
			j = &AlertJob{ListingID: id, URL: identity.ListingURL(id)}
			byID[id] = j
			order = append(order, id)
		}

		if t := stripNoise(a.Text()); betterTitle(t, j.Title) {
			j.Title = t
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Parent()
		}
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" {
				return
			}
			if j.Company == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.Company = strings.TrimSpace(parts[0])
				j.Location = util.NormalizeLocation(parts[1])
				return
			}
			if j.Salary == "" {
				if m := reSalary.FindString(t); m != "" {
					j.Salary = strings.TrimSpace(m)
					return
				}
			}
			if t2 := stripNoise(t); betterTitle(t2, j.Title) {
				j.Title = t2
			}
		})
	})

	out := make([]AlertJob, 0, len(order))
	for _, id := range order {
		if j := byID[id]; strings.TrimSpace(j.Title) != "" {
			out = append(out, *j)
		}
	}
	return out, nil
}

// alertListingID accepts both /jobs/view/<id> and /jobs/view/<slug>-<id>; alert
// links carry the numeric form, the slug form is reduced to its trailing number.
func alertListingID(jobURL string) (string, bool) {
	id, ok := identity.ListingID(jobURL)
	if !ok {
		return "", false
	}
	if m := reNumericID.FindStringSubmatch(id); m != nil {
		return m[1], true
	}
	return id, true
}

// isAlertListingURL also accepts the /comm/jobs/view/ tracking form alerts use.
func isAlertListingURL(u string) bool {
	l := strings.ToLower(u)
	return strings.Contains(l, "linkedin.com/") && strings.Contains(l, "/jobs/view/")
}

// LooksLikeAlert is true for LinkedIn alert senders, or for alert-ish subjects
// whose body actually links a listing.
func LooksLikeAlert(from, subject, body string) bool {
	if strings.Contains(strings.ToLower(from), "jobalerts-noreply") {
		return true
	}
	s := strings.ToLower(subject)
	if !strings.Contains(s, "job alert") && !strings.Contains(s, "linkedin") && !strings.Contains(s, "hiring") {
		return false
	}
	return isAlertListingURL(body)
}

func stripNoise(s string) string {
	s = util.CleanText(s)
	for _, n := range cardNoise {
		s = strings.ReplaceAll(s, n, "")
	}
	s = util.CleanText(s)
	low := strings.ToLower(s)
	for _, bad := range []string{"alumni", "connections", "applicants", "school"} {
		if strings.Contains(low, bad) {
			return ""
		}
	}
	return s
}

// betterTitle only replaces a title with a clearly more title-like string.
func betterTitle(cand, cur string) bool {
	if cand == "" || strings.Contains(cand, " · ") {
		return false
	}
	cs := titleScore(cand)
	if cur == "" {
		return cs >= 5
	}
	return cs >= titleScore(cur)+3
}

var (
	titleWords = []string{
		"engineer", "developer", "software", "backend", "frontend", "full stack", "platform",
		"cloud", "devops", "sre", "security", "data", "ml", "scientist", "analyst",
		"architect", "manager", "director", "lead", "intern", "designer", "consultant",
	}
	seniorityWords = []string{"sr", "senior", "jr", "junior", "ii", "iii", "principal", "staff", "lead"}
	ctaWords       = []string{"apply", "view job", "see job", "see all", "learn more", "sign in", "unsubscribe"}
	locationWords  = []string{"remote", "hybrid", "on-site", "onsite", "united states"}
)

// titleScore is a rough "does this read like a job title" measure.
func titleScore(s string) int {
	if s == "" {
		return -100
	}
	l := strings.ToLower(s)
	if strings.Contains(l, "http://") || strings.Contains(l, "https://") || strings.Contains(l, "www.") {
		return -30
	}

	score := 0
	if strings.ContainsAny(s, "$€£") {
		score -= 8
	}
	for _, w := range ctaWords {
		if strings.Contains(l, w) {
			score -= 6
		}
	}
	for _, w := range locationWords {
		if strings.Contains(l, w) {
			score -= 3
		}
	}
	for _, w := range titleWords {
		if strings.Contains(l, w) {
			score += 4
			break
		}
	}
	words := strings.FieldsFunc(l, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	sort.Strings(words)
	for _, w := range seniorityWords {
		i := sort.SearchStrings(words, w)
		if i < len(words) && words[i] == w {
			score += 2
		}
	}

	switch n := len([]rune(s)); {
	case n >= 6 && n <= 80:
		score += 2
	case n < 4 || n > 140:
		score -= 6
	}
	if strings.HasSuffix(s, ".") || strings.Contains(l, "you will") {
		score -= 4
	}
	return score
}
