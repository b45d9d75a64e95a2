package slack

import (
	"encoding/json"
	"log"
	"regexp"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tidwall/gjson"

	"leadhunt-engine/internal/filter"
	"leadhunt-engine/internal/identity"
	"leadhunt-engine/internal/report"
	"leadhunt-engine/internal/resolve"
)

// Slack wraps links as <url|label>; alert bots use both slugged and bare view URLs.
var reViewIDs = []*regexp.Regexp{
	regexp.MustCompile(`<https?://(?:www\.)?linkedin\.com/jobs/view/[^/]+?-(\d+)\|`),
	regexp.MustCompile(`<https?://(?:www\.)?linkedin\.com/jobs/view/(\d+)\|`),
	regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/jobs/view/[^/]+?-(\d+)`),
	regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/jobs/view/(\d+)`),
}

type Job struct {
	Company   string
	Title     string
	ListingID string
	URL       string
}

// Seener is the part of the ledger the parser needs.
type Seener interface {
	Seen(id string) bool
}

type ParseOptions struct {
	Keywords []string // empty keeps every matched job
	Ledger   Seener   // optional; ids already recorded are dropped
}

// ParseJobs walks the messages in order. Each attachment is matched on its own
// because one alert message can carry postings from several companies.
func ParseJobs(messages []json.RawMessage, roster *resolve.Roster, opts ParseOptions) []Job {
	done := mapset.NewThreadUnsafeSet[string]()
	var jobs []Job

	take := func(text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		company, ok := roster.Match(text)
		if !ok {
			return
		}
		for _, id := range ListingIDs(text) {
			if done.Contains(id) {
				continue
			}
			title := Title(text)
			if len(opts.Keywords) > 0 && !filter.IsRelevant(title, text, opts.Keywords) {
				log.Printf("[slack] skipped reason=no_keyword_match id=%s company=%q", id, company)
				continue
			}
			if opts.Ledger != nil && opts.Ledger.Seen(id) {
				log.Printf("[slack] skipped reason=seen id=%s", id)
				continue
			}
			done.Add(id)
			jobs = append(jobs, Job{Company: company, Title: title, ListingID: id, URL: identity.ListingURL(id)})
		}
	}

	for _, raw := range messages {
		m := gjson.ParseBytes(raw)
		atts := m.Get("attachments").Array()
		if len(atts) == 0 {
			take(MessageText(m))
			continue
		}
		for _, a := range atts {
			take(AttachmentText(a))
		}
	}
	return jobs
}

// ListingIDs returns the distinct LinkedIn view ids in text, sorted.
func ListingIDs(text string) []string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, re := range reViewIDs {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			set.Add(m[1])
		}
	}
	ids := set.ToSlice()
	sort.Strings(ids)
	return ids
}

func AttachmentText(a gjson.Result) string {
	var parts []string
	for _, k := range []string{"text", "fallback", "pretext", "title"} {
		if v := a.Get(k).String(); v != "" {
			parts = append(parts, v)
		}
	}
	for _, b := range a.Get("blocks").Array() {
		if t := b.Get("text"); t.IsObject() {
			if v := t.Get("text").String(); v != "" {
				parts = append(parts, v)
			}
		}
	}
	for _, f := range a.Get("fields").Array() {
		parts = append(parts, f.Get("title").String(), f.Get("value").String())
	}
	return strings.Join(parts, " ")
}

// MessageText flattens text, attachments and blocks of a whole message.
func MessageText(m gjson.Result) string {
	var parts []string
	if v := m.Get("text").String(); v != "" {
		parts = append(parts, v)
	}
	for _, a := range m.Get("attachments").Array() {
		if v := AttachmentText(a); v != "" {
			parts = append(parts, v)
		}
	}
	for _, b := range m.Get("blocks").Array() {
		if t := b.Get("text"); t.IsObject() {
			if v := t.Get("text").String(); v != "" {
				parts = append(parts, v)
			}
		}
		for _, el := range b.Get("elements").Array() {
			if !el.IsObject() {
				continue
			}
			if v := el.Get("text").String(); v != "" {
				parts = append(parts, v)
			}
			for _, n := range el.Get("elements").Array() {
				if v := n.Get("text").String(); n.IsObject() && v != "" {
					parts = append(parts, v)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

// ParsedLines renders jobs under the summary header.
func ParsedLines(jobs []Job) []string {
	companies := mapset.NewThreadUnsafeSet[string]()
	for _, j := range jobs {
		companies.Add(j.Company)
	}
	lines := report.SlackHeader(len(jobs), companies.Cardinality())
	for _, j := range jobs {
		lines = append(lines, report.SlackJobLine(j.Company, j.Title, j.ListingID, j.URL))
	}
	return lines
}
