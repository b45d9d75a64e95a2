package config

import (
	"fmt"
	"strings"

	"leadhunt-engine/internal/filter"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus errors and warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Input.Keywords = filter.NormalizeKeywords(out.Input.Keywords)
	out.Slack.Roster = trimList(out.Slack.Roster)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)
	out.Search.Provider = strings.ToLower(strings.TrimSpace(out.Search.Provider))
	out.Output.TextMode = strings.ToLower(strings.TrimSpace(out.Output.TextMode))
	if out.Output.TextMode == "" {
		out.Output.TextMode = "overwrite"
	}
	if strings.TrimSpace(out.Search.SiteToken) == "" {
		out.Search.SiteToken = "linkedin.com"
	}

	// ---- Validation rules ----

	if out.Search.NumResults <= 0 || out.Search.NumResults > 100 {
		res.addErr("search.num_results must be 1..100")
	}
	if out.Search.TimeoutSeconds <= 0 {
		res.addErr("search.timeout_seconds must be > 0")
	}
	if out.Search.DelayMS < 0 {
		res.addErr("search.delay_ms must be >= 0")
	} else if out.Search.DelayMS < 250 {
		res.addWarn("search.delay_ms is very low (%d) and may cause rate limits.", out.Search.DelayMS)
	}

	if strings.TrimSpace(out.Output.Text) == "" {
		res.addErr("output.text is required")
	}
	if out.Output.TextMode != "overwrite" && out.Output.TextMode != "append" {
		res.addErr("output.text_mode must be overwrite or append")
	}

	if len(out.Input.Keywords) == 0 && strings.TrimSpace(out.Input.KeywordsFile) == "" {
		res.addWarn("no keywords configured; every posting will fail the relevance check.")
	}

	if out.Slack.DaysBack <= 0 {
		res.addErr("slack.days_back must be > 0")
	}
	if out.Slack.TimeoutSeconds <= 0 {
		res.addErr("slack.timeout_seconds must be > 0")
	}

	// email required fields if enabled (password lives in the keychain)
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; email scraping may find nothing.")
		}
	}

	if out.Notify.Telegram.Enabled && out.Notify.Telegram.ChatID == 0 {
		res.addErr("notify.telegram.chat_id is required when notify.telegram.enabled=true")
	}

	if out.Polling.IntervalMinutes < 0 {
		res.addErr("polling.interval_minutes must be >= 0")
	} else if out.Polling.IntervalMinutes > 0 && out.Polling.IntervalMinutes < 5 {
		res.addWarn("polling.interval_minutes is very low (%d); each run issues several searches per company.", out.Polling.IntervalMinutes)
	}

	res.Errors = append(res.Errors, fieldErrors(out)...)
	return out, res
}
