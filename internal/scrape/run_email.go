package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/google/uuid"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/scrape/email"
	"leadhunt-engine/internal/secrets"
)

const emailSource = "email"

// EmailSettings maps the email config section onto inbox settings. The password
// comes from LEADHUNT_IMAP_PASSWORD or the keyring.
func EmailSettings(cfg config.Config, now time.Time) (email.Settings, error) {
	e := cfg.Email
	pw, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(e.Username, e.IMAPHost))
	if err != nil {
		return email.Settings{}, err
	}
	window := cfg.Filters.WindowDays
	if window <= 0 {
		window = 30
	}
	return email.Settings{
		Host:       e.IMAPHost,
		Port:       e.IMAPPort,
		Username:   e.Username,
		Password:   pw,
		Mailbox:    e.Mailbox,
		SubjectAny: e.SearchSubjectAny,
		Since:      now.AddDate(0, 0, -window),
		Max:        e.MaxMessages,
	}, nil
}

// RunEmail pushes every card of every unseen alert through the same freshness,
// relevance and ledger gates as the company pipeline. The message age stands in
// for the posted phrase. Alerts are marked seen only after all of their cards
// were handled.
func (r *Runner) RunEmail(ctx context.Context, inbox email.Inbox) (Result, error) {
	if r.Ledger == nil {
		return Result{}, errors.New("email run: no ledger")
	}
	res := Result{RunID: uuid.NewString()}

	alerts, err := inbox.Alerts(ctx)
	if err != nil {
		return res, err
	}
	res.Inputs = len(alerts)

	now := r.now()
	var done []imap.UID
	for _, a := range alerts {
		posted := email.AgePhrase(a.Received, now)
		for _, j := range a.Jobs {
			res.Checked++
			text := strings.Join([]string{j.Company, j.Location, j.Salary, a.Subject}, " ")
			if keep, why := r.keep(j.Title, text, posted); !keep {
				res.skip(why)
				log.Printf("[email] skipped reason=%s listing_id=%s title=%q posted=%q", why, j.ListingID, j.Title, posted)
				continue
			}

			company := j.Company
			if company == "" {
				company = "Unknown"
			}
			rec := domain.PostingRecord{
				DiscoveredAt: now.UTC(),
				Company:      company,
				ListingID:    j.ListingID,
				Role:         j.Title,
				URL:          j.URL,
			}
			if posted != "" {
				p := posted
				rec.PostedRecency = &p
			}

			added, err := r.Accept(ctx, res.RunID, rec, emailSource, text)
			if err != nil {
				return res, fmt.Errorf("email alert %d: %w", a.UID, err)
			}
			if !added {
				res.skip("seen")
				continue
			}
			res.Added = append(res.Added, rec)
		}
		done = append(done, a.UID)
	}

	if err := inbox.MarkSeen(ctx, done); err != nil {
		return res, err
	}
	log.Printf("[email] run done run_id=%s alerts=%d checked=%d added=%d", res.RunID, len(alerts), res.Checked, len(res.Added))
	return res, nil
}
