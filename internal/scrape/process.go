package scrape

import (
	"context"
	"fmt"
	"log"
	"strings"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/filter"
	"leadhunt-engine/internal/scrape/util"
	"leadhunt-engine/internal/store"
)

const defaultRole = "Job Posting"

// RoleFromTitle cleans a search result title into a role.
func RoleFromTitle(title string) string {
	role := util.CleanText(util.StripLinkedInSuffix(title))
	if role == "" {
		return defaultRole
	}
	return role
}

// lookupListing searches the listing URL itself and returns the first result that
// points at it.
func (r *Runner) lookupListing(ctx context.Context, link string) (domain.Candidate, bool) {
	for _, c := range r.Search.Search(ctx, link) {
		if strings.Contains(c.SourceURL, link) {
			return c, true
		}
	}
	return domain.Candidate{}, false
}

// keep runs the freshness and relevance gates with the run's keywords and window.
func (r *Runner) keep(role, text, posted string) (bool, string) {
	return filter.ShouldKeep(
		filter.Listing{Title: role, Description: text, Posted: posted},
		r.Cfg.Input.Keywords,
		r.Cfg.Filters.WindowDays,
	)
}

// Accept records rec unless the ledger has already seen its listing id. Every
// source goes through here after its gates. Only ledger failures are returned;
// mirror, notify and event failures are logged.
func (r *Runner) Accept(ctx context.Context, runID string, rec domain.PostingRecord, source, text string) (bool, error) {
	if r.Ledger == nil {
		return false, fmt.Errorf("accept %s: no ledger", rec.ListingID)
	}
	if r.Ledger.Seen(rec.ListingID) {
		return false, nil
	}
	if err := r.Ledger.Record(rec); err != nil {
		return false, err
	}

	score := 0
	var tags []string
	if r.Scorer != nil {
		score, tags = r.Scorer.Score(rec, text)
	}

	if r.DB != nil {
		if _, err := store.InsertPostingIgnore(ctx, r.DB, store.PostingInsert{
			Record: rec,
			Source: source,
			Score:  score,
			Tags:   tags,
		}); err != nil {
			log.Printf("[store] mirror failed listing_id=%s err=%v", rec.ListingID, err)
		}
	}

	if r.Notifier != nil && score >= r.Cfg.Scoring.NotifyMinScore {
		if err := r.Notifier.Notify(ctx, rec, score); err != nil {
			log.Printf("[notify] send failed listing_id=%s err=%v", rec.ListingID, err)
		}
	}

	r.Hub.Emit(runID, events.PostingCreated, map[string]any{
		"listing_id": rec.ListingID,
		"company":    rec.Company,
		"role":       rec.Role,
		"url":        rec.URL,
		"source":     source,
		"score":      score,
	})

	log.Printf("[%s] accepted company=%q listing_id=%s role=%q score=%d", source, rec.Company, rec.ListingID, rec.Role, score)
	return true, nil
}
