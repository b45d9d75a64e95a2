package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"leadhunt-engine/internal/domain"
)

type PostingInsert struct {
	Record domain.PostingRecord
	Source string // serper | duckduckgo | slack | email
	Score  int
	Tags   []string
}

// InsertPostingIgnore mirrors an accepted record. added is false when the
// listing id is already stored.
func InsertPostingIgnore(ctx context.Context, db *sql.DB, p PostingInsert) (added bool, err error) {
	if strings.TrimSpace(p.Record.ListingID) == "" {
		return false, fmt.Errorf("insert posting: empty listing id")
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsB, _ := json.Marshal(tags)

	rec := p.Record
	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO postings (listing_id, company, role, url, posted, source, score, tags, discovered_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.ListingID, rec.Company, rec.Role, rec.URL, rec.Recency(), p.Source, p.Score, string(tagsB),
		rec.DiscoveredAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("insert posting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return n > 0, nil
}
