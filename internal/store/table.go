package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Posting is a mirrored ledger row as served by GET /postings.
type Posting struct {
	ID           int64    `json:"id"`
	ListingID    string   `json:"listing_id"`
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	URL          string   `json:"url"`
	Posted       string   `json:"posted"`
	Source       string   `json:"source"`
	Score        int      `json:"score"`
	Tags         []string `json:"tags"`
	DiscoveredAt string   `json:"discovered_at"`
}

type ListPostingsOpts struct {
	Sort    string // score | date | company | role
	Window  string // 24h | 7d | 30d | all
	Company string // exact, case-insensitive
	Limit   int
}

// timeLayout matches sqlite datetime() so window filters compare as strings.
const timeLayout = "2006-01-02 15:04:05"

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{`
CREATE TABLE IF NOT EXISTS postings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  listing_id TEXT NOT NULL UNIQUE,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  url TEXT NOT NULL,
  posted TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  score INTEGER NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '[]',
  discovered_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS company_identities (
  name_key TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  slug TEXT NOT NULL,
  canonical_url TEXT NOT NULL,
  resolved_at TEXT NOT NULL
);`, `
CREATE INDEX IF NOT EXISTS idx_postings_discovered_at ON postings(discovered_at);`, `
CREATE INDEX IF NOT EXISTS idx_postings_company ON postings(company COLLATE NOCASE);`, `
CREATE INDEX IF NOT EXISTS idx_company_identities_slug ON company_identities(slug);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

func ListPostings(ctx context.Context, db *sql.DB, opts ListPostingsOpts) ([]Posting, error) {
	// whitelisted sort columns
	order := map[string]string{
		"score":   "score DESC, discovered_at DESC",
		"date":    "discovered_at DESC",
		"company": "company COLLATE NOCASE ASC, discovered_at DESC",
		"role":    "role COLLATE NOCASE ASC",
	}[opts.Sort]
	if order == "" {
		order = "discovered_at DESC"
	}
	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 500
	}

	var where []string
	var args []any
	switch opts.Window {
	case "24h":
		where = append(where, "discovered_at >= datetime('now','-24 hours')")
	case "7d":
		where = append(where, "discovered_at >= datetime('now','-7 days')")
	case "30d":
		where = append(where, "discovered_at >= datetime('now','-30 days')")
	}
	if opts.Company != "" {
		where = append(where, "company = ? COLLATE NOCASE")
		args = append(args, opts.Company)
	}
	clause := ""
	for i, w := range where {
		if i == 0 {
			clause = "WHERE " + w
		} else {
			clause += " AND " + w
		}
	}

	query := fmt.Sprintf(`
SELECT id, listing_id, company, role, url, posted, source, score, tags, discovered_at
FROM postings
%s
ORDER BY %s
LIMIT ?;`, clause, order)
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	defer rows.Close()

	out := []Posting{}
	for rows.Next() {
		var p Posting
		var tagsJSON string
		if err := rows.Scan(&p.ID, &p.ListingID, &p.Company, &p.Role, &p.URL,
			&p.Posted, &p.Source, &p.Score, &tagsJSON, &p.DiscoveredAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &p.Tags)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func CountPostings(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
