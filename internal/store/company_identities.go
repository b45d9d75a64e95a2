package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadhunt-engine/internal/domain"
)

// GetCompanyIdentity returns the cached identity for a normalized name key.
func GetCompanyIdentity(ctx context.Context, db *sql.DB, key string) (domain.Identity, bool, error) {
	key = normalizeKey(key)
	if key == "" {
		return domain.Identity{}, false, nil
	}

	var id domain.Identity
	err := db.QueryRowContext(ctx, `
SELECT display_name, slug, canonical_url FROM company_identities WHERE name_key = ? LIMIT 1;`,
		key,
	).Scan(&id.DisplayName, &id.Slug, &id.CanonicalURL)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, fmt.Errorf("get company identity: %w", err)
	}
	return id, id.Valid(), nil
}

func UpsertCompanyIdentity(ctx context.Context, db *sql.DB, key string, id domain.Identity) error {
	key = normalizeKey(key)
	if key == "" || !id.Valid() {
		return nil
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO company_identities(name_key, display_name, slug, canonical_url, resolved_at)
VALUES(?,?,?,?,?)
ON CONFLICT(name_key) DO UPDATE SET
  display_name = excluded.display_name,
  slug = excluded.slug,
  canonical_url = excluded.canonical_url,
  resolved_at = excluded.resolved_at;`,
		key, id.DisplayName, id.Slug, id.CanonicalURL, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert company identity: %w", err)
	}
	return nil
}

// IdentityCache adapts the table to resolve.Cache.
type IdentityCache struct {
	DB *sql.DB
}

func (c IdentityCache) GetIdentity(ctx context.Context, key string) (domain.Identity, bool, error) {
	return GetCompanyIdentity(ctx, c.DB, key)
}

func (c IdentityCache) PutIdentity(ctx context.Context, key string, id domain.Identity) error {
	return UpsertCompanyIdentity(ctx, c.DB, key, id)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
