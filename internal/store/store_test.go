package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/domain"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "leadhunt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertPostingIgnoreDedups(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	posted := "2 days ago"
	rec := domain.PostingRecord{
		DiscoveredAt:  time.Now(),
		Company:       "Acme",
		ListingID:     "4012",
		Role:          "Data Engineer",
		URL:           "https://www.linkedin.com/jobs/view/4012",
		PostedRecency: &posted,
	}

	added, err := InsertPostingIgnore(ctx, db.Pool, PostingInsert{Record: rec, Source: "serper", Score: 6, Tags: []string{"data"}})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = InsertPostingIgnore(ctx, db.Pool, PostingInsert{Record: rec, Source: "slack"})
	require.NoError(t, err)
	assert.False(t, added)

	n, err := CountPostings(ctx, db.Pool)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = InsertPostingIgnore(ctx, db.Pool, PostingInsert{Record: domain.PostingRecord{}})
	assert.Error(t, err)
}

func TestListPostings(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	now := time.Now()

	for i, c := range []struct {
		id, company string
		score       int
		age         time.Duration
	}{
		{"1", "Acme", 2, time.Hour},
		{"2", "Globex", 9, 2 * time.Hour},
		{"3", "acme", 5, 10 * 24 * time.Hour},
	} {
		_, err := InsertPostingIgnore(ctx, db.Pool, PostingInsert{
			Record: domain.PostingRecord{DiscoveredAt: now.Add(-c.age), Company: c.company, ListingID: c.id, Role: "R", URL: "u"},
			Score:  c.score,
		})
		require.NoError(t, err, i)
	}

	all, err := ListPostings(ctx, db.Pool, ListPostingsOpts{Sort: "score", Window: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2", all[0].ListingID)
	assert.Equal(t, []string{}, all[0].Tags)

	recent, err := ListPostings(ctx, db.Pool, ListPostingsOpts{Window: "7d"})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "1", recent[0].ListingID)

	acme, err := ListPostings(ctx, db.Pool, ListPostingsOpts{Company: "ACME", Window: "all"})
	require.NoError(t, err)
	assert.Len(t, acme, 2)
}

func TestIdentityCache(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	c := IdentityCache{DB: db.Pool}

	_, ok, err := c.GetIdentity(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, ok)

	id := domain.Identity{DisplayName: "Acme Corporation", Slug: "acme-corporation", CanonicalURL: "https://www.linkedin.com/company/acme-corporation/"}
	require.NoError(t, c.PutIdentity(ctx, "acme", id))
	require.NoError(t, c.PutIdentity(ctx, "acme", id))

	got, ok, err := c.GetIdentity(ctx, " ACME ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got)

	// an identity without a slug is never cached
	require.NoError(t, c.PutIdentity(ctx, "globex", domain.Identity{DisplayName: "Globex"}))
	_, ok, err = c.GetIdentity(ctx, "globex")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrateIsIdempotentAndCheckpoint(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, Migrate(db.Pool))
	require.NoError(t, Checkpoint(context.Background(), db.Pool))
}
