package riddles_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/riddler/assets"
	"github.com/robalobadob/riddler/internal/database"
	"github.com/robalobadob/riddler/internal/riddles"
)

func TestSeedAndLoadDB(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "riddles.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(db, assets.Migrations()))
	// A second run must be a no-op.
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	entries := []riddles.Entry{
		{Prompt: "What has one eye but can't see?", Answer: "Needle"},
		{Prompt: "What gets bigger the more you take away?", Answer: "Hole"},
	}
	n, err := riddles.Seed(ctx, db, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Seeding a non-empty table inserts nothing.
	n, err = riddles.Seed(ctx, db, []riddles.Entry{{Prompt: "x", Answer: "Egg"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := riddles.LoadDB(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestFromDBSeedsEmbeddedEntries(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "riddles.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	bank, err := riddles.FromDB(ctx, db)
	require.NoError(t, err)
	embedded, err := riddles.Embedded()
	require.NoError(t, err)
	assert.Equal(t, embedded, bank.Entries())

	// A second open reuses the stored rows.
	again, err := riddles.FromDB(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, bank.Len(), again.Len())
}

func TestFromDBRejectsBadRows(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "riddles.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	_, err = riddles.Seed(ctx, db, []riddles.Entry{{Prompt: "What is 2+2?", Answer: "4"}})
	require.NoError(t, err)

	_, err = riddles.FromDB(ctx, db)
	assert.ErrorIs(t, err, riddles.ErrInvalidEntry)
}
