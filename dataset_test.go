package itemset_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rutenml/itemset"
	"github.com/rutenml/itemset/internal/colfile"
)

func ptr(s string) *string { return &s }

// writeSnapshot writes a single-column parquet fixture into dir.
func writeSnapshot(t *testing.T, dir, name, column string, values []*string) {
	t.Helper()
	require.NoError(t, colfile.WriteStringColumn(filepath.Join(dir, name), column, values))
}

// buildDataset writes the canonical two-snapshot fixture (3 + 2 rows) and
// opens a fresh store over it.
func buildDataset(t *testing.T, opts ...itemset.Option) (*itemset.Dataset, string, string) {
	t.Helper()
	src := t.TempDir()
	writeSnapshot(t, src, "part-000.parquet", "G_NAME", []*string{
		ptr("Foo &amp; Bar"), ptr("Widget"), ptr("Gadget"),
	})
	writeSnapshot(t, src, "part-001.parquet", "G_NAME", []*string{
		ptr("Gizmo &lt;XL&gt;"), ptr("Doohickey"),
	})

	dbPath := filepath.Join(t.TempDir(), "items.db")
	opts = append([]itemset.Option{
		itemset.WithRebuild(true),
		itemset.WithSourceDir(src),
	}, opts...)
	ds, err := itemset.Open(context.Background(), dbPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds, dbPath, src
}

func TestOpen_EndToEnd(t *testing.T) {
	ctx := context.Background()
	ds, _, _ := buildDataset(t)

	require.Equal(t, 5, ds.Len())

	// First row of the first file in listing order, entities decoded.
	got, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "Foo & Bar", got)

	// Last row of the second file.
	got, err = ds.Get(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, "Doohickey", got)

	got, err = ds.Get(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "Gizmo <XL>", got)

	// Repeated reads are stable.
	again, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "Foo & Bar", again)
}

func TestGet_OutOfRange(t *testing.T) {
	ctx := context.Background()
	ds, _, _ := buildDataset(t)

	for _, idx := range []int{-1, 5, 100} {
		_, err := ds.Get(ctx, idx)
		var oor *itemset.ErrIndexOutOfRange
		require.ErrorAs(t, err, &oor, "index %d", idx)
		require.Equal(t, idx, oor.Index)
		require.Equal(t, 5, oor.Length)
	}
}

func TestOpen_RebuildWithoutSourceDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "items.db")
	_, err := itemset.Open(context.Background(), dbPath, itemset.WithRebuild(true))
	require.ErrorIs(t, err, itemset.ErrNoSourceDir)

	// Same for a store that simply does not exist yet.
	_, err = itemset.Open(context.Background(), dbPath)
	require.ErrorIs(t, err, itemset.ErrNoSourceDir)
}

func TestOpen_FileCap(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	// Lexicographic listing order: a, b, c.
	writeSnapshot(t, src, "a.parquet", "G_NAME", []*string{ptr("1"), ptr("2"), ptr("3")})
	writeSnapshot(t, src, "b.parquet", "G_NAME", []*string{ptr("4"), ptr("5")})
	writeSnapshot(t, src, "c.parquet", "G_NAME", []*string{ptr("6")})

	dbPath := filepath.Join(t.TempDir(), "items.db")
	ds, err := itemset.Open(ctx, dbPath,
		itemset.WithRebuild(true),
		itemset.WithSourceDir(src),
		itemset.WithFileCap(2),
	)
	require.NoError(t, err)
	defer ds.Close()

	require.Equal(t, 5, ds.Len())
	got, err := ds.Get(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, "5", got)
}

func TestOpen_NullsSkipped(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	writeSnapshot(t, src, "a.parquet", "G_NAME", []*string{ptr("x"), nil, ptr("y")})

	ds, err := itemset.Open(ctx, filepath.Join(t.TempDir(), "items.db"),
		itemset.WithRebuild(true),
		itemset.WithSourceDir(src),
	)
	require.NoError(t, err)
	defer ds.Close()

	require.Equal(t, 2, ds.Len())
	got, err := ds.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "y", got)
}

func TestOpen_MissingColumnAbortsLoad(t *testing.T) {
	src := t.TempDir()
	writeSnapshot(t, src, "a.parquet", "WRONG_COL", []*string{ptr("x")})

	_, err := itemset.Open(context.Background(), filepath.Join(t.TempDir(), "items.db"),
		itemset.WithRebuild(true),
		itemset.WithSourceDir(src),
	)
	var cnf *itemset.ErrColumnNotFound
	require.ErrorAs(t, err, &cnf)
	require.Equal(t, "G_NAME", cnf.Column)
}

func TestOpen_IdempotentReopen(t *testing.T) {
	ctx := context.Background()
	ds, dbPath, _ := buildDataset(t)

	first := make([]string, ds.Len())
	for i := range first {
		v, err := ds.Get(ctx, i)
		require.NoError(t, err)
		first[i] = v
	}
	require.NoError(t, ds.Close())

	// Reopen without rebuild: no source dir needed, contents unchanged.
	reopened, err := itemset.Open(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, len(first), reopened.Len())
	for i, want := range first {
		v, err := reopened.Get(ctx, i)
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}

func TestOpen_CustomTableAndColumn(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	writeSnapshot(t, src, "a.parquet", "title", []*string{ptr("hello")})

	ds, err := itemset.Open(ctx, filepath.Join(t.TempDir(), "items.db"),
		itemset.WithRebuild(true),
		itemset.WithSourceDir(src),
		itemset.WithTableName("products"),
		itemset.WithColumn("title"),
	)
	require.NoError(t, err)
	defer ds.Close()

	require.Equal(t, 1, ds.Len())
	got, err := ds.Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

// The cached row count is written once and never invalidated. A store mutated
// out-of-band therefore reports a stale Len on reopen. This asserts the
// documented behavior; do not "fix" it here without also changing the
// metadata contract.
func TestOpen_StaleRowCountAfterExternalAppend(t *testing.T) {
	ctx := context.Background()
	ds, dbPath, _ := buildDataset(t)
	require.Equal(t, 5, ds.Len())
	require.NoError(t, ds.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "ruten_items" ("G_NAME") VALUES ('extra')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := itemset.Open(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	// Stale: strictly less than the true row count of 6.
	require.Equal(t, 5, reopened.Len())

	// The appended row is invisible through the indexed contract.
	_, err = reopened.Get(ctx, 5)
	var oor *itemset.ErrIndexOutOfRange
	require.ErrorAs(t, err, &oor)
}

// The converse staleness: a row deleted out-of-band leaves the cached count
// too large, and a read inside the cached range hits a missing key. That
// still surfaces as the out-of-range error, never a zero value.
func TestGet_StaleRowCountAfterExternalDelete(t *testing.T) {
	ctx := context.Background()
	ds, dbPath, _ := buildDataset(t)
	require.NoError(t, ds.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM "ruten_items" WHERE id = 5`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := itemset.Open(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, 5, reopened.Len())

	_, err = reopened.Get(ctx, 4)
	var oor *itemset.ErrIndexOutOfRange
	require.ErrorAs(t, err, &oor)
	require.Equal(t, 4, oor.Index)
}

func TestOpen_RebuildIsDestructive(t *testing.T) {
	ctx := context.Background()
	ds, dbPath, _ := buildDataset(t)
	require.Equal(t, 5, ds.Len())
	require.NoError(t, ds.Close())

	// Rebuild from a smaller source directory replaces everything.
	src := t.TempDir()
	writeSnapshot(t, src, "only.parquet", "G_NAME", []*string{ptr("solo")})

	rebuilt, err := itemset.Open(ctx, dbPath,
		itemset.WithRebuild(true),
		itemset.WithSourceDir(src),
	)
	require.NoError(t, err)
	defer rebuilt.Close()

	require.Equal(t, 1, rebuilt.Len())
	got, err := rebuilt.Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "solo", got)
}

func TestOpen_EmptySourceDir(t *testing.T) {
	ctx := context.Background()
	ds, err := itemset.Open(ctx, filepath.Join(t.TempDir(), "items.db"),
		itemset.WithRebuild(true),
		itemset.WithSourceDir(t.TempDir()),
	)
	require.NoError(t, err)
	defer ds.Close()

	require.Zero(t, ds.Len())
	_, err = ds.Get(ctx, 0)
	var oor *itemset.ErrIndexOutOfRange
	require.ErrorAs(t, err, &oor)
}
