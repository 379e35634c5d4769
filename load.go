package itemset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rutenml/itemset/internal/colfile"
	"github.com/rutenml/itemset/internal/store"
)

// listSnapshots returns the parquet files in dir, capped to the first limit
// entries when limit > 0. os.ReadDir sorts entries by name, so selection
// order is deterministic (lexicographic) rather than whatever order the
// platform enumerates the directory in.
func listSnapshots(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("itemset: read source dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), colfile.Suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// bulkLoad reads the configured column from every selected snapshot and
// appends its non-null values to the data table, committing once per file.
// The first failure aborts the load with no retry; rows from files committed
// before the failure stay in the table.
func bulkLoad(ctx context.Context, st *store.Store, o options) error {
	files, err := listSnapshots(o.sourceDir, o.fileCap)
	if err != nil {
		return err
	}

	start := time.Now()
	total := 0
	for i, path := range files {
		values, err := colfile.ReadStringColumn(ctx, path, o.column)
		if errors.Is(err, colfile.ErrColumnMissing) {
			return &ErrColumnNotFound{File: path, Column: o.column, cause: err}
		}
		if err != nil {
			return fmt.Errorf("itemset: load %s: %w", path, err)
		}
		if err := st.Append(ctx, o.tableName, o.column, values); err != nil {
			return fmt.Errorf("itemset: append %s: %w", path, err)
		}
		total += len(values)
		o.logger.Info("snapshot loaded",
			"file", filepath.Base(path), "rows", len(values),
			"processed", i+1, "of", len(files))
	}

	o.logger.Info("bulk load complete",
		"files", len(files), "rows", total, "took", time.Since(start))
	return nil
}

// loadConcurrent is an experimental variant of bulkLoad: the snapshot list is
// split into fixed-size batches and loaded through a bounded worker pool,
// each worker owning its own store handle. SQLite serializes writers, so
// appends still land one at a time; the overlap is in parquet decoding.
// Insertion order across batches is NOT the listing order, and the cached row
// count is refreshed in a single post-pass instead of per file.
//
// Not wired into Open. Do not rely on it.
func loadConcurrent(ctx context.Context, dbPath string, o options, workers, batchSize int) error {
	files, err := listSnapshots(o.sourceDir, o.fileCap)
	if err != nil {
		return err
	}
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}

	var batches [][]string
	for i := 0; i < len(files); i += batchSize {
		batches = append(batches, files[i:min(i+batchSize, len(files))])
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, batch := range batches {
		g.Go(func() error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			for _, path := range batch {
				values, err := colfile.ReadStringColumn(ctx, path, o.column)
				if err != nil {
					return fmt.Errorf("itemset: load %s: %w", path, err)
				}
				if err := st.Append(ctx, o.tableName, o.column, values); err != nil {
					return fmt.Errorf("itemset: append %s: %w", path, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	n, err := st.Count(ctx, o.tableName)
	if err != nil {
		return err
	}
	return st.PutMeta(ctx, store.MetaKeyNumRows, strconv.FormatInt(n, 10))
}
