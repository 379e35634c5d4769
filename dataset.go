package itemset

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"strconv"
	"time"

	"github.com/rutenml/itemset/internal/store"
)

// Dataset serves indexed random-access reads over one item-name table.
//
// Indexing is zero-based; internally rows are keyed from 1 in insertion
// order, so index i maps to key i+1.
type Dataset struct {
	st      *store.Store
	table   string
	column  string
	numRows int64
	logger  *Logger
}

// Open opens the store at dbPath, building it from the configured source
// directory first when it does not exist or a rebuild was requested.
//
// Rebuilding deletes any existing store at the path before loading. A build
// without a source directory fails with ErrNoSourceDir. If the load fails
// partway, rows from snapshots committed before the failure remain in the
// store, but the handle is released and no Dataset is returned.
func Open(ctx context.Context, dbPath string, opts ...Option) (*Dataset, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	build := o.rebuild
	if !build {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			build = true
		} else if err != nil {
			return nil, fmt.Errorf("itemset: stat %s: %w", dbPath, err)
		}
	}
	if build && o.sourceDir == "" {
		return nil, ErrNoSourceDir
	}

	if build {
		if err := store.Remove(dbPath); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	if build {
		if err := st.CreateTable(ctx, o.tableName, o.column); err != nil {
			_ = st.Close()
			return nil, err
		}
		if err := bulkLoad(ctx, st, o); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	start := time.Now()
	n, err := cachedRowCount(ctx, st, o.tableName)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	o.logger.Info("dataset open",
		"path", dbPath, "table", o.tableName, "rows", n, "took", time.Since(start))

	return &Dataset{
		st:      st,
		table:   o.tableName,
		column:  o.column,
		numRows: n,
		logger:  o.logger,
	}, nil
}

// cachedRowCount returns the row count from the metadata table, computing it
// with a full COUNT(*) and persisting it the first time a store is opened.
// The count runs at most once per store lifetime; a later out-of-band append
// to the table does not refresh it.
func cachedRowCount(ctx context.Context, st *store.Store, table string) (int64, error) {
	v, err := st.GetMeta(ctx, store.MetaKeyNumRows)
	if err == nil {
		if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
			return n, nil
		}
		// Unparseable entry: recount below and overwrite it.
	} else if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	n, err := st.Count(ctx, table)
	if err != nil {
		return 0, err
	}
	if err := st.PutMeta(ctx, store.MetaKeyNumRows, strconv.FormatInt(n, 10)); err != nil {
		return 0, err
	}
	return n, nil
}

// Len returns the number of rows in the dataset, per the cached count read
// at open time.
func (d *Dataset) Len() int { return int(d.numRows) }

// Get returns the item name at the zero-based index, with HTML character
// entities decoded (e.g. "&amp;" becomes "&").
//
// An index outside [0, Len) returns *ErrIndexOutOfRange, as does an index
// the cached count claims is valid but whose row is missing.
func (d *Dataset) Get(ctx context.Context, index int) (string, error) {
	if index < 0 || int64(index) >= d.numRows {
		return "", &ErrIndexOutOfRange{Index: index, Length: int(d.numRows)}
	}
	v, err := d.st.Get(ctx, d.table, d.column, int64(index)+1)
	if errors.Is(err, store.ErrNotFound) {
		return "", &ErrIndexOutOfRange{Index: index, Length: int(d.numRows)}
	}
	if err != nil {
		return "", fmt.Errorf("itemset: read index %d: %w", index, err)
	}
	return html.UnescapeString(v), nil
}

// Close releases the underlying store handle.
func (d *Dataset) Close() error {
	if d == nil {
		return nil
	}
	return d.st.Close()
}
