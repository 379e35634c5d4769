// Package itemset provides an embedded, SQLite-backed dataset of item-name
// strings for training pipelines.
//
// The store is built once by bulk-loading a single string column out of a
// directory of parquet snapshot files. After that, the dataset serves indexed
// random-access reads: a zero-based index is translated to the row's primary
// key and the stored text is returned with HTML entities decoded.
//
// # Quick Start
//
// Build a store from snapshots (destructive if the store already exists):
//
//	ctx := context.Background()
//	ds, err := itemset.Open(ctx, "items.db",
//	    itemset.WithRebuild(true),
//	    itemset.WithSourceDir("/data/snapshots"),
//	    itemset.WithColumn("G_NAME"),
//	)
//
// Re-open an existing store:
//
//	ds, err := itemset.Open(ctx, "items.db")
//	defer ds.Close()
//
//	n := ds.Len()
//	name, err := ds.Get(ctx, 0)
//
// # Row Count Caching
//
// The total row count is cached in a metadata table inside the store, so
// re-opening a large store does not pay for a full COUNT(*). The cached value
// is written once and is NOT invalidated if the data table is later appended
// to out-of-band; callers that mutate the store directly must clear the
// metadata entry themselves.
//
// # Concurrency
//
// A Dataset owns its store handle exclusively. All operations are synchronous
// and single-threaded; do not open the same store path for writing from two
// processes at once.
package itemset
