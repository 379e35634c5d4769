// Command itemset builds an item-name store from parquet snapshots and
// answers simple queries against it.
//
// Build a store:
//
//	itemset --db items.db --source /data/snapshots --rebuild --verbose
//
// Print a row:
//
//	itemset --db items.db --get 42
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/rutenml/itemset"
)

func main() {
	var (
		dbPath  = pflag.String("db", "items.db", "path to the SQLite store")
		source  = pflag.String("source", "", "directory of parquet snapshot files")
		column  = pflag.String("column", "G_NAME", "column to extract from each snapshot")
		table   = pflag.String("table", "ruten_items", "name of the data table")
		fileCap = pflag.Int("cap", 0, "load at most this many snapshot files (0 = all)")
		rebuild = pflag.Bool("rebuild", false, "delete and rebuild the store from --source")
		get     = pflag.Int("get", -1, "print the row at this zero-based index and exit")
		verbose = pflag.Bool("verbose", false, "log load progress to stderr")
	)
	pflag.Parse()

	logger := itemset.NoopLogger()
	if *verbose {
		logger = itemset.NewTextLogger(slog.LevelInfo)
	}

	ctx := context.Background()
	ds, err := itemset.Open(ctx, *dbPath,
		itemset.WithTableName(*table),
		itemset.WithColumn(*column),
		itemset.WithRebuild(*rebuild),
		itemset.WithSourceDir(*source),
		itemset.WithFileCap(*fileCap),
		itemset.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "itemset:", err)
		os.Exit(1)
	}
	defer ds.Close()

	if *get >= 0 {
		v, err := ds.Get(ctx, *get)
		if err != nil {
			fmt.Fprintln(os.Stderr, "itemset:", err)
			os.Exit(1)
		}
		fmt.Println(v)
		return
	}

	fmt.Printf("%s: table %s, %d rows\n", *dbPath, *table, ds.Len())
}
