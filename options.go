package itemset

// options collects the knobs shared by Open and the bulk loader. All of the
// historical constructor variants collapse into this one structure.
type options struct {
	tableName string
	column    string
	rebuild   bool
	sourceDir string
	fileCap   int
	logger    *Logger
}

const (
	defaultTableName = "ruten_items"
	defaultColumn    = "G_NAME"
)

func defaultOptions() options {
	return options{
		tableName: defaultTableName,
		column:    defaultColumn,
		logger:    NoopLogger(),
	}
}

// Option configures Open behavior.
type Option func(*options)

// WithTableName sets the name of the data table inside the store.
// Default: "ruten_items".
func WithTableName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.tableName = name
		}
	}
}

// WithColumn sets the name of the column extracted from each snapshot file.
// The same name is used for the text column of the data table.
// Default: "G_NAME".
func WithColumn(name string) Option {
	return func(o *options) {
		if name != "" {
			o.column = name
		}
	}
}

// WithRebuild forces the store to be rebuilt from the source directory.
//
// Rebuilding is destructive: any existing store at the path is deleted first.
// A store that does not exist yet is always built, rebuild flag or not.
func WithRebuild(rebuild bool) Option {
	return func(o *options) {
		o.rebuild = rebuild
	}
}

// WithSourceDir sets the directory containing parquet snapshot files.
// Required whenever the store has to be (re)built.
func WithSourceDir(dir string) Option {
	return func(o *options) {
		o.sourceDir = dir
	}
}

// WithFileCap limits the bulk load to the first n snapshot files in listing
// order. Zero or negative means no cap.
func WithFileCap(n int) Option {
	return func(o *options) {
		o.fileCap = n
	}
}

// WithLogger sets the logger used for load progress and open timings.
// If nil is passed, logging stays disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
