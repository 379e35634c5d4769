// Package colfile reads a single string column out of parquet snapshot files.
package colfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

// Suffix is the file name suffix that marks a file as a parquet snapshot.
const Suffix = ".parquet"

// ErrColumnMissing is returned when the requested column is not part of the
// file's schema.
var ErrColumnMissing = errors.New("colfile: column not in schema")

// ReadStringColumn reads every non-null value of the named column from the
// parquet file at path, in row order. Only the requested column is
// materialized; the other columns of the file are never decoded.
func ReadStringColumn(ctx context.Context, path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("colfile: open %s: %w", path, err)
	}
	defer f.Close()

	rdr, err := file.NewParquetReader(f)
	if err != nil {
		return nil, fmt.Errorf("colfile: read parquet %s: %w", path, err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: 4096}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("colfile: arrow reader %s: %w", path, err)
	}

	schema, err := fr.Schema()
	if err != nil {
		return nil, fmt.Errorf("colfile: schema of %s: %w", path, err)
	}
	indices := schema.FieldIndices(column)
	if len(indices) == 0 {
		return nil, fmt.Errorf("colfile: %s: %q: %w", path, column, ErrColumnMissing)
	}

	rr, err := fr.GetRecordReader(ctx, indices[:1], nil)
	if err != nil {
		return nil, fmt.Errorf("colfile: record reader %s: %w", path, err)
	}
	defer rr.Release()

	values := make([]string, 0, int(rdr.NumRows()))
	for rr.Next() {
		rec := rr.Record()
		col := rec.Column(0)
		switch arr := col.(type) {
		case *array.String:
			for i := 0; i < arr.Len(); i++ {
				if arr.IsNull(i) {
					continue
				}
				values = append(values, arr.Value(i))
			}
		case *array.LargeString:
			for i := 0; i < arr.Len(); i++ {
				if arr.IsNull(i) {
					continue
				}
				values = append(values, arr.Value(i))
			}
		default:
			return nil, fmt.Errorf("colfile: %s: column %q has non-string type %s", path, column, col.DataType())
		}
	}
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("colfile: read %s: %w", path, err)
	}
	return values, nil
}
