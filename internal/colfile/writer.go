package colfile

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

// WriteStringColumn writes values as a single-column parquet file at path.
// A nil entry becomes a null in the column. Used by fixtures and tooling; the
// load path itself only ever reads.
func WriteStringColumn(path, column string, values []*string) error {
	mem := memory.DefaultAllocator
	schema := arrow.NewSchema([]arrow.Field{
		{Name: column, Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()

	sb := rb.Field(0).(*array.StringBuilder)
	for _, v := range values {
		if v == nil {
			sb.AppendNull()
			continue
		}
		sb.Append(*v)
	}

	rec := rb.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("colfile: create %s: %w", path, err)
	}

	chunkSize := int64(len(values))
	if chunkSize == 0 {
		chunkSize = 1
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	if err := pqarrow.WriteTable(tbl, f, chunkSize, props, pqarrow.DefaultWriterProps()); err != nil {
		_ = f.Close()
		return fmt.Errorf("colfile: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("colfile: close %s: %w", path, err)
	}
	return nil
}
