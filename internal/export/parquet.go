package export

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// arrowSchema maps columns whose every cell is a plain number to float64 and
// everything else to string, so values are never rewritten.
func arrowSchema(t *table.Table) *arrow.Schema {
	numeric := numericColumns(t)
	fields := make([]arrow.Field, 0, len(numeric))
	for j, c := range t.Columns() {
		f := arrow.Field{Name: c, Type: arrow.BinaryTypes.String, Nullable: true}
		if numeric[j] {
			f.Type = arrow.PrimitiveTypes.Float64
		}
		fields = append(fields, f)
	}
	return arrow.NewSchema(fields, nil)
}

// WriteParquet writes t as a Snappy-compressed Parquet file. Blank cells of
// float64 columns become nulls.
func WriteParquet(w io.Writer, t *table.Table) error {
	schema := arrowSchema(t)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Record(i) {
			switch fb := b.Field(j).(type) {
			case *array.Float64Builder:
				if x, ok := numericCell(v); ok {
					fb.Append(x)
				} else {
					fb.AppendNull()
				}
			case *array.StringBuilder:
				fb.Append(v)
			}
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	fw, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
