package to_parquet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/dustin/go-humanize"

	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/parquet_accumulator"
	"github.com/danthegoodman1/pqbridge/parquet_schema"
	"github.com/danthegoodman1/pqbridge/utils"
)

var logger = gologger.NewComponentLogger("to_parquet")

// ToParquetBytes writes the table as one row group. The schema comes from the
// configured strategy and every column is buffered in full before it is
// written. On any failure no bytes are returned.
func ToParquetBytes(rows dynamic.List, opts ...Option) ([]byte, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := time.Now()
	records, err := parquet_accumulator.Records(rows)
	if err != nil {
		return nil, err
	}
	inferred, err := cfg.strategy.Infer(rows)
	if err != nil {
		return nil, err
	}
	sc, err := toGroupNode(inferred)
	if err != nil {
		return nil, err
	}
	leaves := parquet_schema.Leaves(inferred)

	props := parquet.NewWriterProperties(
		parquet.WithCompression(cfg.codec),
		parquet.WithCreatedBy(cfg.createdBy),
	)

	writeID := cfg.writeID
	if writeID == "" {
		writeID = utils.GenRandomID("")
	}

	var buf bytes.Buffer
	err = withFile(&buf, sc, []file.WriteOption{file.WithWriterProps(props)}, func(stack *resourceStack, fw *file.Writer) error {
		for _, kv := range append(cfg.keyValues, keyValue{key: WriteIDKey, value: writeID}) {
			if err := fw.AppendKeyValueMetadata(kv.key, kv.value); err != nil {
				return lifecycleError("AppendKeyValueMetadata", err)
			}
		}
		return withRowGroup(stack, fw, func(rgw file.SerialRowGroupWriter) error {
			for _, leaf := range leaves {
				err := withColumn(stack, rgw, func(cw file.ColumnChunkWriter) error {
					return writeColumn(cw, leaf, records)
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("rows", len(records)).Int("columns", len(leaves)).
		Str("size", humanize.Bytes(uint64(buf.Len()))).
		Msgf("wrote parquet file in %s", time.Since(s))
	return buf.Bytes(), nil
}

func writeColumn(cw file.ColumnChunkWriter, leaf *parquet_schema.Primitive, records []*dynamic.Record) error {
	var err error
	switch w := cw.(type) {
	case *file.BooleanColumnChunkWriter:
		var vals []bool
		if vals, err = gather(records, leaf.Name, asBool); err != nil {
			return err
		}
		_, err = w.WriteBatch(vals, nil, nil)
	case *file.Int64ColumnChunkWriter:
		conv := asInt64
		if leaf.Logical != nil && leaf.Logical.Kind == parquet_schema.LogicalTimestamp {
			conv = asTimestampMillis
		}
		var vals []int64
		if vals, err = gather(records, leaf.Name, conv); err != nil {
			return err
		}
		_, err = w.WriteBatch(vals, nil, nil)
	case *file.Float64ColumnChunkWriter:
		var vals []float64
		if vals, err = gather(records, leaf.Name, asFloat64); err != nil {
			return err
		}
		_, err = w.WriteBatch(vals, nil, nil)
	case *file.ByteArrayColumnChunkWriter:
		var vals []parquet.ByteArray
		if vals, err = gather(records, leaf.Name, asByteArray); err != nil {
			return err
		}
		_, err = w.WriteBatch(vals, nil, nil)
	default:
		return unsupportedColumn("column %q has physical type %s, which has no writer", leaf.Name, leaf.Physical)
	}
	if err != nil {
		return lifecycleError(fmt.Sprintf("WriteBatch for column %q", leaf.Name), err)
	}
	return nil
}

// gather materializes one column across every record.
func gather[T any](records []*dynamic.Record, col string, conv func(dynamic.Value) (T, error)) ([]T, error) {
	out := make([]T, len(records))
	for i, rec := range records {
		v, ok := rec.Get(col)
		if !ok {
			return nil, unsupportedColumn("row %d is missing column %q", i, col)
		}
		t, err := conv(v)
		if err != nil {
			return nil, unsupportedColumn("row %d column %q: %s", i, col, err)
		}
		out[i] = t
	}
	return out, nil
}
