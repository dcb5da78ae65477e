package to_parquet

import (
	"errors"
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/from_parquet"
	"github.com/danthegoodman1/pqbridge/labeled"
	"github.com/danthegoodman1/pqbridge/parquet_accumulator"
	"github.com/danthegoodman1/pqbridge/parquet_metadata"
)

func TestRoundTripFlags(t *testing.T) {
	rows := dynamic.List{
		dynamic.RecordOf("flag", dynamic.Bool(true)),
		dynamic.RecordOf("flag", dynamic.Bool(false)),
		dynamic.RecordOf("flag", dynamic.Bool(true)),
	}
	b, err := ToParquetBytes(rows)
	require.NoError(t, err)

	got, err := from_parquet.FromParquetBytes(b)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestRoundTripAllTypes(t *testing.T) {
	at := time.Date(2023, 4, 5, 6, 7, 8, 9_000_000, time.UTC)
	rows := dynamic.List{
		dynamic.RecordOf(
			"id", dynamic.Int(1),
			"score", dynamic.Float(0.25),
			"name", dynamic.String("first"),
			"at", dynamic.NewDate(at),
			"size", dynamic.Filesize(2048),
			"ok", dynamic.Bool(true),
		),
		dynamic.RecordOf(
			"id", dynamic.Int(-2),
			"score", dynamic.Float(-1),
			"name", dynamic.String(""),
			"at", dynamic.NewDate(time.Unix(0, 0)),
			"size", dynamic.Filesize(0),
			"ok", dynamic.Bool(false),
		),
	}

	for _, codec := range []compress.Compression{compress.Codecs.Uncompressed, compress.Codecs.Snappy, compress.Codecs.Gzip, compress.Codecs.Zstd} {
		t.Run(codec.String(), func(t *testing.T) {
			b, err := ToParquetBytes(rows, WithCompression(codec))
			require.NoError(t, err)

			got, err := from_parquet.FromParquetBytes(b)
			require.NoError(t, err)
			require.Len(t, got, 2)

			first := got[0].(*dynamic.Record)
			assert.Equal(t, []string{"id", "score", "name", "at", "size", "ok"}, first.Columns())
			assert.Equal(t, []dynamic.Value{
				dynamic.Int(1),
				dynamic.Float(0.25),
				dynamic.String("first"),
				dynamic.NewDate(at),
				dynamic.Int(2048),
				dynamic.Bool(true),
			}, first.Values())
		})
	}
}

func TestWriteEmptyTable(t *testing.T) {
	b, err := ToParquetBytes(dynamic.List{})
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, labeled.ErrEmptyOrNonUniformTable))

	_, err = ToParquetBytes(dynamic.List{dynamic.Int(1)})
	assert.True(t, errors.Is(err, labeled.ErrEmptyOrNonUniformTable))
}

func TestWriteMissingColumn(t *testing.T) {
	rows := dynamic.List{
		dynamic.RecordOf("a", dynamic.Int(1)),
		dynamic.RecordOf("b", dynamic.Int(2)),
	}
	b, err := ToParquetBytes(rows)
	require.Error(t, err)
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, labeled.ErrUnsupportedColumnType))
	assert.Contains(t, err.Error(), `row 1 is missing column "a"`)
}

func TestWriteLaterRowWrongKind(t *testing.T) {
	rows := dynamic.List{
		dynamic.RecordOf("a", dynamic.Int(1)),
		dynamic.RecordOf("a", dynamic.String("x")),
	}
	_, err := ToParquetBytes(rows)
	require.Error(t, err)
	assert.True(t, errors.Is(err, labeled.ErrUnsupportedColumnType))
	assert.Contains(t, err.Error(), "expected int, got string")
}

func TestWriteUnsupportedFirstRowKind(t *testing.T) {
	_, err := ToParquetBytes(dynamic.List{dynamic.RecordOf("blob", dynamic.Binary{0x01})})
	require.Error(t, err)
	assert.True(t, errors.Is(err, labeled.ErrUnsupportedColumnType))
	assert.Contains(t, err.Error(), "binary")
}

func TestWriteUnionStrategy(t *testing.T) {
	rows := dynamic.List{
		dynamic.RecordOf("a", dynamic.Int(1)),
		dynamic.RecordOf("a", dynamic.Int(2), "b", dynamic.String("x")),
	}

	// b was only inferred from the second row, so the first row lacks it
	_, err := ToParquetBytes(rows, WithStrategy(parquet_accumulator.UnionStrategy{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `row 0 is missing column "b"`)

	rows = dynamic.List{
		dynamic.RecordOf("a", dynamic.Int(1), "b", dynamic.String("w")),
		dynamic.RecordOf("b", dynamic.String("x"), "a", dynamic.Int(2)),
	}
	b, err := ToParquetBytes(rows, WithStrategy(parquet_accumulator.UnionStrategy{}))
	require.NoError(t, err)
	got, err := from_parquet.FromParquetBytes(b)
	require.NoError(t, err)
	assert.Equal(t, []dynamic.Value{dynamic.Int(2), dynamic.String("x")}, got[1].(*dynamic.Record).Values())
}

func TestWriteMetadata(t *testing.T) {
	rows := dynamic.List{dynamic.RecordOf("n", dynamic.Int(1)), dynamic.RecordOf("n", dynamic.Int(2))}
	b, err := ToParquetBytes(rows, WithKeyValue("source", "test"), WithCreatedBy("pqbridge tests"))
	require.NoError(t, err)

	s, err := parquet_metadata.Inspect(b)
	require.NoError(t, err)
	assert.Equal(t, "pqbridge tests", s.Creator)
	assert.EqualValues(t, 2, s.NumRows)
	require.Len(t, s.RowGroups, 1)
	require.Len(t, s.KeyValues, 2)
	assert.Equal(t, parquet_metadata.KeyValue{Key: "source", Value: "test"}, s.KeyValues[0])
	assert.Equal(t, WriteIDKey, s.KeyValues[1].Key)
	assert.Len(t, s.KeyValues[1].Value, 22)

	other, err := ToParquetBytes(rows)
	require.NoError(t, err)
	s2, err := parquet_metadata.Inspect(other)
	require.NoError(t, err)
	require.Len(t, s2.KeyValues, 1)
	assert.NotEqual(t, s.KeyValues[1].Value, s2.KeyValues[0].Value)

	fixed, err := ToParquetBytes(rows, WithWriteID("w1"))
	require.NoError(t, err)
	s3, err := parquet_metadata.Inspect(fixed)
	require.NoError(t, err)
	assert.Equal(t, []parquet_metadata.KeyValue{{Key: WriteIDKey, Value: "w1"}}, s3.KeyValues)
}

func TestWrittenSchemaLabels(t *testing.T) {
	rows := dynamic.List{dynamic.RecordOf(
		"name", dynamic.String("a"),
		"at", dynamic.NewDate(time.Unix(1, 0)),
		"n", dynamic.Int(1),
	)}
	b, err := ToParquetBytes(rows)
	require.NoError(t, err)

	s, err := parquet_metadata.Inspect(b)
	require.NoError(t, err)
	v, _ := s.ToRecord().Get("schema")
	cols := v.(dynamic.List)
	require.Len(t, cols, 3)

	var labels []dynamic.Value
	for _, c := range cols {
		l, _ := c.(*dynamic.Record).Get("logical_type")
		labels = append(labels, l)
	}
	assert.Equal(t, []dynamic.Value{
		dynamic.String("STRING"),
		dynamic.String("TIMESTAMP(MILLISECONDS,true)"),
		dynamic.String(""),
	}, labels)
}

func TestDateColumnOnDisk(t *testing.T) {
	at := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	rows := dynamic.List{dynamic.RecordOf("at", dynamic.NewDate(at))}
	b, err := ToParquetBytes(rows)
	require.NoError(t, err)

	s, err := parquet_metadata.Inspect(b)
	require.NoError(t, err)
	v, _ := s.ToRecord().Get("schema")
	col := v.(dynamic.List)[0].(*dynamic.Record)
	typ, _ := col.Get("type")
	assert.Equal(t, dynamic.String("INT64"), typ)
	label, _ := col.Get("logical_type")
	assert.Equal(t, dynamic.String("TIMESTAMP(MILLISECONDS,true)"), label)

	got, err := from_parquet.FromParquetBytes(b)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestResourceStackOrder(t *testing.T) {
	s := &resourceStack{}
	s.push("file writer")
	s.push("row group")

	err := s.pop("file writer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, labeled.ErrWriterLifecycle))

	require.NoError(t, s.pop("row group"))
	require.NoError(t, s.pop("file writer"))
	assert.True(t, errors.Is(s.pop("column writer"), labeled.ErrWriterLifecycle))
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, compress.Codecs.Snappy, c)

	c, err = ParseCompression("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, compress.Codecs.Zstd, c)

	_, err = ParseCompression("lzo")
	assert.Error(t, err)
}
