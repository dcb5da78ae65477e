package parquet_metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/labeled"
	"github.com/danthegoodman1/pqbridge/parquet_schema"
)

// twoRowGroupFile has a string column, a decimal column and a timestamp column
// spread over row groups of 2 and 3 rows.
func twoRowGroupFile(t *testing.T) []byte {
	t.Helper()
	str, err := schema.NewPrimitiveNodeLogical("name", parquet.Repetitions.Required, schema.StringLogicalType{}, parquet.Types.ByteArray, -1, -1)
	require.NoError(t, err)
	dec, err := schema.NewPrimitiveNodeLogical("price", parquet.Repetitions.Required, schema.NewDecimalLogicalType(9, 2), parquet.Types.Int32, -1, -1)
	require.NoError(t, err)
	ts, err := schema.NewPrimitiveNodeLogical("at", parquet.Repetitions.Optional, schema.NewTimestampLogicalType(true, schema.TimeUnitMillis), parquet.Types.Int64, -1, -1)
	require.NoError(t, err)
	sc := schema.MustGroup(schema.NewGroupNode("schema", parquet.Repetitions.Required, schema.FieldList{str, dec, ts}, -1))

	var buf bytes.Buffer
	fw := file.NewParquetWriter(&buf, sc, file.WithWriterProps(parquet.NewWriterProperties(parquet.WithCreatedBy("pqbridge test"))))
	require.NoError(t, fw.AppendKeyValueMetadata("origin", "unit-test"))

	for _, n := range []int{2, 3} {
		rgw := fw.AppendRowGroup()
		names := make([]parquet.ByteArray, n)
		prices := make([]int32, n)
		for i := range names {
			names[i] = parquet.ByteArray("row")
			prices[i] = int32(i)
		}
		cw, err := rgw.NextColumn()
		require.NoError(t, err)
		_, err = cw.(*file.ByteArrayColumnChunkWriter).WriteBatch(names, nil, nil)
		require.NoError(t, err)
		cw, err = rgw.NextColumn()
		require.NoError(t, err)
		_, err = cw.(*file.Int32ColumnChunkWriter).WriteBatch(prices, nil, nil)
		require.NoError(t, err)
		cw, err = rgw.NextColumn()
		require.NoError(t, err)
		_, err = cw.(*file.Int64ColumnChunkWriter).WriteBatch(nil, make([]int16, n), nil)
		require.NoError(t, err)
		require.NoError(t, rgw.Close())
	}
	require.NoError(t, fw.Close())
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	s, err := Inspect(twoRowGroupFile(t))
	require.NoError(t, err)

	assert.Equal(t, "pqbridge test", s.Creator)
	assert.EqualValues(t, 5, s.NumRows)
	require.Len(t, s.RowGroups, 2)
	assert.EqualValues(t, 2, s.RowGroups[0].NumRows)
	assert.EqualValues(t, 3, s.RowGroups[1].NumRows)
	var sum int64
	for _, rg := range s.RowGroups {
		sum += rg.NumRows
		assert.Greater(t, rg.TotalByteSize, int64(0))
	}
	assert.Equal(t, s.NumRows, sum)
	assert.Equal(t, []KeyValue{{Key: "origin", Value: "unit-test"}}, s.KeyValues)

	leaves := parquet_schema.Leaves(s.Schema)
	require.Len(t, leaves, 3)
	assert.Equal(t, "STRING", leaves[0].Label())
	assert.Equal(t, "DECIMAL(9,2)", leaves[1].Label())
	assert.Equal(t, "TIMESTAMP(MILLISECONDS,true)", leaves[2].Label())
	assert.Equal(t, parquet_schema.Optional, leaves[2].Repetition)
}

func TestToRecord(t *testing.T) {
	s, err := Inspect(twoRowGroupFile(t))
	require.NoError(t, err)
	rec := s.ToRecord()

	assert.Equal(t, []string{"version", "creator", "num_rows", "key_values", "schema", "row_groups"}, rec.Columns())

	v, _ := rec.Get("num_rows")
	assert.Equal(t, dynamic.Int(5), v)
	v, _ = rec.Get("version")
	assert.IsType(t, dynamic.Int(0), v)

	v, _ = rec.Get("key_values")
	require.IsType(t, dynamic.List{}, v)
	kvs := v.(dynamic.List)
	require.Len(t, kvs, 1)
	assert.Equal(t, []dynamic.Value{dynamic.String("origin"), dynamic.String("unit-test")}, kvs[0].(*dynamic.Record).Values())

	v, _ = rec.Get("row_groups")
	rgs := v.(dynamic.List)
	require.Len(t, rgs, 2)
	assert.Equal(t, []string{"num_rows", "total_byte_size"}, rgs[0].(*dynamic.Record).Columns())

	v, _ = rec.Get("schema")
	cols := v.(dynamic.List)
	require.Len(t, cols, 3)

	name := cols[0].(*dynamic.Record)
	assert.Equal(t, []string{"name", "repetition", "type", "type_length", "logical_type"}, name.Columns())
	got, _ := name.Get("type")
	assert.Equal(t, dynamic.String("BYTE_ARRAY"), got)
	got, _ = name.Get("type_length")
	assert.IsType(t, dynamic.Int(0), got)

	price := cols[1].(*dynamic.Record)
	got, _ = price.Get("type_length")
	assert.Equal(t, dynamic.Null{}, got)
	got, _ = price.Get("repetition")
	assert.Equal(t, dynamic.String("REQUIRED"), got)
}

func TestInspectNoKeyValues(t *testing.T) {
	sc := schema.MustGroup(schema.NewGroupNode("schema", parquet.Repetitions.Required, schema.FieldList{
		schema.NewBooleanNode("flag", parquet.Repetitions.Required, -1),
	}, -1))
	var buf bytes.Buffer
	fw := file.NewParquetWriter(&buf, sc)
	require.NoError(t, fw.Close())

	s, err := Inspect(buf.Bytes())
	require.NoError(t, err)
	rec := s.ToRecord()
	v, _ := rec.Get("key_values")
	assert.Equal(t, dynamic.List{}, v)
	v, _ = rec.Get("row_groups")
	assert.Equal(t, dynamic.List{}, v)
	v, _ = rec.Get("num_rows")
	assert.Equal(t, dynamic.Int(0), v)
}

// parquet-go stores a logical type next to each converted type, so the logical
// label wins.
func TestInspectParquetGoFile(t *testing.T) {
	jsonSchema := `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[` +
		`{"Tag":"type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, name=colA, repetitiontype=OPTIONAL"},` +
		`{"Tag":"type=INT32, convertedtype=INT_8, name=tiny, repetitiontype=REQUIRED"},` +
		`{"Tag":"type=INT64, convertedtype=UINT_64, name=big, repetitiontype=REQUIRED"}]}`

	var buf bytes.Buffer
	pw, err := writer.NewJSONWriterFromWriter(jsonSchema, &buf, 1)
	require.NoError(t, err)
	require.NoError(t, pw.Write(`{"colA":"hey","tiny":5,"big":7}`))
	require.NoError(t, pw.WriteStop())

	s, err := Inspect(buf.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.NumRows)

	leaves := parquet_schema.Leaves(s.Schema)
	require.Len(t, leaves, 3)
	assert.Equal(t, "STRING", leaves[0].Label())
	assert.Equal(t, parquet_schema.Optional, leaves[0].Repetition)
	assert.Equal(t, "INTEGER(8,true)", leaves[1].Label())
	assert.Equal(t, "INTEGER(64,false)", leaves[2].Label())
}

func TestSummarizeConvertedOnlyTypes(t *testing.T) {
	leaf := func(name string, typ pq.Type, ct pq.ConvertedType) *pq.SchemaElement {
		return &pq.SchemaElement{
			Name:           name,
			Type:           pq.TypePtr(typ),
			ConvertedType:  pq.ConvertedTypePtr(ct),
			RepetitionType: pq.FieldRepetitionTypePtr(pq.FieldRepetitionType_REQUIRED),
		}
	}
	price := leaf("price", pq.Type_FIXED_LEN_BYTE_ARRAY, pq.ConvertedType_DECIMAL)
	price.TypeLength = thriftI32(8)
	price.Precision = thriftI32(12)
	price.Scale = thriftI32(3)

	fm := &pq.FileMetaData{
		Version:   1,
		NumRows:   4,
		CreatedBy: thriftString("legacy writer"),
		Schema: []*pq.SchemaElement{
			{Name: "root", NumChildren: thriftI32(5)},
			leaf("colA", pq.Type_BYTE_ARRAY, pq.ConvertedType_UTF8),
			leaf("tiny", pq.Type_INT32, pq.ConvertedType_INT_8),
			leaf("big", pq.Type_INT64, pq.ConvertedType_UINT_64),
			price,
			{Name: "plain", Type: pq.TypePtr(pq.Type_DOUBLE)},
		},
		RowGroups: []*pq.RowGroup{{NumRows: 4, TotalByteSize: 100}},
	}

	s, err := summarize(fm)
	require.NoError(t, err)
	assert.Equal(t, "legacy writer", s.Creator)

	leaves := parquet_schema.Leaves(s.Schema)
	require.Len(t, leaves, 5)
	for _, l := range leaves {
		assert.Nil(t, l.Logical, l.Name)
	}
	assert.Equal(t, "UTF8", leaves[0].Label())
	assert.Equal(t, "INT_8", leaves[1].Label())
	assert.Equal(t, "UINT_64", leaves[2].Label())
	assert.Equal(t, "DECIMAL(12,3)", leaves[3].Label())
	assert.EqualValues(t, 8, leaves[3].TypeLength)
	assert.Equal(t, "", leaves[4].Label())
	assert.Equal(t, parquet_schema.Required, leaves[4].Repetition)
}

func thriftI32(v int32) *int32 { return &v }

func thriftString(v string) *string { return &v }

func TestInspectPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.parquet")
	require.NoError(t, os.WriteFile(path, twoRowGroupFile(t), 0o644))

	s, err := InspectPath(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5, s.NumRows)

	_, err = InspectPath(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.True(t, errors.Is(err, labeled.ErrReaderOpen))
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := Inspect([]byte("nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, labeled.ErrReaderOpen))
	assert.True(t, errors.Is(err, ErrBadMagic))

	huge := make([]byte, 0, 16)
	huge = append(huge, "PAR1"...)
	huge = append(huge, 0, 0, 0, 0)
	huge = binary.LittleEndian.AppendUint32(huge, 0xFFFFFFFF)
	huge = append(huge, "PAR1"...)
	_, err = Inspect(huge)
	assert.True(t, errors.Is(err, labeled.ErrReaderOpen))
	assert.True(t, errors.Is(err, ErrFooterSize))
}

func TestSchemaValueGroupAsymmetry(t *testing.T) {
	leaf := parquet_schema.NewPrimitive("x", parquet_schema.Optional, parquet_schema.FixedLenByteArray)
	leaf.TypeLength = 16
	leaf.WithLogical(parquet_schema.LogicalType{Kind: parquet_schema.LogicalUUID})
	root := &parquet_schema.Group{Name: "schema", Children: []parquet_schema.Node{
		&parquet_schema.Group{Name: "inner", Children: []parquet_schema.Node{leaf}},
	}}

	v := SchemaValue(root)
	outer, ok := v.(dynamic.List)
	require.True(t, ok)
	require.Len(t, outer, 1)
	inner, ok := outer[0].(dynamic.List)
	require.True(t, ok)
	require.Len(t, inner, 1)

	rec := inner[0].(*dynamic.Record)
	assert.Equal(t, []dynamic.Value{
		dynamic.String("x"),
		dynamic.String("OPTIONAL"),
		dynamic.String("FIXED_LEN_BYTE_ARRAY"),
		dynamic.Int(16),
		dynamic.String("UUID"),
	}, rec.Values())
}
