package from_parquet

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/schema"

	"github.com/danthegoodman1/pqbridge/decimal"
	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/labeled"
)

var logger = gologger.NewComponentLogger("from_parquet")

// FromParquetBytes decodes every row of every row group into a record whose
// columns follow the file's schema order. Any failure aborts the whole read.
func FromParquetBytes(b []byte) (dynamic.List, error) {
	rdr, err := file.NewParquetReader(bytes.NewReader(b))
	if err != nil {
		return nil, labeled.Wrap(labeled.ReaderOpenFailure, "Could not read Parquet file", err)
	}
	defer rdr.Close()

	sc := rdr.MetaData().Schema
	if err := checkFlat(sc.Root()); err != nil {
		return nil, err
	}

	names := make([]string, sc.NumColumns())
	for i := range names {
		names[i] = sc.Column(i).Name()
	}

	rows := make(dynamic.List, 0, rdr.NumRows())
	var rowIndex int64
	for rg := 0; rg < rdr.NumRowGroups(); rg++ {
		rgr := rdr.RowGroup(rg)
		numRows := rgr.NumRows()

		columns := make([][]Field, len(names))
		for c := range names {
			ccr, err := rgr.Column(c)
			if err != nil {
				return nil, rowDecodeFailure(rowIndex, fmt.Errorf("error opening column %q in row group %d: %w", names[c], rg, err))
			}
			columns[c], err = readColumn(ccr, numRows)
			if err != nil {
				return nil, rowDecodeFailure(rowIndex, fmt.Errorf("error reading column %q in row group %d: %w", names[c], rg, err))
			}
		}

		for r := int64(0); r < numRows; r++ {
			rec := dynamic.NewRecord()
			for c, name := range names {
				v, err := Decode(columns[c][r])
				if err != nil {
					return nil, rowDecodeFailure(rowIndex, err)
				}
				rec.Set(name, v)
			}
			rows = append(rows, rec)
			rowIndex++
		}
	}

	logger.Debug().Int("rowGroups", rdr.NumRowGroups()).Int64("rows", rowIndex).Msg("decoded parquet file")
	return rows, nil
}

func rowDecodeFailure(row int64, err error) *labeled.Error {
	return &labeled.Error{
		Kind:  labeled.RowDecodeFailure,
		Label: "Could not read row",
		Msg:   fmt.Sprintf("row %d: %s", row, err),
		Err:   err,
	}
}

// checkFlat rejects any top level field that is a group or a repeated leaf.
func checkFlat(root *schema.GroupNode) error {
	for i := 0; i < root.NumFields(); i++ {
		n := root.Field(i)
		var f Field
		switch {
		case n.Type() == schema.Group:
			lt, ct := n.LogicalType(), n.ConvertedType()
			switch {
			case lt.Equals(schema.NewListLogicalType()) || ct == schema.ConvertedTypes.List:
				f = FieldList{Name: n.Name()}
			case lt.Equals(schema.MapLogicalType{}) || ct == schema.ConvertedTypes.Map || ct == schema.ConvertedTypes.MapKeyValue:
				f = FieldMap{Name: n.Name()}
			default:
				f = FieldGroup{Name: n.Name()}
			}
		case n.RepetitionType() == parquet.Repetitions.Repeated:
			f = FieldList{Name: n.Name()}
		default:
			continue
		}
		_, err := Decode(f)
		return err
	}
	return nil
}

type batchReader[T any] interface {
	HasNext() bool
	ReadBatch(batchSize int64, values []T, defLvls, repLvls []int16) (int64, int, error)
}

// readAll drains a column chunk holding numRows top level values. The values
// slice is packed: nulls only show up in the definition levels.
func readAll[T any](r batchReader[T], numRows int64, defLvls []int16) ([]T, error) {
	values := make([]T, numRows)
	var levels, read int64
	for levels < numRows && r.HasNext() {
		var dl []int16
		if defLvls != nil {
			dl = defLvls[levels:]
		}
		total, n, err := r.ReadBatch(numRows-levels, values[read:], dl, nil)
		if err != nil {
			return nil, err
		}
		levels += total
		read += int64(n)
	}
	if levels != numRows {
		return nil, fmt.Errorf("column chunk ended after %d of %d rows", levels, numRows)
	}
	return values[:read], nil
}

// expand pairs packed values with definition levels, producing one field per row.
func expand[T any](values []T, defLvls []int16, maxDef int16, conv func(T) Field) []Field {
	if defLvls == nil {
		out := make([]Field, len(values))
		for i, v := range values {
			out[i] = conv(v)
		}
		return out
	}
	out := make([]Field, len(defLvls))
	vi := 0
	for i, d := range defLvls {
		if d < maxDef {
			out[i] = FieldNull{}
			continue
		}
		out[i] = conv(values[vi])
		vi++
	}
	return out
}

func readTyped[T any](r batchReader[T], numRows int64, descr *schema.Column, conv func(T) Field) ([]Field, error) {
	maxDef := descr.MaxDefinitionLevel()
	var defLvls []int16
	if maxDef > 0 {
		defLvls = make([]int16, numRows)
	}
	values, err := readAll[T](r, numRows, defLvls)
	if err != nil {
		return nil, err
	}
	return expand(values, defLvls, maxDef, conv), nil
}

func readColumn(ccr file.ColumnChunkReader, numRows int64) ([]Field, error) {
	descr := ccr.Descriptor()
	logical := descr.LogicalType()

	switch r := ccr.(type) {
	case *file.BooleanColumnChunkReader:
		return readTyped[bool](r, numRows, descr, func(v bool) Field { return FieldBool(v) })
	case *file.Int32ColumnChunkReader:
		return readTyped[int32](r, numRows, descr, int32Field(logical))
	case *file.Int64ColumnChunkReader:
		return readTyped[int64](r, numRows, descr, int64Field(logical))
	case *file.Int96ColumnChunkReader:
		return readTyped[parquet.Int96](r, numRows, descr, func(v parquet.Int96) Field {
			return FieldTimestampMillis(v.ToTime().UnixMilli())
		})
	case *file.Float32ColumnChunkReader:
		return readTyped[float32](r, numRows, descr, func(v float32) Field { return FieldFloat(v) })
	case *file.Float64ColumnChunkReader:
		return readTyped[float64](r, numRows, descr, func(v float64) Field { return FieldDouble(v) })
	case *file.ByteArrayColumnChunkReader:
		return readTyped[parquet.ByteArray](r, numRows, descr, byteArrayField(logical))
	case *file.FixedLenByteArrayColumnChunkReader:
		return readTyped[parquet.FixedLenByteArray](r, numRows, descr, fixedLenField(logical))
	}
	return nil, fmt.Errorf("unsupported column reader %T", ccr)
}

func int32Field(logical schema.LogicalType) func(int32) Field {
	switch lt := logical.(type) {
	case *schema.IntLogicalType:
		switch {
		case lt.BitWidth() == 8 && lt.IsSigned():
			return func(v int32) Field { return FieldByte(v) }
		case lt.BitWidth() == 8:
			return func(v int32) Field { return FieldUByte(uint8(v)) }
		case lt.BitWidth() == 16 && lt.IsSigned():
			return func(v int32) Field { return FieldShort(v) }
		case lt.BitWidth() == 16:
			return func(v int32) Field { return FieldUShort(uint16(v)) }
		case !lt.IsSigned():
			return func(v int32) Field { return FieldUInt(uint32(v)) }
		}
	case schema.DateLogicalType:
		return func(v int32) Field { return FieldDate(v) }
	case *schema.DecimalLogicalType:
		p, s := lt.Precision(), lt.Scale()
		return func(v int32) Field { return FieldDecimal(decimal.FromInt32(v, p, s)) }
	}
	return func(v int32) Field { return FieldInt(v) }
}

func int64Field(logical schema.LogicalType) func(int64) Field {
	switch lt := logical.(type) {
	case *schema.IntLogicalType:
		if !lt.IsSigned() {
			return func(v int64) Field { return FieldULong(uint64(v)) }
		}
	case *schema.DecimalLogicalType:
		p, s := lt.Precision(), lt.Scale()
		return func(v int64) Field { return FieldDecimal(decimal.FromInt64(v, p, s)) }
	case *schema.TimestampLogicalType:
		switch lt.TimeUnit() {
		case schema.TimeUnitMillis:
			return func(v int64) Field { return FieldTimestampMillis(v) }
		case schema.TimeUnitMicros:
			return func(v int64) Field { return FieldTimestampMicros(v) }
		case schema.TimeUnitNanos:
			return func(v int64) Field { return FieldTimestampNanos(v) }
		}
	}
	return func(v int64) Field { return FieldLong(v) }
}

func byteArrayField(logical schema.LogicalType) func(parquet.ByteArray) Field {
	switch lt := logical.(type) {
	case schema.StringLogicalType, schema.EnumLogicalType, schema.JSONLogicalType:
		return func(v parquet.ByteArray) Field { return FieldStr(string(v)) }
	case *schema.DecimalLogicalType:
		p, s := lt.Precision(), lt.Scale()
		return func(v parquet.ByteArray) Field {
			return FieldDecimal(decimal.FromBytes(bytes.Clone(v), p, s))
		}
	}
	return func(v parquet.ByteArray) Field { return FieldBytes(bytes.Clone(v)) }
}

func fixedLenField(logical schema.LogicalType) func(parquet.FixedLenByteArray) Field {
	if lt, ok := logical.(*schema.DecimalLogicalType); ok {
		p, s := lt.Precision(), lt.Scale()
		return func(v parquet.FixedLenByteArray) Field {
			return FieldDecimal(decimal.FromBytes(bytes.Clone(v), p, s))
		}
	}
	return func(v parquet.FixedLenByteArray) Field { return FieldBytes(bytes.Clone(v)) }
}
