package parquet_accumulator

import (
	"fmt"

	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/labeled"
	"github.com/danthegoodman1/pqbridge/parquet_schema"
)

// RootName is the name of the root group of every inferred schema.
const RootName = "schema"

type (
	// SchemaStrategy derives the on-disk schema for a table about to be written.
	SchemaStrategy interface {
		Infer(rows dynamic.List) (*parquet_schema.Group, error)
	}

	// FirstRowStrategy takes one column per key of the first record, in that
	// record's key order, typed by the first record's values. Later rows are not
	// consulted.
	FirstRowStrategy struct{}

	// UnionStrategy takes every column seen in any record, in order of first
	// appearance. Two rows disagreeing on a column's type is an error.
	UnionStrategy struct{}

	// ParquetSchemaAccumulator builds a schema one record at a time.
	ParquetSchemaAccumulator struct {
		schema *parquet_schema.Group
		kinds  []dynamic.Kind
	}
)

var (
	_ SchemaStrategy = FirstRowStrategy{}
	_ SchemaStrategy = UnionStrategy{}
)

func NewParquetAccumulator() *ParquetSchemaAccumulator {
	return &ParquetSchemaAccumulator{
		schema: &parquet_schema.Group{Name: RootName},
	}
}

func (FirstRowStrategy) Infer(rows dynamic.List) (*parquet_schema.Group, error) {
	records, err := Records(rows)
	if err != nil {
		return nil, err
	}
	pa := NewParquetAccumulator()
	if err := pa.WriteRow(records[0]); err != nil {
		return nil, err
	}
	return pa.Schema(), nil
}

func (UnionStrategy) Infer(rows dynamic.List) (*parquet_schema.Group, error) {
	records, err := Records(rows)
	if err != nil {
		return nil, err
	}
	pa := NewParquetAccumulator()
	for i, rec := range records {
		if err := pa.WriteRow(rec); err != nil {
			return nil, fmt.Errorf("error in row %d: %w", i, err)
		}
	}
	return pa.Schema(), nil
}

// Records checks that the table is non-empty and every entry is a record with
// at least one column.
func Records(rows dynamic.List) ([]*dynamic.Record, error) {
	if len(rows) == 0 {
		return nil, labeled.New(labeled.EmptyOrNonUniformTable, "Empty table", "cannot write a table with no rows")
	}
	records := make([]*dynamic.Record, len(rows))
	for i, row := range rows {
		rec, ok := row.(*dynamic.Record)
		if !ok {
			return nil, labeled.Newf(labeled.EmptyOrNonUniformTable, "Expected a table", "row %d is a %s, not a record", i, kindOf(row))
		}
		records[i] = rec
	}
	if records[0].Len() == 0 {
		return nil, labeled.New(labeled.EmptyOrNonUniformTable, "Expected a table", "first record has no columns")
	}
	return records, nil
}

// WriteRow adds a column for every key of row not seen yet. A key already
// seen with a value mapping to a different column type fails.
func (pa *ParquetSchemaAccumulator) WriteRow(row *dynamic.Record) error {
	var err error
	row.Each(func(col string, v dynamic.Value) bool {
		var field *parquet_schema.Primitive
		field, err = ColumnFor(col, v)
		if err != nil {
			return false
		}
		if i, exists := pa.fieldIndex(col); exists {
			have := pa.schema.Children[i].(*parquet_schema.Primitive)
			if have.Physical != field.Physical || have.Label() != field.Label() {
				err = labeled.Newf(labeled.UnsupportedColumnType, "Conflicting column types",
					"column %q was inferred as %s but also holds a %s", col, pa.kinds[i], v.Kind())
				return false
			}
			return true
		}
		pa.schema.Children = append(pa.schema.Children, field)
		pa.kinds = append(pa.kinds, v.Kind())
		return true
	})
	return err
}

// ColumnFor picks the on-disk column for a dynamic value.
func ColumnFor(name string, v dynamic.Value) (*parquet_schema.Primitive, error) {
	switch v.(type) {
	case dynamic.Bool:
		return parquet_schema.NewPrimitive(name, parquet_schema.Required, parquet_schema.Boolean), nil
	case dynamic.Int, dynamic.Filesize:
		return parquet_schema.NewPrimitive(name, parquet_schema.Required, parquet_schema.Int64), nil
	case dynamic.Float:
		return parquet_schema.NewPrimitive(name, parquet_schema.Required, parquet_schema.Double), nil
	case dynamic.String:
		p := parquet_schema.NewPrimitive(name, parquet_schema.Required, parquet_schema.ByteArray).
			WithLogical(parquet_schema.LogicalType{Kind: parquet_schema.LogicalString})
		p.Converted = parquet_schema.ConvertedUTF8
		return p, nil
	case dynamic.Date:
		// INT64 cannot carry a DATE annotation, so dates are stored as UTC
		// millisecond timestamps.
		return parquet_schema.NewPrimitive(name, parquet_schema.Required, parquet_schema.Int64).
			WithLogical(parquet_schema.LogicalType{Kind: parquet_schema.LogicalTimestamp, Unit: parquet_schema.Millis, IsAdjustedToUTC: true}), nil
	}
	return nil, labeled.Newf(labeled.UnsupportedColumnType, "Unsupported column type",
		"column %q has unsupported type %s", name, kindOf(v))
}

func (pa *ParquetSchemaAccumulator) fieldIndex(fieldName string) (int, bool) {
	for i, field := range pa.schema.Children {
		if field.NodeName() == fieldName {
			return i, true
		}
	}
	return -1, false
}

// Schema returns the accumulated schema. The accumulator must not be written
// to afterwards.
func (pa *ParquetSchemaAccumulator) Schema() *parquet_schema.Group {
	return pa.schema
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	var cols []string
	for _, field := range pa.schema.Children {
		cols = append(cols, field.NodeName())
	}
	return cols
}

// GetColumnTypes returns the on-disk type of each column in column order, the
// physical type followed by its logical label when there is one. Ints and
// file sizes share a type.
func (pa *ParquetSchemaAccumulator) GetColumnTypes() []string {
	var types []string
	for _, p := range parquet_schema.Leaves(pa.schema) {
		t := p.Physical.String()
		if l := p.Label(); l != "" {
			t += " " + l
		}
		types = append(types, t)
	}
	return types
}

func kindOf(v dynamic.Value) dynamic.Kind {
	if v == nil {
		return dynamic.KindNull
	}
	return v.Kind()
}
