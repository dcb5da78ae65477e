package parquet_metadata

import (
	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/parquet_schema"
)

// ToRecord renders the summary with columns version, creator, num_rows,
// key_values, schema and row_groups, in that order.
func (s *Summary) ToRecord() *dynamic.Record {
	keyValues := make(dynamic.List, 0, len(s.KeyValues))
	for _, kv := range s.KeyValues {
		keyValues = append(keyValues, dynamic.RecordOf(
			"key", dynamic.String(kv.Key),
			"value", dynamic.String(kv.Value),
		))
	}

	rowGroups := make(dynamic.List, 0, len(s.RowGroups))
	for _, rg := range s.RowGroups {
		rowGroups = append(rowGroups, dynamic.RecordOf(
			"num_rows", dynamic.Int(rg.NumRows),
			"total_byte_size", dynamic.Int(rg.TotalByteSize),
		))
	}

	var sch dynamic.Value = dynamic.List{}
	if s.Schema != nil {
		sch = SchemaValue(s.Schema)
	}

	return dynamic.RecordOf(
		"version", dynamic.Int(s.Version),
		"creator", dynamic.String(s.Creator),
		"num_rows", dynamic.Int(s.NumRows),
		"key_values", keyValues,
		"schema", sch,
		"row_groups", rowGroups,
	)
}

// SchemaValue walks a schema tree. A leaf becomes a record describing it, while
// a group becomes just the list of its children's values and drops its own
// name and repetition.
func SchemaValue(n parquet_schema.Node) dynamic.Value {
	switch n := n.(type) {
	case *parquet_schema.Primitive:
		var typeLength dynamic.Value = dynamic.Null{}
		if n.Physical == parquet_schema.ByteArray || n.Physical == parquet_schema.FixedLenByteArray {
			typeLength = dynamic.Int(n.TypeLength)
		}
		return dynamic.RecordOf(
			"name", dynamic.String(n.Name),
			"repetition", dynamic.String(n.Repetition.String()),
			"type", dynamic.String(n.Physical.String()),
			"type_length", typeLength,
			"logical_type", dynamic.String(n.Label()),
		)
	case *parquet_schema.Group:
		children := make(dynamic.List, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, SchemaValue(c))
		}
		return children
	}
	return dynamic.Null{}
}
