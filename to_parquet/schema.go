package to_parquet

import (
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/schema"

	"github.com/danthegoodman1/pqbridge/labeled"
	"github.com/danthegoodman1/pqbridge/parquet_schema"
)

var timeUnits = map[parquet_schema.TimeUnit]schema.TimeUnitType{
	parquet_schema.Millis: schema.TimeUnitMillis,
	parquet_schema.Micros: schema.TimeUnitMicros,
	parquet_schema.Nanos:  schema.TimeUnitNanos,
}

// toGroupNode converts an inferred schema to the writer's schema. Only flat,
// required columns of the four writable physical types are accepted.
func toGroupNode(g *parquet_schema.Group) (*schema.GroupNode, error) {
	fields := make(schema.FieldList, 0, len(g.Children))
	for _, c := range g.Children {
		p, ok := c.(*parquet_schema.Primitive)
		if !ok {
			return nil, unsupportedColumn("column %q is a nested group", c.NodeName())
		}
		if p.Repetition != parquet_schema.Required {
			return nil, unsupportedColumn("column %q is %s, only REQUIRED columns can be written", p.Name, p.Repetition)
		}
		n, err := toNode(p)
		if err != nil {
			return nil, err
		}
		fields = append(fields, n)
	}

	root, err := schema.NewGroupNode(g.Name, parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return nil, unsupportedColumn("invalid schema: %s", err)
	}
	return root, nil
}

func toNode(p *parquet_schema.Primitive) (schema.Node, error) {
	rep := parquet.Repetitions.Required
	switch p.Physical {
	case parquet_schema.Boolean:
		return schema.NewBooleanNode(p.Name, rep, -1), nil
	case parquet_schema.Int64:
		if p.Logical != nil && p.Logical.Kind == parquet_schema.LogicalTimestamp {
			unit, ok := timeUnits[p.Logical.Unit]
			if !ok {
				return nil, unsupportedColumn("column %q has unknown time unit %s", p.Name, p.Logical.Unit)
			}
			return schema.NewPrimitiveNodeLogical(p.Name, rep, schema.NewTimestampLogicalType(p.Logical.IsAdjustedToUTC, unit), parquet.Types.Int64, -1, -1)
		}
		return schema.NewInt64Node(p.Name, rep, -1), nil
	case parquet_schema.Double:
		return schema.NewFloat64Node(p.Name, rep, -1), nil
	case parquet_schema.ByteArray:
		return schema.NewPrimitiveNodeLogical(p.Name, rep, schema.StringLogicalType{}, parquet.Types.ByteArray, -1, -1)
	}
	return nil, unsupportedColumn("column %q has physical type %s, which has no writer", p.Name, p.Physical)
}

func unsupportedColumn(format string, args ...any) *labeled.Error {
	return labeled.Newf(labeled.UnsupportedColumnType, "Unsupported column type", format, args...)
}
