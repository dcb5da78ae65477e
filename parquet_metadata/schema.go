package parquet_metadata

import (
	"fmt"

	"github.com/xitongsys/parquet-go/parquet"

	"github.com/danthegoodman1/pqbridge/parquet_schema"
)

var convertedTypes = map[parquet.ConvertedType]parquet_schema.ConvertedType{
	parquet.ConvertedType_UTF8:             parquet_schema.ConvertedUTF8,
	parquet.ConvertedType_MAP:              parquet_schema.ConvertedMap,
	parquet.ConvertedType_MAP_KEY_VALUE:    parquet_schema.ConvertedMapKeyValue,
	parquet.ConvertedType_LIST:             parquet_schema.ConvertedList,
	parquet.ConvertedType_ENUM:             parquet_schema.ConvertedEnum,
	parquet.ConvertedType_DECIMAL:          parquet_schema.ConvertedDecimal,
	parquet.ConvertedType_DATE:             parquet_schema.ConvertedDate,
	parquet.ConvertedType_TIME_MILLIS:      parquet_schema.ConvertedTimeMillis,
	parquet.ConvertedType_TIME_MICROS:      parquet_schema.ConvertedTimeMicros,
	parquet.ConvertedType_TIMESTAMP_MILLIS: parquet_schema.ConvertedTimestampMillis,
	parquet.ConvertedType_TIMESTAMP_MICROS: parquet_schema.ConvertedTimestampMicros,
	parquet.ConvertedType_UINT_8:           parquet_schema.ConvertedUint8,
	parquet.ConvertedType_UINT_16:          parquet_schema.ConvertedUint16,
	parquet.ConvertedType_UINT_32:          parquet_schema.ConvertedUint32,
	parquet.ConvertedType_UINT_64:          parquet_schema.ConvertedUint64,
	parquet.ConvertedType_INT_8:            parquet_schema.ConvertedInt8,
	parquet.ConvertedType_INT_16:           parquet_schema.ConvertedInt16,
	parquet.ConvertedType_INT_32:           parquet_schema.ConvertedInt32,
	parquet.ConvertedType_INT_64:           parquet_schema.ConvertedInt64,
	parquet.ConvertedType_JSON:             parquet_schema.ConvertedJSON,
	parquet.ConvertedType_BSON:             parquet_schema.ConvertedBSON,
	parquet.ConvertedType_INTERVAL:         parquet_schema.ConvertedInterval,
}

var physicalTypes = map[parquet.Type]parquet_schema.PhysicalType{
	parquet.Type_BOOLEAN:              parquet_schema.Boolean,
	parquet.Type_INT32:                parquet_schema.Int32,
	parquet.Type_INT64:                parquet_schema.Int64,
	parquet.Type_INT96:                parquet_schema.Int96,
	parquet.Type_FLOAT:                parquet_schema.Float,
	parquet.Type_DOUBLE:               parquet_schema.Double,
	parquet.Type_BYTE_ARRAY:           parquet_schema.ByteArray,
	parquet.Type_FIXED_LEN_BYTE_ARRAY: parquet_schema.FixedLenByteArray,
}

// buildTree rebuilds the schema tree from the footer's depth-first element
// list, where each group announces how many of the following elements are its
// direct children.
func buildTree(elems []*parquet.SchemaElement) (*parquet_schema.Group, error) {
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: empty schema", ErrMalformedTree)
	}
	root, next, err := buildNode(elems, 0)
	if err != nil {
		return nil, err
	}
	if next != len(elems) {
		return nil, fmt.Errorf("%w: %d trailing elements", ErrMalformedTree, len(elems)-next)
	}
	g, ok := root.(*parquet_schema.Group)
	if !ok {
		return nil, fmt.Errorf("%w: root %q is not a group", ErrMalformedTree, root.NodeName())
	}
	return g, nil
}

func buildNode(elems []*parquet.SchemaElement, i int) (parquet_schema.Node, int, error) {
	e := elems[i]
	if e.NumChildren == nil || e.GetNumChildren() == 0 {
		if e.Type == nil {
			if i == 0 {
				return &parquet_schema.Group{Name: e.GetName()}, i + 1, nil
			}
			return nil, 0, fmt.Errorf("%w: leaf %q has no physical type", ErrMalformedTree, e.GetName())
		}
		return toPrimitive(e), i + 1, nil
	}

	g := &parquet_schema.Group{Name: e.GetName()}
	next := i + 1
	for c := int32(0); c < e.GetNumChildren(); c++ {
		if next >= len(elems) {
			return nil, 0, fmt.Errorf("%w: group %q expects %d children", ErrMalformedTree, e.GetName(), e.GetNumChildren())
		}
		child, after, err := buildNode(elems, next)
		if err != nil {
			return nil, 0, err
		}
		g.Children = append(g.Children, child)
		next = after
	}
	return g, next, nil
}

func toPrimitive(e *parquet.SchemaElement) *parquet_schema.Primitive {
	p := parquet_schema.NewPrimitive(e.GetName(), repetition(e), physicalTypes[e.GetType()])
	if e.TypeLength != nil {
		p.TypeLength = e.GetTypeLength()
	}
	if e.ConvertedType != nil {
		p.Converted = convertedTypes[e.GetConvertedType()]
	}
	if e.Precision != nil {
		p.Precision = e.GetPrecision()
	}
	if e.Scale != nil {
		p.Scale = e.GetScale()
	}
	p.Logical = logicalType(e.LogicalType)
	return p
}

func repetition(e *parquet.SchemaElement) parquet_schema.Repetition {
	if e.RepetitionType == nil {
		return parquet_schema.Required
	}
	switch e.GetRepetitionType() {
	case parquet.FieldRepetitionType_OPTIONAL:
		return parquet_schema.Optional
	case parquet.FieldRepetitionType_REPEATED:
		return parquet_schema.Repeated
	}
	return parquet_schema.Required
}

func logicalType(lt *parquet.LogicalType) *parquet_schema.LogicalType {
	if lt == nil {
		return nil
	}
	switch {
	case lt.STRING != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalString}
	case lt.MAP != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalMap}
	case lt.LIST != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalList}
	case lt.ENUM != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalEnum}
	case lt.DECIMAL != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalDecimal, Precision: lt.DECIMAL.Precision, Scale: lt.DECIMAL.Scale}
	case lt.DATE != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalDate}
	case lt.TIME != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalTime, Unit: timeUnit(lt.TIME.Unit), IsAdjustedToUTC: lt.TIME.IsAdjustedToUTC}
	case lt.TIMESTAMP != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalTimestamp, Unit: timeUnit(lt.TIMESTAMP.Unit), IsAdjustedToUTC: lt.TIMESTAMP.IsAdjustedToUTC}
	case lt.INTEGER != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalInteger, BitWidth: lt.INTEGER.BitWidth, IsSigned: lt.INTEGER.IsSigned}
	case lt.JSON != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalJSON}
	case lt.BSON != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalBSON}
	case lt.UUID != nil:
		return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalUUID}
	}
	// UNKNOWN, or a union member newer than this reader
	return &parquet_schema.LogicalType{Kind: parquet_schema.LogicalUnknown}
}

func timeUnit(u *parquet.TimeUnit) parquet_schema.TimeUnit {
	switch {
	case u == nil:
		return parquet_schema.Millis
	case u.MICROS != nil:
		return parquet_schema.Micros
	case u.NANOS != nil:
		return parquet_schema.Nanos
	}
	return parquet_schema.Millis
}
