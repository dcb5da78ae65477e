package parquet_schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name      string
		logical   *LogicalType
		converted ConvertedType
		precision int32
		scale     int32
		want      string
	}{
		{"logical decimal", &LogicalType{Kind: LogicalDecimal, Precision: 10, Scale: 2}, ConvertedNone, -1, -1, "DECIMAL(10,2)"},
		{"logical wins over converted", &LogicalType{Kind: LogicalString}, ConvertedUTF8, -1, -1, "STRING"},
		{"converted utf8", nil, ConvertedUTF8, -1, -1, "UTF8"},
		{"converted decimal", nil, ConvertedDecimal, 9, 3, "DECIMAL(9,3)"},
		{"neither", nil, ConvertedNone, -1, -1, ""},
		{"integer", &LogicalType{Kind: LogicalInteger, BitWidth: 16, IsSigned: false}, ConvertedUint16, -1, -1, "INTEGER(16,false)"},
		{"timestamp", &LogicalType{Kind: LogicalTimestamp, Unit: Micros, IsAdjustedToUTC: true}, ConvertedNone, -1, -1, "TIMESTAMP(MICROSECONDS,true)"},
		{"time", &LogicalType{Kind: LogicalTime, Unit: Nanos}, ConvertedNone, -1, -1, "TIME(NANOSECONDS,false)"},
		{"uuid", &LogicalType{Kind: LogicalUUID}, ConvertedNone, -1, -1, "UUID"},
		{"unknown", &LogicalType{Kind: LogicalUnknown}, ConvertedNone, -1, -1, "UNKNOWN"},
		{"legacy only int", nil, ConvertedInt8, -1, -1, "INT_8"},
		{"legacy only map key value", nil, ConvertedMapKeyValue, -1, -1, "MAP_KEY_VALUE"},
		{"legacy only interval", nil, ConvertedInterval, -1, -1, "INTERVAL"},
		{"legacy timestamp", nil, ConvertedTimestampMillis, -1, -1, "TIMESTAMP_MILLIS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.logical, tt.converted, tt.precision, tt.scale))
		})
	}
}

func TestLeaves(t *testing.T) {
	a := NewPrimitive("a", Required, Int64)
	b := NewPrimitive("b", Optional, ByteArray)
	root := &Group{Name: "schema", Children: []Node{a, &Group{Name: "inner", Children: []Node{b}}}}
	assert.Equal(t, []*Primitive{a, b}, Leaves(root))
}
