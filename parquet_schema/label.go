package parquet_schema

import "fmt"

var convertedLabels = map[ConvertedType]string{
	ConvertedNone:            "",
	ConvertedUTF8:            "UTF8",
	ConvertedMap:             "MAP",
	ConvertedMapKeyValue:     "MAP_KEY_VALUE",
	ConvertedList:            "LIST",
	ConvertedEnum:            "ENUM",
	ConvertedDate:            "DATE",
	ConvertedTimeMillis:      "TIME_MILLIS",
	ConvertedTimeMicros:      "TIME_MICROS",
	ConvertedTimestampMillis: "TIMESTAMP_MILLIS",
	ConvertedTimestampMicros: "TIMESTAMP_MICROS",
	ConvertedUint8:           "UINT_8",
	ConvertedUint16:          "UINT_16",
	ConvertedUint32:          "UINT_32",
	ConvertedUint64:          "UINT_64",
	ConvertedInt8:            "INT_8",
	ConvertedInt16:           "INT_16",
	ConvertedInt32:           "INT_32",
	ConvertedInt64:           "INT_64",
	ConvertedJSON:            "JSON",
	ConvertedBSON:            "BSON",
	ConvertedInterval:        "INTERVAL",
}

// Label resolves the annotation of a leaf to its display label. A logical type
// wins over the legacy converted type; with neither the label is empty.
func Label(logical *LogicalType, converted ConvertedType, precision, scale int32) string {
	if logical != nil {
		return logical.String()
	}
	if converted == ConvertedDecimal {
		return fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)
	}
	return convertedLabels[converted]
}

func (p *Primitive) Label() string {
	return Label(p.Logical, p.Converted, p.Precision, p.Scale)
}

func (lt LogicalType) String() string {
	switch lt.Kind {
	case LogicalString:
		return "STRING"
	case LogicalMap:
		return "MAP"
	case LogicalList:
		return "LIST"
	case LogicalEnum:
		return "ENUM"
	case LogicalDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", lt.Precision, lt.Scale)
	case LogicalDate:
		return "DATE"
	case LogicalTime:
		return fmt.Sprintf("TIME(%s,%t)", lt.Unit, lt.IsAdjustedToUTC)
	case LogicalTimestamp:
		return fmt.Sprintf("TIMESTAMP(%s,%t)", lt.Unit, lt.IsAdjustedToUTC)
	case LogicalInteger:
		return fmt.Sprintf("INTEGER(%d,%t)", lt.BitWidth, lt.IsSigned)
	case LogicalJSON:
		return "JSON"
	case LogicalBSON:
		return "BSON"
	case LogicalUUID:
		return "UUID"
	}
	return "UNKNOWN"
}
