package from_parquet

import (
	"fmt"
	"math"
	"time"

	"github.com/danthegoodman1/pqbridge/decimal"
	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/labeled"
)

// OverflowError is the cause of an UnsignedOverflow failure.
type OverflowError struct {
	From  string
	To    string
	Value uint64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("can't convert %s value %d to %s: out of range", e.From, e.Value, e.To)
}

// Decode maps one on-disk field to a dynamic value. Nested fields fail with
// UnsupportedFieldKind and 64-bit unsigned values above math.MaxInt64 fail with
// UnsignedOverflow.
func Decode(f Field) (dynamic.Value, error) {
	switch f := f.(type) {
	case FieldNull:
		return dynamic.Null{}, nil
	case FieldBool:
		return dynamic.Bool(f), nil
	case FieldByte:
		return dynamic.Int(f), nil
	case FieldUByte:
		return dynamic.Int(f), nil
	case FieldShort:
		return dynamic.Int(f), nil
	case FieldUShort:
		return dynamic.Int(f), nil
	case FieldInt:
		return dynamic.Int(f), nil
	case FieldUInt:
		return dynamic.Int(f), nil
	case FieldLong:
		return dynamic.Int(f), nil
	case FieldULong:
		if uint64(f) > math.MaxInt64 {
			cause := &OverflowError{From: "u64", To: "i64", Value: uint64(f)}
			return nil, &labeled.Error{
				Kind:  labeled.UnsignedOverflow,
				Label: "Can't convert to i64",
				Msg:   cause.Error(),
				Err:   cause,
			}
		}
		return dynamic.Int(f), nil
	case FieldFloat:
		return dynamic.Float(f), nil
	case FieldDouble:
		return dynamic.Float(f), nil
	case FieldStr:
		return dynamic.String(f), nil
	case FieldBytes:
		return dynamic.Binary(f), nil
	case FieldDate:
		return dynamic.NewDate(dynamic.Epoch().AddDate(0, 0, int(f))), nil
	case FieldTimestampMillis:
		return dynamic.NewDate(time.UnixMilli(int64(f))), nil
	case FieldTimestampMicros:
		return dynamic.NewDate(time.UnixMicro(int64(f))), nil
	case FieldTimestampNanos:
		return dynamic.NewDate(time.Unix(0, int64(f))), nil
	case FieldDecimal:
		return dynamic.String(decimal.Decimal(f).String()), nil
	case FieldGroup:
		return nil, unsupportedField("nested struct", f.Name)
	case FieldList:
		return nil, unsupportedField("list", f.Name)
	case FieldMap:
		return nil, unsupportedField("map", f.Name)
	default:
		return nil, labeled.Newf(labeled.UnsupportedFieldKind, "Unsupported field", "unknown field type %T", f)
	}
}

func unsupportedField(kind, name string) *labeled.Error {
	return labeled.Newf(labeled.UnsupportedFieldKind, "Unsupported field", "%s field %q is not supported", kind, name)
}
