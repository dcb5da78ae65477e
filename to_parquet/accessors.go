package to_parquet

import (
	"fmt"

	"github.com/apache/arrow/go/v17/parquet"

	"github.com/danthegoodman1/pqbridge/dynamic"
)

func wrongKind(want string, v dynamic.Value) error {
	if v == nil {
		return fmt.Errorf("expected %s, got %s", want, dynamic.KindNull)
	}
	return fmt.Errorf("expected %s, got %s", want, v.Kind())
}

func asBool(v dynamic.Value) (bool, error) {
	if b, ok := v.(dynamic.Bool); ok {
		return bool(b), nil
	}
	return false, wrongKind("bool", v)
}

// asInt64 also accepts file sizes, stored as their byte count.
func asInt64(v dynamic.Value) (int64, error) {
	switch v := v.(type) {
	case dynamic.Int:
		return int64(v), nil
	case dynamic.Filesize:
		return int64(v), nil
	}
	return 0, wrongKind("int", v)
}

// asTimestampMillis serves INT64 columns annotated as millisecond timestamps.
func asTimestampMillis(v dynamic.Value) (int64, error) {
	if d, ok := v.(dynamic.Date); ok {
		return d.Time.UnixMilli(), nil
	}
	return 0, wrongKind("date", v)
}

func asFloat64(v dynamic.Value) (float64, error) {
	if f, ok := v.(dynamic.Float); ok {
		return float64(f), nil
	}
	return 0, wrongKind("float", v)
}

func asByteArray(v dynamic.Value) (parquet.ByteArray, error) {
	if s, ok := v.(dynamic.String); ok {
		return parquet.ByteArray(s), nil
	}
	return nil, wrongKind("string", v)
}
