package dynamic

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Marshal renders v as JSON. Records keep their column order, binary values are
// base64 encoded and dates are RFC3339 strings in UTC. NaN and infinite floats
// render as null. HTML is not escaped.
func Marshal(v Value) ([]byte, error) {
	return appendValue(make([]byte, 0, 64), v)
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return Marshal(r)
}

func (l List) MarshalJSON() ([]byte, error) {
	return Marshal(l)
}

func appendValue(buf []byte, v Value) ([]byte, error) {
	switch v := v.(type) {
	case nil, Null:
		return append(buf, "null"...), nil
	case Bool:
		return strconv.AppendBool(buf, bool(v)), nil
	case Int:
		return strconv.AppendInt(buf, int64(v), 10), nil
	case Filesize:
		return strconv.AppendInt(buf, int64(v), 10), nil
	case Float:
		// JSON has no NaN or infinity
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return append(buf, "null"...), nil
		}
		return appendJSON(buf, float64(v))
	case String:
		return appendJSON(buf, string(v))
	case Binary:
		return appendJSON(buf, []byte(v))
	case Date:
		return appendJSON(buf, v.Time.UTC().Format(time.RFC3339Nano))
	case Error:
		buf = append(buf, `{"error":`...)
		var err error
		buf, err = appendJSON(buf, v.Error())
		if err != nil {
			return nil, err
		}
		return append(buf, '}'), nil
	case List:
		buf = append(buf, '[')
		for i, item := range v {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendValue(buf, item)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case *Record:
		buf = append(buf, '{')
		for i, col := range v.cols {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendJSON(buf, col)
			if err != nil {
				return nil, err
			}
			buf = append(buf, ':')
			buf, err = appendValue(buf, v.vals[i])
			if err != nil {
				return nil, fmt.Errorf("error encoding column %q: %w", col, err)
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("unknown value type %T", v)
	}
}

func appendJSON(buf []byte, v any) ([]byte, error) {
	b, err := json.MarshalWithOption(v, json.DisableHTMLEscape())
	if err != nil {
		return nil, fmt.Errorf("error in json.MarshalWithOption: %w", err)
	}
	return append(buf, b...), nil
}
