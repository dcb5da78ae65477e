package dynamic

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danthegoodman1/gojsonutils"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

type (
	ParseOptions struct {
		// Flatten turns nested objects into dotted top level columns. Flattened
		// rows have their columns sorted by name since nesting order is lost.
		Flatten bool
		// DateColumns are parsed as RFC3339 strings or unix milliseconds.
		DateColumns []string
		// FilesizeColumns are parsed as byte counts or human sizes like "1.5 MB".
		FilesizeColumns []string
	}
)

var (
	ErrNotJSONArray = errors.New("rows must be a JSON array")
	ErrNotFlatMap   = errors.New("not a flat map")

	flattenSeparator = "."
)

// ParseRows decodes a JSON array into a table. Objects become records with
// their keys in document order; any other entry is kept as is so schema
// inference can reject it.
func ParseRows(data []byte, opts ParseOptions) (List, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON: %w", ErrNotJSONArray)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotJSONArray
	}

	var (
		rows List
		err  error
	)
	root.ForEach(func(_, item gjson.Result) bool {
		var v Value
		if opts.Flatten && item.IsObject() {
			v, err = flattenObject(item)
		} else {
			v = fromJSON(item)
		}
		if err != nil {
			return false
		}
		if rec, ok := v.(*Record); ok {
			if err = applyColumnHints(rec, opts); err != nil {
				return false
			}
		}
		rows = append(rows, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseNDJSON decodes line delimited JSON objects into a table.
func ParseNDJSON(data []byte, opts ParseOptions) (List, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(line)
	}
	buf.WriteByte(']')
	return ParseRows(buf.Bytes(), opts)
}

func fromJSON(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null{}
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		return numberFromRaw(r.Raw, r.Float())
	case gjson.String:
		return String(r.Str)
	}
	if r.IsArray() {
		l := List{}
		r.ForEach(func(_, item gjson.Result) bool {
			l = append(l, fromJSON(item))
			return true
		})
		return l
	}
	rec := NewRecord()
	r.ForEach(func(key, item gjson.Result) bool {
		rec.Set(key.Str, fromJSON(item))
		return true
	})
	return rec
}

func numberFromRaw(raw string, f float64) Value {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(i)
		}
	}
	return Float(f)
}

func flattenObject(item gjson.Result) (Value, error) {
	var nested map[string]any
	dec := json.NewDecoder(strings.NewReader(item.Raw))
	dec.UseNumber()
	if err := dec.Decode(&nested); err != nil {
		return nil, fmt.Errorf("error in json.Decode: %w", err)
	}
	flat, err := gojsonutils.Flatten(nested, &flattenSeparator)
	if err != nil {
		return nil, fmt.Errorf("error flattening JSON map: %w", err)
	}
	flatMap, ok := flat.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("got %T: %w", flat, ErrNotFlatMap)
	}

	keys := make([]string, 0, len(flatMap))
	for k := range flatMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := NewRecord()
	for _, k := range keys {
		rec.Set(k, fromGo(flatMap[k]))
	}
	return rec, nil
}

func fromGo(v any) Value {
	switch v := v.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(v)
	case json.Number:
		return numberFromRaw(v.String(), mustFloat(v))
	case float64:
		return Float(v)
	case string:
		return String(v)
	case *string:
		if v == nil {
			return Null{}
		}
		return String(*v)
	case []any:
		l := make(List, 0, len(v))
		for _, item := range v {
			l = append(l, fromGo(item))
		}
		return l
	default:
		return String(fmt.Sprint(v))
	}
}

func mustFloat(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil {
		return math.NaN()
	}
	return f
}

func applyColumnHints(rec *Record, opts ParseOptions) error {
	for _, col := range opts.DateColumns {
		v, ok := rec.Get(col)
		if !ok {
			continue
		}
		d, err := ToDate(v)
		if err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
		rec.Set(col, d)
	}
	for _, col := range opts.FilesizeColumns {
		v, ok := rec.Get(col)
		if !ok {
			continue
		}
		fs, err := ToFilesize(v)
		if err != nil {
			return fmt.Errorf("column %q: %w", col, err)
		}
		rec.Set(col, fs)
	}
	return nil
}

// ToDate converts RFC3339 strings and unix milliseconds to a Date.
func ToDate(v Value) (Value, error) {
	switch v := v.(type) {
	case Date, Null:
		return v, nil
	case String:
		t, err := time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			return nil, fmt.Errorf("error in time.Parse: %w", err)
		}
		return NewDate(t), nil
	case Int:
		return NewDate(time.UnixMilli(int64(v))), nil
	case Float:
		return NewDate(time.UnixMilli(int64(v))), nil
	default:
		return nil, fmt.Errorf("cannot convert %s to date", v.Kind())
	}
}

// ToFilesize converts byte counts and human sizes ("10 KiB", "1.5MB") to a Filesize.
func ToFilesize(v Value) (Value, error) {
	switch v := v.(type) {
	case Filesize, Null:
		return v, nil
	case Int:
		return Filesize(v), nil
	case String:
		n, err := humanize.ParseBytes(string(v))
		if err != nil {
			return nil, fmt.Errorf("error in humanize.ParseBytes: %w", err)
		}
		if n > math.MaxInt64 {
			return nil, fmt.Errorf("file size %s overflows int64", v)
		}
		return Filesize(n), nil
	default:
		return nil, fmt.Errorf("cannot convert %s to filesize", v.Kind())
	}
}
