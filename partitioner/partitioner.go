package partitioner

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/danthegoodman1/pqbridge/dynamic"
)

type (
	PartitionPlan struct {
		Func string   `validate:"required"`
		Args []string `validate:"required,min=1"`
		As   string   `validate:"required"`
	}

	PartitionFunc func(row *dynamic.Record, args []string) (string, error)

	// Partition is one output file's worth of rows.
	Partition struct {
		// Path is like year=2023/month=1, empty without plans.
		Path string
		Rows dynamic.List
	}
)

var (
	Functions = map[string]PartitionFunc{
		"toDay":      timeFunc(func(t time.Time) string { return fmt.Sprint(t.Day()) }),
		"toMonth":    timeFunc(func(t time.Time) string { return fmt.Sprint(int(t.Month())) }),
		"toYear":     timeFunc(func(t time.Time) string { return fmt.Sprint(t.Year()) }),
		"toYearDay":  timeFunc(func(t time.Time) string { return fmt.Sprint(t.YearDay()) }),
		"toYearWeek": timeFunc(isoWeek),
		"toWeekDay":  timeFunc(func(t time.Time) string { return fmt.Sprint(int(t.Weekday())) }),
		"identity":   identity,
	}

	ErrFuncNotFound = errors.New("partition function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")
)

func isoWeek(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-%02d", y, w)
}

func timeFunc(render func(time.Time) string) PartitionFunc {
	return func(row *dynamic.Record, args []string) (string, error) {
		t, err := parseTimeArg(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeArg: %w", err)
		}
		return render(t.UTC()), nil
	}
}

// identity partitions on the raw value of a string, int or bool column.
func identity(row *dynamic.Record, args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrMissingArgs
	}
	v, ok := row.Get(args[0])
	if !ok {
		return "", ErrMissingColumns
	}
	switch v := v.(type) {
	case dynamic.String:
		return url.PathEscape(string(v)), nil
	case dynamic.Int:
		return fmt.Sprint(int64(v)), nil
	case dynamic.Bool:
		return fmt.Sprint(bool(v)), nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidColumnType, v.Kind())
}

func GetRowPartition(row *dynamic.Record, partitioners []PartitionPlan) (string, error) {
	var finalParts []string
	for _, partFunc := range partitioners {
		f, ok := Functions[partFunc.Func]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrFuncNotFound, partFunc.Func)
		}

		s, err := f(row, partFunc.Args)
		if err != nil {
			return "", fmt.Errorf("error processing partition function %s: %w", partFunc.Func, err)
		}
		finalParts = append(finalParts, fmt.Sprintf("%s=%s", partFunc.As, s))
	}
	return strings.Join(finalParts, "/"), nil
}

// Split groups rows by partition path, in order of each path's first row.
// Non-record rows are kept in the first partition so schema inference can
// reject the table.
func Split(rows dynamic.List, plans []PartitionPlan) ([]Partition, error) {
	if len(plans) == 0 {
		return []Partition{{Rows: rows}}, nil
	}
	var (
		parts []Partition
		index = map[string]int{}
	)
	for i, row := range rows {
		rec, ok := row.(*dynamic.Record)
		if !ok {
			return []Partition{{Rows: rows}}, nil
		}
		p, err := GetRowPartition(rec, plans)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		idx, exists := index[p]
		if !exists {
			idx = len(parts)
			index[p] = idx
			parts = append(parts, Partition{Path: p})
		}
		parts[idx].Rows = append(parts[idx].Rows, rec)
	}
	return parts, nil
}

func parseTimeArg(row *dynamic.Record, args []string) (t time.Time, err error) {
	if len(args) == 0 {
		err = ErrMissingArgs
		return
	}

	key := args[0]

	if key == "now()" {
		return time.Now(), nil
	}
	value, exists := row.Get(key)
	if !exists {
		err = ErrMissingColumns
		return
	}

	switch v := value.(type) {
	case dynamic.Date:
		t = v.Time
	case dynamic.String:
		// We have a datetime like YYYY-MM-DDTHH:mm:ss.sssZ
		t, err = time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			err = fmt.Errorf("error in time.Parse for string: %w", err)
		}
	case dynamic.Int:
		t = time.UnixMilli(int64(v))
	case dynamic.Float:
		t = time.UnixMilli(int64(v))
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidColumnType, value.Kind())
	}
	return
}
