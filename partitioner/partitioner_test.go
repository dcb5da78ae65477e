package partitioner

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/danthegoodman1/pqbridge/dynamic"
)

func TestToDay(t *testing.T) {
	f := Functions["toDay"]

	day, err := f(dynamic.RecordOf("hey", dynamic.String("ho")), []string{"now()"})
	if err != nil {
		t.Fatal(err)
	}

	if day != fmt.Sprint(time.Now().UTC().Day()) {
		t.Fatal("mismatched date")
	}

	day, err = f(dynamic.RecordOf("t", dynamic.String("2022-01-24T00:00:00.000Z")), []string{"t"})
	if err != nil {
		t.Fatal(err)
	}

	if day != "24" {
		t.Fatal("mismatched date for t string")
	}

	day, err = f(dynamic.RecordOf("t", dynamic.Int(1672406408279)), []string{"t"})
	if err != nil {
		t.Fatal(err)
	}

	if day != "30" {
		t.Fatal("mismatched date for t int")
	}

	day, err = f(dynamic.RecordOf("t", dynamic.NewDate(time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC))), []string{"t"})
	if err != nil {
		t.Fatal(err)
	}
	if day != "3" {
		t.Fatal("mismatched date for t date")
	}

	_, err = f(dynamic.RecordOf("t", dynamic.Bool(true)), []string{"t"})
	if !errors.Is(err, ErrInvalidColumnType) {
		t.Fatal("did not get invalid col type")
	}

	_, err = f(dynamic.RecordOf("t", dynamic.Int(1)), []string{"missing"})
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatal("did not get missing columns")
	}
}

func TestGetRowPartition(t *testing.T) {
	row := dynamic.RecordOf("at", dynamic.String("2023-03-04T05:06:07Z"), "user", dynamic.String("a b"))
	p, err := GetRowPartition(row, []PartitionPlan{
		{Func: "toYear", Args: []string{"at"}, As: "year"},
		{Func: "toMonth", Args: []string{"at"}, As: "month"},
		{Func: "identity", Args: []string{"user"}, As: "user"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p != "year=2023/month=3/user=a%20b" {
		t.Fatalf("got %s", p)
	}

	_, err = GetRowPartition(row, []PartitionPlan{{Func: "toDecade", Args: []string{"at"}, As: "d"}})
	if !errors.Is(err, ErrFuncNotFound) {
		t.Fatal("expected function not found")
	}
}

func TestSplit(t *testing.T) {
	rows := dynamic.List{
		dynamic.RecordOf("k", dynamic.Int(1)),
		dynamic.RecordOf("k", dynamic.Int(2)),
		dynamic.RecordOf("k", dynamic.Int(1)),
	}
	parts, err := Split(rows, []PartitionPlan{{Func: "identity", Args: []string{"k"}, As: "k"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 || parts[0].Path != "k=1" || parts[1].Path != "k=2" {
		t.Fatalf("unexpected partitions %+v", parts)
	}
	if len(parts[0].Rows) != 2 || len(parts[1].Rows) != 1 {
		t.Fatal("rows not grouped")
	}

	parts, err = Split(rows, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 || parts[0].Path != "" || len(parts[0].Rows) != 3 {
		t.Fatal("expected a single unpartitioned partition")
	}

	_, err = Split(rows, []PartitionPlan{{Func: "identity", Args: []string{"nope"}, As: "k"}})
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected missing columns, got %v", err)
	}
}
