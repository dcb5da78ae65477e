package metastore

import (
	"testing"
)

func TestFileColumnNames(t *testing.T) {
	f := File{Columns: []Column{{Name: "a", Type: "int"}, {Name: "b", Type: "string"}}}
	names := f.ColumnNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("got %v", names)
	}
	if len(File{}.ColumnNames()) != 0 {
		t.Fatal("expected no names")
	}
}
