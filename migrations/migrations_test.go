package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedMigrationsParse(t *testing.T) {
	src := source()
	found, err := src.FindMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(found) == 0 {
		t.Fatal("no migrations embedded")
	}
	if found[0].Id != "001_files.sql" {
		t.Fatalf("unexpected first migration %s", found[0].Id)
	}
	if len(found[0].Up) != 2 || len(found[0].Down) != 2 {
		t.Fatalf("expected 2 up and 2 down statements, got %d and %d", len(found[0].Up), len(found[0].Down))
	}
	if !strings.Contains(found[0].Up[0], "CREATE TABLE IF NOT EXISTS files") {
		t.Fatalf("unexpected statement %s", found[0].Up[0])
	}
}
