package gologger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestEnvLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")
	if _, ok := envLevel(); ok {
		t.Fatal("expected no level")
	}

	t.Setenv("DEBUG", "1")
	if lvl, ok := envLevel(); !ok || lvl != zerolog.DebugLevel {
		t.Fatalf("got %s", lvl)
	}

	t.Setenv("LOG_LEVEL", "WARN")
	if lvl, ok := envLevel(); !ok || lvl != zerolog.WarnLevel {
		t.Fatalf("got %s", lvl)
	}
}
