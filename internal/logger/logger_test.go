package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestNewJSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", true).With("component", "battle")
	l.Info("dropped")
	l.Warn("kept", "room", "AB12")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "kept" || rec["component"] != "battle" || rec["room"] != "AB12" {
		t.Fatalf("record = %v", rec)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != Get() {
		t.Fatal("empty context must fall back to the process logger")
	}
	var buf bytes.Buffer
	scoped := New(&buf, "info", false).With("request_id", "r-1")
	FromContext(IntoContext(context.Background(), scoped)).Info("hello")
	if !strings.Contains(buf.String(), "request_id=r-1") {
		t.Fatalf("scoped logger not used: %q", buf.String())
	}
}
