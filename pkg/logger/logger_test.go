package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Format: FormatJSON, Output: buf, ErrorStack: true})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithRole(ctx, "admin")

	log.Error(ctx, "order insert failed", errors.New("boom"))

	for _, want := range []string{`"request_id":"req-123"`, `"role":"admin"`, `"error":"boom"`, `"stack"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in entry=%s", want, buf.String())
		}
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Format: FormatJSON, Output: buf})
	log.Warn(context.Background(), "no stack")
	if bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("did not expect stack when warn stack disabled")
	}

	buf.Reset()
	log = New(Options{ServiceName: "test", Level: ParseLevel("debug"), Format: FormatJSON, Output: buf, WarnStack: true})
	log.Warn(context.Background(), "with stack")
	if !bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack when warn stack enabled")
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("warn"), Format: FormatJSON, Output: buf})
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel(" DEBUG "); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", lvl)
	}
}

func TestWithFieldsAccumulate(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Format: FormatJSON, Output: buf})

	ctx := log.WithFields(context.Background(), map[string]any{"order_id": "o-1", "mode": "wholesale"})
	ctx = log.WithUserID(ctx, "u-7")
	log.Info(ctx, "order.placed")
	log.Info(context.Background(), "bare")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected two entries, got %q", buf.String())
	}
	for _, want := range []string{`"order_id":"o-1"`, `"mode":"wholesale"`, `"user_id":"u-7"`, `"service":"api"`} {
		if !bytes.Contains(lines[0], []byte(want)) {
			t.Fatalf("expected %s in %s", want, lines[0])
		}
	}
	if bytes.Contains(lines[1], []byte("order_id")) {
		t.Fatalf("background context must not carry fields: %s", lines[1])
	}
}

func TestConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "shop", Format: "CONSOLE", Output: buf})
	log.Warn(context.Background(), "session expired")
	if bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		t.Fatalf("console output should not be JSON: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("session expired")) {
		t.Fatalf("message missing: %s", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	ctx := log.WithField(context.Background(), "k", "v")
	log.Error(ctx, "ignored", errors.New("boom"))
	log.Warn(context.TODO(), "ignored")
}
