// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// captureLogs swaps the global logger for one writing to a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev); SetLevelString("info") })

	Init(Config{Level: "info", Format: "console", Output: &buf})
	Info().Str("game_id", "g1").Msg("hello")

	if !strings.Contains(buf.String(), "hello") || strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected console output, got %q", buf.String())
	}
}

func TestCtxAddsIDs(t *testing.T) {
	buf := captureLogs(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	Ctx(ctx).Info().Msg("with ids")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["request_id"] != "req-1" || lines[0]["correlation_id"] != "corr-1" {
		t.Errorf("missing context ids: %v", lines[0])
	}
}

func TestGenerateIDs(t *testing.T) {
	if len(GenerateCorrelationID()) != 8 {
		t.Error("correlation id should be 8 characters")
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request ids should be unique")
	}
}

func TestSlogHandler(t *testing.T) {
	buf := captureLogs(t)

	logger := NewSlogLogger().With("service", "router").WithGroup("msg")
	logger.Warn("retrying", "attempt", 2, "err", errors.New("boom"))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["level"] != "warn" {
		t.Errorf("level = %v, want warn", got["level"])
	}
	if got["service"] != "router" {
		t.Errorf("service = %v", got["service"])
	}
	if got["msg.attempt"] != float64(2) {
		t.Errorf("msg.attempt = %v", got["msg.attempt"])
	}
	if got["msg.err"] != "boom" {
		t.Errorf("msg.err = %v", got["msg.err"])
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled on a warn logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled on a warn logger")
	}
}

func TestAuditLoggerMasksIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLoggerWithLogger(NewTestLogger(&buf))
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	audit.LogLogin("user-0123456789", "johndoe", "10.0.0.1", false, "bad password")
	audit.Log(&AuditEvent{Action: "x", Success: true, Details: map[string]string{"email": "john.doe@example.com", "token": "abcdefghijklmnop"}})

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0]["username"] != "jo***" {
		t.Errorf("username = %v", lines[0]["username"])
	}
	if lines[0]["actor_id"] != "user...6789" {
		t.Errorf("actor_id = %v", lines[0]["actor_id"])
	}
	if lines[0]["level"] != "warn" || lines[0]["status"] != "failed" {
		t.Errorf("failed login should be a warn entry: %v", lines[0])
	}
	if lines[1]["email"] != "jo***@example.com" {
		t.Errorf("email = %v", lines[1]["email"])
	}
	if lines[1]["token"] != "abcd...mnop" {
		t.Errorf("token = %v", lines[1]["token"])
	}
}

func TestSanitizers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"short id", SanitizeID, "abc", "***"},
		{"empty id", SanitizeID, "", ""},
		{"short username", SanitizeUsername, "ab", "***"},
		{"email no local", SanitizeEmail, "@x.org", "***"},
		{"email short local", SanitizeEmail, "ab@x.org", "***@x.org"},
		{"short token", SanitizeToken, "abc", "***"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventLogger(t *testing.T) {
	var buf bytes.Buffer
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	el := NewEventLoggerWithLogger(NewTestLogger(&buf))
	ctx := ContextWithCorrelationID(context.Background(), "c0ffee00")
	el.LogHandlerFailed(ctx, "rating-recompute", "evt-1", errors.New("conflict"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["component"] != "events" || lines[0]["correlation_id"] != "c0ffee00" {
		t.Errorf("unexpected fields: %v", lines[0])
	}
}
