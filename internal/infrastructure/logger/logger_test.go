package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	l.Debug().Msg("hidden")
	l.Info().Str("fund_id", "f-1").Msg("hello")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line above level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if entry["message"] != "hello" || entry["fund_id"] != "f-1" || entry["service"] != "gofunds" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatal("expected timestamp field")
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "console", Output: &buf})

	l.Debug().Msg("console line")

	out := buf.String()
	if strings.HasPrefix(out, "{") || !strings.Contains(out, "console line") {
		t.Fatalf("expected human readable output, got %q", out)
	}
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})

	ctx := WithRequest(context.Background(), base, "req-1", "cust-1")
	l := FromContext(ctx, zerolog.Nop())
	l.Info().Msg("scoped")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, `"customer_id":"cust-1"`) {
		t.Fatalf("expected request fields, got %q", out)
	}
}

func TestWithRequestOmitsEmpty(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithRequest(context.Background(), New(Config{Output: &buf}), "req-1", "")

	l := FromContext(ctx, zerolog.Nop())
	l.Info().Msg("anonymous")

	if strings.Contains(buf.String(), "customer_id") {
		t.Fatalf("expected no customer field, got %q", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	var buf bytes.Buffer
	fallback := New(Config{Output: &buf})

	l := FromContext(context.Background(), fallback)
	l.Info().Msg("fallback")

	if !strings.Contains(buf.String(), "fallback") {
		t.Fatalf("expected fallback logger to be used, got %q", buf.String())
	}
}
