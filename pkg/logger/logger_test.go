package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"未知", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSearchLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSearchLoggerFrom(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Violation("KAT", "interval", "2024-03-04 -> 2024-03-06", 300)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["component"] != "genetic" {
		t.Errorf("expected component=genetic, got %v", entry["component"])
	}
	if entry["category"] != "interval" {
		t.Errorf("expected category=interval, got %v", entry["category"])
	}
	if entry["level"] != "warn" {
		t.Errorf("violations should log at warn, got %v", entry["level"])
	}
}

func TestWithContext_RunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-42")
	if got, _ := ctx.Value(ctxKey{}).(string); got != "run-42" {
		t.Errorf("run id not stored in context, got %q", got)
	}
	if WithContext(ctx) == nil {
		t.Error("WithContext should never return nil")
	}
}
