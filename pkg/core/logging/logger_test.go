package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	mdwlog "github.com/msto63/frege/foundation/core/log"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.name != "test-service" {
		t.Errorf("name = %v, want test-service", logger.name)
	}
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap(NewLogger(LoggerConfig{ServiceName: "kv", Level: "debug", Format: "json", Output: &buf}))

	logger.With("component", "gateway").Info("request", "path", "/api/v1/parse", "status", 200, "orphan")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if entry["component"] != "gateway" {
		t.Errorf("component = %v, want gateway", entry["component"])
	}
	if entry["path"] != "/api/v1/parse" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["status"] != float64(200) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if _, ok := entry["orphan"]; ok {
		t.Error("orphan key without value must be dropped")
	}
	if entry["logger"] != "kv" {
		t.Errorf("logger = %v, want kv", entry["logger"])
	}
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap(NewLogger(LoggerConfig{ServiceName: "lvl", Level: "debug", Format: "text", Output: &buf}))

	quiet := logger.WithLevel(LevelError)
	quiet.Info("hidden")
	quiet.Error("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message must be filtered at error level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("error message missing")
	}
	if quiet.name != "lvl" {
		t.Errorf("name should be preserved: got %v", quiet.name)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected mdwlog.Level
	}{
		{"trace", mdwlog.LevelTrace},
		{"debug", mdwlog.LevelDebug},
		{"INFO", mdwlog.LevelInfo},
		{"warning", mdwlog.LevelWarn},
		{"error", mdwlog.LevelError},
		{"invalid", mdwlog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	previous := DefaultLoggerConfig("")
	defer func() {
		Configure(previous.Level, previous.Format)
		SetOutput(previous.Output)
	}()

	var buf bytes.Buffer
	Configure("warn", "json")
	SetOutput(&buf)

	cfg := DefaultLoggerConfig("svc")
	if cfg.Level != "warn" || cfg.Format != "json" || cfg.ServiceName != "svc" {
		t.Errorf("unexpected config %+v", cfg)
	}

	logger := New("svc")
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", buf.String())
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:             "info",
		Format:            "text",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})

	logger.Info("twice")

	if primary.String() == "" || primary.String() != extra.String() {
		t.Errorf("outputs differ: %q vs %q", primary.String(), extra.String())
	}
}

func TestToFields(t *testing.T) {
	if fields := toFields(); fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields := toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Wrap(NewLogger(LoggerConfig{Level: "info", Output: io.Discard}))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
