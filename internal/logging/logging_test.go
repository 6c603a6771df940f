package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/jibudata/dbgen/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want hclog.Level
	}{
		{"", hclog.Info},
		{"INFO", hclog.Info},
		{"trace", hclog.Trace},
		{"debug", hclog.Debug},
		{"warning", hclog.Warn},
		{"error", hclog.Error},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewStandardFormatFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered, got %q", out)
	}
	for _, want := range []string{"[WARN]", "dbgen: shown", "k=v"} {
		if !strings.Contains(out, want) {
			t.Errorf("warn line missing %q: %q", want, out)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Format: config.LogFormatJSON}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello", "addr", "http://example.com")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["@message"] != "hello" || entry["addr"] != "http://example.com" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewRequestLoggerKeepsInfo(t *testing.T) {
	for _, level := range []string{"warn", "error"} {
		var buf bytes.Buffer
		logger, err := NewRequestLogger(config.LogConfig{Level: level}, &buf)
		if err != nil {
			t.Fatalf("NewRequestLogger(%s) error = %v", level, err)
		}
		logger.Info("request addr", "addr", "http://svc/user/all")
		logger.Debug("hidden")

		out := buf.String()
		if !strings.Contains(out, "request addr") {
			t.Errorf("level %s: request entry dropped: %q", level, out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("level %s: debug line should be filtered: %q", level, out)
		}
	}
}

func TestNewRequestLoggerHonoursLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewRequestLogger(config.LogConfig{Level: "debug"}, &buf)
	if err != nil {
		t.Fatalf("NewRequestLogger() error = %v", err)
	}
	logger.Debug("response status", "status", 404)
	if !strings.Contains(buf.String(), "response status") {
		t.Errorf("debug line missing: %q", buf.String())
	}
	if _, err := NewRequestLogger(config.LogConfig{Level: "loud"}, &buf); err == nil {
		t.Error("expected error for unknown level")
	}
}
