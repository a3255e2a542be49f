package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/tasknotes/internal/config"
	"go.uber.org/zap"
)

func TestNew_ProductionWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tn.log")
	logger, err := New(config.Log{Level: "info", File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Named("notes").Info("saved", zap.Int("items", 3))
	logger.Debug("hidden")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if entry["msg"] != "saved" || entry["logger"] != "notes" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["items"] != float64(3) {
		t.Fatalf("expected items field, got %v", entry["items"])
	}
	ts, _ := entry["ts"].(string)
	if len(ts) != len(TimeLayout) {
		t.Fatalf("expected timestamp in %q layout, got %q", TimeLayout, ts)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tn.log")
	logger, err := New(config.Log{Level: "warn", Development: true, File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("quiet")
	logger.Warn("loud")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "quiet") {
		t.Fatalf("expected info to be filtered, got %q", data)
	}
	if !strings.Contains(string(data), "loud") {
		t.Fatalf("expected warn to be logged, got %q", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(config.Log{Level: "loud"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
