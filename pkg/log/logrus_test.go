package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSimpleFormatterLayout(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("debug", &buf)

	logger.WithFields(map[string]interface{}{"tick": 3, "motor": "fl"}).Warnf("thrust %.1f", 1.5)

	line := buf.String()
	if !strings.Contains(line, "[WAR] thrust 1.5 motor=fl tick=3\n") {
		t.Errorf("unexpected log line: %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("warn", &buf)

	logger.Infof("hidden")
	logger.Errorf("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info line written at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[ERR] shown") {
		t.Errorf("error line missing: %q", buf.String())
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("chatty", &buf)

	logger.Debugf("debug")
	logger.Infof("info")

	if strings.Contains(buf.String(), "debug") || !strings.Contains(buf.String(), "info") {
		t.Errorf("expected info level, got %q", buf.String())
	}
}

func TestNewLogrusLoggerCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := NewLogrusLogger("info", dir)
	if err != nil {
		t.Fatalf("NewLogrusLogger failed: %v", err)
	}
	logger.Infof("hello file")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "[INF] hello file") {
		t.Errorf("log file missing line: %q", string(data))
	}
}
