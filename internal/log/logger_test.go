package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"firestige.xyz/ptpwire/internal/config"
)

func TestParseLevelValid(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"INFO", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"WARN", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"ERROR", logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if err != nil {
				t.Errorf("parseLevel(%q) returned error: %v", tt.input, err)
			}
			if level != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestParseLevelInvalid(t *testing.T) {
	tests := []string{"invalid", "trace", "fatal", ""}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := parseLevel(input)
			if err == nil {
				t.Errorf("parseLevel(%q) should return error, got nil", input)
			}
		})
	}
}

func TestGetLoggerBeforeInit(t *testing.T) {
	if GetLogger() == nil {
		t.Fatal("Expected default logger, got nil")
	}
	if !GetLogger().IsInfoEnabled() {
		t.Error("Default logger should log at info")
	}
}

func TestInitConsoleOnly(t *testing.T) {
	err := Init(config.LogConfig{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !GetLogger().IsDebugEnabled() {
		t.Error("Expected debug level to be enabled")
	}
}

func TestInitWithFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	cfg := config.LogConfig{
		Level:  "debug",
		Format: "text",
		Outputs: config.LogOutputsConfig{
			File: config.FileOutputConfig{
				Enabled: true,
				Path:    logPath,
				Rotation: config.RotationConfig{
					MaxSizeMB:  10,
					MaxBackups: 3,
					MaxAgeDays: 7,
				},
			},
		},
	}

	if err := Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	GetLogger().WithField("key", "value").Info("test message")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Log file was not created at %s: %v", logPath, err)
	}
	if !strings.Contains(string(data), "test message") || !strings.Contains(string(data), "key=value") {
		t.Errorf("Log file missing entry, got: %s", data)
	}
}

func TestInitWithInvalidLevel(t *testing.T) {
	err := Init(config.LogConfig{Level: "invalid", Format: "json"})
	if err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("Expected error about invalid log level, got: %v", err)
	}
}

func TestInitWithInvalidFormat(t *testing.T) {
	err := Init(config.LogConfig{Level: "info", Format: "xml"})
	if err == nil {
		t.Fatal("Expected error for invalid log format, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported log format") {
		t.Errorf("Expected error about unsupported format, got: %v", err)
	}
}

func TestInitWithMissingFilePath(t *testing.T) {
	cfg := config.LogConfig{
		Level:  "info",
		Format: "json",
		Outputs: config.LogOutputsConfig{
			File: config.FileOutputConfig{Enabled: true},
		},
	}

	err := Init(cfg)
	if err == nil {
		t.Fatal("Expected error for missing file path, got nil")
	}
	if !strings.Contains(err.Error(), "path") {
		t.Errorf("Expected error about missing path, got: %v", err)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be present")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be present")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	a := &logrusAdapter{entry: logrus.NewEntry(l)}
	a.WithFields(map[string]interface{}{"key": "value", "number": 42}).
		WithError(errors.New("boom")).
		Info("test message")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if got["msg"] != "test message" {
		t.Errorf("msg = %v", got["msg"])
	}
	if got["key"] != "value" {
		t.Errorf("key = %v", got["key"])
	}
	if got["number"] != float64(42) {
		t.Errorf("number = %v", got["number"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestPatternFormatter(t *testing.T) {
	f := &formatter{pattern: "%time [%level] %msg %field%n", time: "15:04:05"}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "100% drop",
		Data:    logrus.Fields{"b": 2, "a": "x"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "03:04:05 [warning] 100% drop a=x,b=2\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestPatternFormatterNoCaller(t *testing.T) {
	f := &formatter{pattern: "%caller %func", time: time.RFC3339}
	out, err := f.Format(&logrus.Entry{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if string(out) != "unknown unknown" {
		t.Errorf("Format() = %q", out)
	}
}

func TestPatternFormatFromConfig(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(config.LogConfig{Level: "info", Format: "pattern", Pattern: "%level|%msg%n"}, &buf)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	l.Info("hello")
	if buf.String() != "info|hello\n" {
		t.Errorf("got %q", buf.String())
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestFanout(t *testing.T) {
	var a, b bytes.Buffer
	w := fanout{&a, failWriter{}, &b}

	n, err := w.Write([]byte("test"))
	if n != 4 {
		t.Errorf("Write = %d, want 4", n)
	}
	if err == nil || err.Error() != "disk full" {
		t.Errorf("err = %v, want disk full", err)
	}
	if a.String() != "test" || b.String() != "test" {
		t.Errorf("writers got %q and %q", a.String(), b.String())
	}
}
