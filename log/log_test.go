package log

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetLogDir(t *testing.T) {
	// Test with nil config
	dir, err := GetLogDir(nil)
	if err != nil {
		t.Errorf("GetLogDir failed with nil config: %v", err)
	}
	if dir == "" {
		t.Error("GetLogDir returned empty string for nil config")
	}

	// Test with disabled logging
	dir, err = GetLogDir(&LogConfig{LogsEnabled: false})
	if err != nil {
		t.Errorf("GetLogDir failed with disabled logging: %v", err)
	}
	if dir != os.TempDir() {
		t.Errorf("GetLogDir should return temp dir for disabled logging, got %s", dir)
	}

	// Test with custom log dir
	dir, err = GetLogDir(&LogConfig{LogsEnabled: true, LogsDir: "/custom/log/dir"})
	if err != nil {
		t.Errorf("GetLogDir failed with custom log dir: %v", err)
	}
	if dir != "/custom/log/dir" {
		t.Errorf("GetLogDir should return custom log dir, got %s", dir)
	}

	// Test with default log dir
	dir, err = GetLogDir(&LogConfig{LogsEnabled: true})
	if err != nil {
		t.Errorf("GetLogDir failed with default log dir: %v", err)
	}
	if !strings.Contains(dir, ".taskdeck"+string(filepath.Separator)+"logs") {
		t.Errorf("GetLogDir should return default log dir, got %s", dir)
	}
}

func TestGetLogFilePath(t *testing.T) {
	path, err := GetLogFilePath(&LogConfig{LogsEnabled: true})
	if err != nil {
		t.Errorf("GetLogFilePath failed with default config: %v", err)
	}
	if !strings.HasSuffix(path, "taskdeck.log") {
		t.Errorf("GetLogFilePath should end with taskdeck.log, got %s", path)
	}

	path, err = GetLogFilePath(&LogConfig{LogsEnabled: true, LogsDir: "/custom/log/dir"})
	if err != nil {
		t.Errorf("GetLogFilePath failed with custom log dir: %v", err)
	}
	if path != "/custom/log/dir/taskdeck.log" {
		t.Errorf("GetLogFilePath should return custom log path, got %s", path)
	}
}

func TestCreateRotatingWriter(t *testing.T) {
	tempDir := t.TempDir()

	// Test with nil config
	writer := createRotatingWriter(filepath.Join(tempDir, "test.log"), nil)
	if writer == nil {
		t.Error("createRotatingWriter returned nil with nil config")
	}

	// Test with zero max size
	writer = createRotatingWriter(filepath.Join(tempDir, "test.log"), &LogConfig{LogMaxSize: 0})
	if writer == nil {
		t.Error("createRotatingWriter returned nil with zero max size")
	}

	cfg := &LogConfig{
		LogMaxSize:  10,
		LogMaxFiles: 5,
		LogMaxAge:   30,
		LogCompress: true,
	}
	writer = createRotatingWriter(filepath.Join(tempDir, "test.log"), cfg)
	if writer == nil {
		t.Error("createRotatingWriter returned nil with valid config")
	}
}

func TestInitializeWritesToConfiguredDir(t *testing.T) {
	tempDir := t.TempDir()

	Initialize(&LogConfig{LogsEnabled: true, LogsDir: tempDir})
	defer Close()

	InfoLog.Printf("hello from test")

	if LogFilePath() != filepath.Join(tempDir, "taskdeck.log") {
		t.Errorf("unexpected log file path %s", LogFilePath())
	}
	data, err := os.ReadFile(filepath.Join(tempDir, "taskdeck.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestForPrefixesScope(t *testing.T) {
	var buf bytes.Buffer
	InfoLog = NewDummyLogger(&buf, "INFO: ")
	WarningLog = NewDummyLogger(&buf, "WARNING: ")
	ErrorLog = NewDummyLogger(&buf, "ERROR: ")
	scopedMu.Lock()
	scopedLoggers = make(map[string]*ScopedLoggers)
	scopedMu.Unlock()

	l := For("palette/1 2")
	l.WarningLog.Printf("provider slow")

	if got := buf.String(); !strings.Contains(got, "WARNING: [palette-1-2] provider slow") {
		t.Errorf("scoped logger should sanitize and prefix scope, got %q", got)
	}
	if For("palette/1 2") != l {
		t.Error("For should cache loggers per scope")
	}
}

func TestEvery(t *testing.T) {
	e := NewEvery(50 * time.Millisecond)
	if !e.ShouldLog() {
		t.Error("first call should log")
	}
	if e.ShouldLog() {
		t.Error("second immediate call should not log")
	}
	time.Sleep(80 * time.Millisecond)
	if !e.ShouldLog() {
		t.Error("call after timeout should log")
	}
}

// NewDummyLogger creates a test logger that doesn't panic on write errors
func NewDummyLogger(w *bytes.Buffer, prefix string) *log.Logger {
	return log.New(w, prefix, 0)
}
