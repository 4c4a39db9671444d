package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	WarningLog *log.Logger
	InfoLog    *log.Logger
	ErrorLog   *log.Logger
	DebugLog   *log.Logger

	globalLogFile io.WriteCloser

	scopedMu      sync.Mutex
	scopedLoggers map[string]*ScopedLoggers
)

// LogConfig holds logging configuration
type LogConfig struct {
	LogsEnabled bool
	LogsDir     string
	LogMaxSize  int
	LogMaxFiles int
	LogMaxAge   int
	LogCompress bool
	Debug       bool
}

// DefaultLogConfig returns the default logging configuration
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		LogsEnabled: true,
		LogsDir:     "",
		LogMaxSize:  10, // 10MB
		LogMaxFiles: 5,  // 5 backups
		LogMaxAge:   30, // 30 days
		LogCompress: true,
	}
}

const logBaseName = "taskdeck.log"

// Default log file used when the configured directory is unusable
var logFileName = filepath.Join(os.TempDir(), logBaseName)

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".taskdeck"), nil
}

// GetLogDir returns the directory where logs should be stored
func GetLogDir(cfg *LogConfig) (string, error) {
	if cfg != nil && !cfg.LogsEnabled {
		return os.TempDir(), nil
	}

	if cfg != nil && cfg.LogsDir != "" {
		return cfg.LogsDir, nil
	}

	// Otherwise use ~/.taskdeck/logs/
	configDir, err := GetConfigDir()
	if err != nil {
		return os.TempDir(), fmt.Errorf("failed to get config directory: %w", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return os.TempDir(), fmt.Errorf("failed to create log directory: %w", err)
	}

	return logDir, nil
}

// GetLogFilePath returns the full path to the log file
func GetLogFilePath(cfg *LogConfig) (string, error) {
	logDir, err := GetLogDir(cfg)
	if err != nil {
		return logFileName, err
	}

	return filepath.Join(logDir, logBaseName), nil
}

// ScopedLoggers prefix every line with a scope such as a palette instance id.
type ScopedLoggers struct {
	WarningLog *log.Logger
	InfoLog    *log.Logger
	ErrorLog   *log.Logger
}

// sanitizeScope keeps scope names safe to embed in a log prefix.
func sanitizeScope(scope string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '-'
	}, scope)
}

// For returns loggers that write to the global writers with a [scope] prefix.
// Loggers are cached per scope until Close.
func For(scope string) *ScopedLoggers {
	scope = sanitizeScope(scope)

	scopedMu.Lock()
	defer scopedMu.Unlock()

	if l, ok := scopedLoggers[scope]; ok {
		return l
	}
	l := &ScopedLoggers{
		InfoLog:    log.New(InfoLog.Writer(), fmt.Sprintf("%s[%s] ", InfoLog.Prefix(), scope), InfoLog.Flags()),
		WarningLog: log.New(WarningLog.Writer(), fmt.Sprintf("%s[%s] ", WarningLog.Prefix(), scope), WarningLog.Flags()),
		ErrorLog:   log.New(ErrorLog.Writer(), fmt.Sprintf("%s[%s] ", ErrorLog.Prefix(), scope), ErrorLog.Flags()),
	}
	scopedLoggers[scope] = l
	return l
}

func init() {
	scopedLoggers = make(map[string]*ScopedLoggers)

	// Default loggers so that log calls don't panic in tests
	InfoLog = log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime)
	WarningLog = log.New(os.Stderr, "WARNING: ", log.Ldate|log.Ltime)
	ErrorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
	DebugLog = log.New(io.Discard, "DEBUG: ", log.Ldate|log.Ltime)
}

// Initialize should be called once at the beginning of the program to set up logging.
// defer Close() after calling this function. A nil config uses DefaultLogConfig.
func Initialize(cfg *LogConfig) {
	if cfg == nil {
		cfg = DefaultLogConfig()
	}
	logFilePath, err := GetLogFilePath(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Using default log file location due to error: %v\n", err)
		logFilePath = logFileName
	}

	writer := createRotatingWriter(logFilePath, cfg)

	flags := log.Ldate | log.Ltime | log.Lshortfile
	InfoLog = log.New(writer, "INFO: ", flags)
	WarningLog = log.New(writer, "WARNING: ", flags)
	ErrorLog = log.New(writer, "ERROR: ", flags)
	if cfg.Debug {
		DebugLog = log.New(writer, "DEBUG: ", flags)
	} else {
		DebugLog = log.New(io.Discard, "DEBUG: ", flags)
	}

	// Loggers built against the previous writers are stale now.
	scopedMu.Lock()
	scopedLoggers = make(map[string]*ScopedLoggers)
	scopedMu.Unlock()

	if closer, ok := writer.(io.WriteCloser); ok {
		globalLogFile = closer
	}

	logFileName = logFilePath
}

// createRotatingWriter creates a writer that handles log rotation based on config
func createRotatingWriter(logFilePath string, cfg *LogConfig) io.Writer {
	if cfg == nil || cfg.LogMaxSize <= 0 {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			panic(fmt.Sprintf("could not create log directory: %s", err))
		}

		// No rotation, use standard file
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			panic(fmt.Sprintf("could not open log file: %s", err))
		}
		return f
	}

	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.LogMaxSize,  // megabytes
		MaxBackups: cfg.LogMaxFiles, // number of backups
		MaxAge:     cfg.LogMaxAge,   // days
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}
}

// LogFilePath reports where logs are currently written.
func LogFilePath() string {
	return logFileName
}

func Close() {
	if globalLogFile != nil {
		_ = globalLogFile.Close()
		globalLogFile = nil
	}

	scopedMu.Lock()
	scopedLoggers = make(map[string]*ScopedLoggers)
	scopedMu.Unlock()
}

// Every is used to log at most once every timeout duration.
type Every struct {
	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
}

func NewEvery(timeout time.Duration) *Every {
	return &Every{timeout: timeout}
}

// ShouldLog returns true if the timeout has passed since the last log.
func (e *Every) ShouldLog() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer == nil {
		e.timer = time.NewTimer(e.timeout)
		return true
	}

	select {
	case <-e.timer.C:
		e.timer.Reset(e.timeout)
		return true
	default:
		return false
	}
}
