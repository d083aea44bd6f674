// SPDX-License-Identifier: MIT
package log

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

// --- Global Logger State ---

var (
	mu      sync.RWMutex
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	current LogLevel
	sugar   *zap.SugaredLogger
)

func init() {
	SetOutput(zapcore.Lock(os.Stderr))
	SetLevel(LevelInfo)
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// SetOutput redirects all log output to ws. The current level is kept.
func SetOutput(ws zapcore.WriteSyncer) {
	SetCore(zapcore.NewCore(newEncoder(), ws, level))
}

// SetCore replaces the underlying zap core. Tests use this with
// zaptest/observer to capture entries.
func SetCore(core zapcore.Core) {
	mu.Lock()
	sugar = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
}

// SetLevel sets the global logging level atomically.
func SetLevel(l LogLevel) {
	mu.Lock()
	current = l
	mu.Unlock()
	level.SetLevel(l.zapLevel())
}

// GetLevel gets the current global logging level.
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Enabled reports whether messages at l are currently emitted.
func Enabled(l LogLevel) bool {
	return level.Enabled(l.zapLevel())
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() error {
	err := logger().Sync()
	if err != nil && strings.Contains(err.Error(), "inappropriate ioctl for device") {
		return nil
	}
	return err
}

func logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// --- Public Logging Functions ---

// Debugf logs a formatted debug message if the level is appropriate.
func Debugf(format string, v ...any) { logger().Debugf(format, v...) }

// Infof logs a formatted info message if the level is appropriate.
func Infof(format string, v ...any) { logger().Infof(format, v...) }

// Warnf logs a formatted warning message if the level is appropriate.
func Warnf(format string, v ...any) { logger().Warnf(format, v...) }

// Errorf logs a formatted error message if the level is appropriate.
func Errorf(format string, v ...any) { logger().Errorf(format, v...) }

// Fatalf logs a formatted fatal message and exits the application.
func Fatalf(format string, v ...any) { logger().Fatalf(format, v...) }

// --- Structured variants ---

// Debugw logs msg with alternating key/value pairs at debug level.
func Debugw(msg string, keysAndValues ...any) { logger().Debugw(msg, keysAndValues...) }

// Infow logs msg with alternating key/value pairs at info level.
func Infow(msg string, keysAndValues ...any) { logger().Infow(msg, keysAndValues...) }

// Warnw logs msg with alternating key/value pairs at warn level.
func Warnw(msg string, keysAndValues ...any) { logger().Warnw(msg, keysAndValues...) }

// Errorw logs msg with alternating key/value pairs at error level.
func Errorw(msg string, keysAndValues ...any) { logger().Errorw(msg, keysAndValues...) }
