// Package log is the leveled, printf-style logger shared by every excss
// component. It is backed by a zap console logger so the level can be changed
// at runtime and the destination swapped (primarily for tests).
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log message
type Level int

const (
	// LevelDebug is for verbose debugging information
	LevelDebug Level = iota
	// LevelInfo is for important operational events
	LevelInfo
	// LevelWarn is for warnings that don't prevent operation
	LevelWarn
	// LevelError is for errors that may affect functionality
	LevelError
)

const name = "excss"

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
	level            = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger           = build(output)
)

func build(w io.Writer) *zap.Logger {
	if w == nil {
		return zap.NewNop()
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.TimeKey = zapcore.OmitKey
	ec.CallerKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core).Named(name)
}

// SetOutput sets the output destination (primarily for testing).
// A nil writer silences logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	logger = build(w)
}

// SetLevel sets the minimum log level to display
func SetLevel(l Level) {
	level.SetLevel(toZap(l))
}

// GetLevel returns the current minimum log level
func GetLevel() Level {
	switch level.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.InfoLevel:
		return LevelInfo
	case zapcore.WarnLevel:
		return LevelWarn
	default:
		return LevelError
	}
}

// ParseLevel converts a level name (debug, info, warn, error) to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger returns the underlying zap logger, named after the given component
func Logger(component string) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if component == "" {
		return logger
	}
	return logger.Named(component)
}

// Debug logs a debug message (verbose debugging information)
func Debug(format string, args ...any) {
	current().Debugf(format, args...)
}

// Info logs an info message (important operational events)
func Info(format string, args ...any) {
	current().Infof(format, args...)
}

// Warn logs a warning message (warnings that don't prevent operation)
func Warn(format string, args ...any) {
	current().Warnf(format, args...)
}

// Error logs an error message (errors that may affect functionality)
func Error(format string, args ...any) {
	current().Errorf(format, args...)
}

func current() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return logger.Sugar()
}

func toZap(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
