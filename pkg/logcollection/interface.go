package logcollection

import (
	"fmt"
	"io"
	"strings"
)

// ===== CORE LOG COLLECTION INTERFACES =====

// StructuredLogger provides a logging interface that hides the backend
type StructuredLogger interface {
	// Simple logging, compatible with logging.LogFuncs
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// Structured logging
	LogWithFields(level LogLevel, msg string, fields ...LogField)

	// Fluent interface for building context
	WithFields(fields ...LogField) StructuredLogger
	WithError(err error) StructuredLogger

	// Sync flushes buffered entries
	Sync() error
}

// LogCollector consumes the combined output stream of a worker process
type LogCollector interface {
	// CollectFromStream reads stream until EOF, forwarding every line.
	// It blocks; callers run it in their own goroutine.
	CollectFromStream(stream io.Reader, fields ...LogField) error
}

// LogLevel represents logging levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name as written by the zap encoders
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error", "dpanic", "panic", "fatal":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
