// Package observability provides the logging and tracing primitives
// shared by the replycache components. Every component takes a Logger
// and falls back to a prefixed standard logger when given nil.
package observability

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// LogLevel controls which messages a logger emits.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a level name to its LogLevel, defaulting to INFO.
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger is the logging interface used across the module.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})

	// WithPrefix returns a logger scoped to a component name.
	WithPrefix(prefix string) Logger
}

// StandardLogger writes leveled, field-annotated lines through the
// standard log package.
type StandardLogger struct {
	prefix string
	level  LogLevel
	out    *log.Logger
}

// NewStandardLogger creates a StandardLogger at INFO level.
func NewStandardLogger(prefix string) *StandardLogger {
	return &StandardLogger{
		prefix: prefix,
		level:  LogLevelInfo,
		out:    log.New(os.Stderr, "", log.LstdFlags),
	}
}

// WithLevel returns a copy of the logger with the given level.
func (l *StandardLogger) WithLevel(level LogLevel) *StandardLogger {
	return &StandardLogger{prefix: l.prefix, level: level, out: l.out}
}

// WithPrefix returns a copy scoped to the given prefix.
func (l *StandardLogger) WithPrefix(prefix string) Logger {
	return &StandardLogger{prefix: prefix, level: l.level, out: l.out}
}

func (l *StandardLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(LogLevelDebug, msg, fields)
}

func (l *StandardLogger) Info(msg string, fields map[string]interface{}) {
	l.log(LogLevelInfo, msg, fields)
}

func (l *StandardLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(LogLevelWarn, msg, fields)
}

func (l *StandardLogger) Error(msg string, fields map[string]interface{}) {
	l.log(LogLevelError, msg, fields)
}

func (l *StandardLogger) log(level LogLevel, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf("[%s] %s: %s%s", level, l.prefix, msg, formatFields(fields))
}

// formatFields renders fields as " key=value" pairs in key order so
// log lines are stable and greppable.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}
