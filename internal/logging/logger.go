// Package logging provides structured logging for the solfolio service.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Level represents the severity of a log message
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents the output format for logs
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger provides leveled, field-structured logging
type Logger struct {
	level  Level
	format Format
	output io.Writer
	fields map[string]interface{}
}

type entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new logger writing to stdout
func New(level Level, format Format) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: os.Stdout,
		fields: make(map[string]interface{}),
	}
}

// SetOutput redirects log output, mainly for tests
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

func (l *Logger) clone() *Logger {
	c := &Logger{
		level:  l.level,
		format: l.format,
		output: l.output,
		fields: make(map[string]interface{}, len(l.fields)),
	}
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return c
}

// WithField returns a derived logger carrying one extra field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

// WithFields returns a derived logger carrying extra fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// WithError returns a derived logger carrying an error field
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err.Error())
}

func (l *Logger) log(level Level, message string) {
	if levelRank[level] < levelRank[l.level] {
		return
	}
	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    l.fields,
	}
	if l.format == FormatJSON {
		b, _ := json.Marshal(e)
		fmt.Fprintln(l.output, string(b))
		return
	}
	out := fmt.Sprintf("[%s] %s: %s", e.Timestamp, e.Level, e.Message)
	if len(e.Fields) > 0 {
		b, _ := json.Marshal(e.Fields)
		out += " fields=" + string(b)
	}
	fmt.Fprintln(l.output, out)
}

// Debug logs a message at debug level
func (l *Logger) Debug(message string) {
	l.log(LevelDebug, message)
}

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs a message at info level
func (l *Logger) Info(message string) {
	l.log(LevelInfo, message)
}

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs a message at warn level
func (l *Logger) Warn(message string) {
	l.log(LevelWarn, message)
}

// Warnf logs a formatted message at warn level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs a message at error level
func (l *Logger) Error(message string) {
	l.log(LevelError, message)
}

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

// ErrorWithErr logs a message at error level with an attached error field
func (l *Logger) ErrorWithErr(message string, err error) {
	l.WithError(err).Error(message)
}

var globalLogger *Logger

// Init initializes the global logger
func Init(level Level, format Format) {
	globalLogger = New(level, format)
}

// Global returns the global logger, initializing a default one if needed
func Global() *Logger {
	if globalLogger == nil {
		globalLogger = New(LevelInfo, FormatJSON)
	}
	return globalLogger
}

type loggerKey struct{}

// WithLogger attaches a logger to the context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the context's logger, or the global one
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return Global()
}

// ParseLevel parses a string into a Level, defaulting to info
func ParseLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat parses a string into a Format, defaulting to JSON
func ParseFormat(format string) Format {
	switch format {
	case "text":
		return FormatText
	default:
		return FormatJSON
	}
}
