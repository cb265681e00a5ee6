package logger

import (
	"context"
	"sync"
)

// LogEntry represents a single log entry captured by the test logger.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// entryBuffer is shared between a TestLogger and every logger derived from it.
type entryBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
}

// TestLogger is a logger implementation for testing that captures log entries.
type TestLogger struct {
	buf    *entryBuffer
	fields map[string]interface{}
}

// NewTestLogger creates a new test logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		buf:    &entryBuffer{},
		fields: make(map[string]interface{}),
	}
}

// Debug logs a debug-level message.
func (l *TestLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log(ctx, "debug", msg, fields)
}

// Info logs an info-level message.
func (l *TestLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log(ctx, "info", msg, fields)
}

// Warn logs a warning-level message.
func (l *TestLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log(ctx, "warn", msg, fields)
}

// Error logs an error-level message.
func (l *TestLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log(ctx, "error", msg, fields)
}

// WithField returns a new logger with the given field added.
// Entries written through it land in the parent's buffer.
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with the given fields added.
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &TestLogger{
		buf:    l.buf,
		fields: newFields,
	}
}

func (l *TestLogger) log(ctx context.Context, level, msg string, fields map[string]interface{}) {
	allFields := make(map[string]interface{})
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range mergeFields(ctx, fields) {
		allFields[k] = v
	}

	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()
	l.buf.entries = append(l.buf.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  allFields,
	})
}

// Entries returns all captured log entries.
func (l *TestLogger) Entries() []LogEntry {
	l.buf.mu.RLock()
	defer l.buf.mu.RUnlock()

	entries := make([]LogEntry, len(l.buf.entries))
	copy(entries, l.buf.entries)
	return entries
}

// EntriesWithMessage returns the captured entries whose message equals msg.
func (l *TestLogger) EntriesWithMessage(msg string) []LogEntry {
	var matched []LogEntry
	for _, e := range l.Entries() {
		if e.Message == msg {
			matched = append(matched, e)
		}
	}
	return matched
}

// Reset clears all captured log entries.
func (l *TestLogger) Reset() {
	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()
	l.buf.entries = nil
}
