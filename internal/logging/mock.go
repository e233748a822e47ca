package logging

import (
	"fmt"
	"sync"
)

// LogEntry is a single entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// Field returns the value of the named field and whether it was set.
func (e LogEntry) Field(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type mockSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// MockLogger records entries in memory. Child loggers created through
// WithError/WithField(s) share the parent's sink, so a test can hand a
// MockLogger to a component and inspect everything it logged.
type MockLogger struct {
	sink   *mockSink
	err    error
	fields []Field
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &mockSink{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	if m.sink == nil {
		m.sink = &mockSink{}
	}
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = append(m.sink.entries, LogEntry{Level: level, Message: msg, Fields: all, Error: m.err})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// Fatalf records a FATAL entry without exiting.
func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

func (m *MockLogger) WithError(err error) Logger {
	m.ensureSink()
	return &MockLogger{sink: m.sink, err: err, fields: m.fields}
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	m.ensureSink()
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)
	return &MockLogger{sink: m.sink, err: m.err, fields: all}
}

func (m *MockLogger) ensureSink() {
	if m.sink == nil {
		m.sink = &mockSink{}
	}
}

// Entries returns a snapshot of everything logged so far.
func (m *MockLogger) Entries() []LogEntry {
	m.ensureSink()
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	out := make([]LogEntry, len(m.sink.entries))
	copy(out, m.sink.entries)
	return out
}

// EntriesByLevel filters Entries by level ("DEBUG", "INFO", ...).
func (m *MockLogger) EntriesByLevel(level string) []LogEntry {
	var out []LogEntry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether an entry with the level and message was logged.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// Clear drops all captured entries.
func (m *MockLogger) Clear() {
	m.ensureSink()
	m.sink.mu.Lock()
	m.sink.entries = nil
	m.sink.mu.Unlock()
}
