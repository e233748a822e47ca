package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper-case json format", level: "warn", format: "JSON", expectLevel: logrus.WarnLevel, expectJSON: true},
		{name: "invalid level falls back to info", level: "chatty", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	adapter, ok := NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestLogrusAdapter_Levels(t *testing.T) {
	tests := []struct {
		name string
		call func(Logger)
		want string
	}{
		{name: "debug", call: func(l Logger) { l.Debug("polling", F(FieldChatID, int64(42))) }, want: "chat_id=42"},
		{name: "info", call: func(l Logger) { l.Info("receipt saved", F(FieldStore, "Costco")) }, want: "store=Costco"},
		{name: "warn", call: func(l Logger) { l.Warn("unknown category", F(FieldCategory, "PETS")) }, want: "category=PETS"},
		{name: "error", call: func(l Logger) { l.Error("send failed", F(FieldJob, "daily")) }, want: "job=daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferedAdapter(logrus.DebugLevel)
			tt.call(logger)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestLogrusAdapter_ChainedContext(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.
		WithField(FieldComponent, "scheduler").
		WithFields(F(FieldJob, "weekly")).
		WithError(errors.New("telegram unavailable")).
		Error("job failed")

	out := buf.String()
	assert.Contains(t, out, "job failed")
	assert.Contains(t, out, "component=scheduler")
	assert.Contains(t, out, "job=weekly")
	assert.Contains(t, out, "telegram unavailable")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{F("a", "x"), F("b", 2)})
	assert.Len(t, fields, 2)
	assert.Equal(t, 2, fields["b"])
	assert.Empty(t, convertFields(nil))
}

func TestMockLogger_SharesSinkWithChildren(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldComponent, "store")
	child.WithError(errors.New("disk full")).Error("write failed", F(FieldFile, "receipts-2024-02-14.json"))
	mock.Info("ready")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.True(t, mock.HasEntry("ERROR", "write failed"))
	assert.EqualError(t, entries[0].Error, "disk full")

	component, ok := entries[0].Field(FieldComponent)
	require.True(t, ok)
	assert.Equal(t, "store", component)
	assert.Len(t, mock.EntriesByLevel("INFO"), 1)

	mock.Clear()
	assert.Empty(t, child.(*MockLogger).Entries())
}

func TestImplementations(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
