// Package logging decouples the bot from logrus so every component can be
// handed a Logger and tests can capture entries with MockLogger.
package logging

// Logger is the structured logger passed to every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err on every entry.
	WithError(err error) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields ...Field) Logger

	// Fatalf logs and exits. Reserved for command entry points.
	Fatalf(msg string, args ...interface{})
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for Field{Key: key, Value: value}.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
