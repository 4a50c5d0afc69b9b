package logger

import "context"

type contextKey struct{}

var activeContextKey = contextKey{}

// FromContext returns the Logger stored in ctx, or a no-op Logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(activeContextKey).(Logger); ok {
		return l
	}
	return NopLogger()
}

// WithContext returns a copy of parent in which l is stored.
func WithContext(parent context.Context, l Logger) context.Context {
	return context.WithValue(parent, activeContextKey, l)
}

// NopLogger returns a Logger that discards every event.
func NopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field)         {}
func (nopLogger) Info(string, ...Field)          {}
func (nopLogger) Warn(string, ...Field)          {}
func (nopLogger) Error(string, ...Field)         {}
func (nopLogger) Log(Severity, string, ...Field) {}
func (nopLogger) With(...Field) Logger           { return nopLogger{} }
func (nopLogger) Module(string) Logger           { return nopLogger{} }
func (nopLogger) Flush() error                   { return nil }
