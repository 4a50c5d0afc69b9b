// Package logger provides a structured logging facade that fans each event out to
// several destinations with destination-specific formatting.
//
// # Destinations
//
// Three destinations are selected once at startup from the runtime environment:
//
//   - console: colorized, human-readable blocks on stdout (development only)
//   - file: 4-space indented JSON documents appended to logs/<environment>.log
//   - store: structured records in a SQL datastore with a 30 day expiry
//
// Every destination admits INFO and above. Errors embedded in metadata are
// normalized into {name, message, trace} records before they reach the file and
// the store; the console shows them raw.
//
// # Quick Start
//
//	cl, err := logger.NewCentralLogger(logger.Config{
//	    Environment: logger.EnvDevelopment,
//	    StoreURL:    "sqlite://logs/applog.db",
//	})
//	if err != nil {
//	    log.Fatal(err) // a missing destination is a startup failure
//	}
//	defer cl.Close()
//
//	cl.Error("payment failed",
//	    logger.String("order_id", "o-123"),
//	    logger.NamedError("err", err))
//
// # Dependency Injection
//
// There is no package-level logger. Construct one CentralLogger at startup and
// pass the Logger interface to components:
//
//	type Handler struct {
//	    log logger.Logger
//	}
//
// # Delivery
//
// Logging calls never wait for I/O. Each destination owns a FIFO queue drained by
// a single goroutine, so per-destination order matches call order. A failed write
// affects only its destination and is reported on stderr, never to the caller.
// Call Flush to wait for queued events and Close on shutdown.
package logger

import (
	"strings"
	"time"
	"unique"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Severity is the priority of a log event. Severities are totally ordered;
// the numeric values match log/slog levels.
type Severity int

const (
	SeverityDebug Severity = -4
	SeverityInfo  Severity = 0
	SeverityWarn  Severity = 4
	SeverityError Severity = 8
)

// toUpper canonicalizes severity names. A cases.Caser is stateful and not safe
// for concurrent use, so one is built per call.
func toUpper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// String returns the upper-case name of the severity.
func (s Severity) String() string {
	switch {
	case s >= SeverityError:
		return "ERROR"
	case s >= SeverityWarn:
		return "WARN"
	case s >= SeverityInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// ParseSeverity converts a case-insensitive severity name. "warning" is accepted
// as an alias of WARN.
func ParseSeverity(name string) (Severity, bool) {
	switch toUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return SeverityDebug, true
	case "INFO":
		return SeverityInfo, true
	case "WARN", "WARNING":
		return SeverityWarn, true
	case "ERROR":
		return SeverityError, true
	default:
		return SeverityInfo, false
	}
}

// Logger is the logging interface injected into application components.
type Logger interface {
	// Leveled logging methods
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Log with explicit severity
	Log(severity Severity, msg string, fields ...Field)

	// With returns a logger whose events always carry fields
	With(fields ...Field) Logger

	// Module returns a logger scoped to a named component
	Module(name string) Logger

	// Flush waits until every queued event has been handed to its transport
	Flush() error
}

// Field is one key/value pair of event metadata.
// Keys are interned; the same key used across many log calls shares one allocation.
type Field struct {
	Key   string
	Value Value
}

// internKey returns an interned version of the key string.
func internKey(key string) string {
	return unique.Make(key).Value()
}

// Pre-interned common keys
var (
	errorKey  = internKey("error")
	moduleKey = internKey("module")
)

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: internKey(key), Value: StringValue(value)}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: internKey(key), Value: Int64Value(int64(value))}
}

// Int64 creates a 64-bit integer field.
func Int64(key string, value int64) Field {
	return Field{Key: internKey(key), Value: Int64Value(value)}
}

// Uint64 creates an unsigned 64-bit integer field, e.g. for byte counts.
func Uint64(key string, value uint64) Field {
	return Field{Key: internKey(key), Value: Uint64Value(value)}
}

// Float64 creates a floating point field.
func Float64(key string, value float64) Field {
	return Field{Key: internKey(key), Value: Float64Value(value)}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: internKey(key), Value: BoolValue(value)}
}

// Time creates a time field.
func Time(key string, value time.Time) Field {
	return Field{Key: internKey(key), Value: TimeValue(value)}
}

// Duration creates a duration field, rendered like "1.5s".
func Duration(key string, value time.Duration) Field {
	return Field{Key: internKey(key), Value: DurationValue(value)}
}

// Group creates a nested mapping field.
//
//	log.Info("request served",
//	    logger.Group("http",
//	        logger.String("method", "GET"),
//	        logger.Int("status", 200)))
func Group(key string, fields ...Field) Field {
	return Field{Key: internKey(key), Value: GroupValue(fields...)}
}

// Err creates an error field under the key "error".
// The error is kept as an error value so the file and store destinations can
// normalize it into {name, message, trace}.
func Err(err error) Field {
	return Field{Key: errorKey, Value: ErrorValue(err)}
}

// NamedError creates an error field under a custom key.
func NamedError(key string, err error) Field {
	return Field{Key: internKey(key), Value: ErrorValue(err)}
}

// Any creates a field from an arbitrary value. Known scalar types, errors and
// map[string]any are converted to their tagged kinds; anything else is kept as
// KindAny and rendered by generic inspection.
func Any(key string, value any) Field {
	return Field{Key: internKey(key), Value: AnyValue(value)}
}
