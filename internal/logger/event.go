package logger

import (
	"slices"
	"time"
)

// TimestampLayout renders event timestamps in UTC with millisecond precision,
// e.g. 2025-01-12T10:30:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Event is one log record. It is built by the facade at emission time and is
// treated as immutable by every destination.
type Event struct {
	Severity Severity
	Message  string
	Time     time.Time
	Meta     Metadata
}

// NewEvent builds an event, copying meta so the caller's slice may be reused.
func NewEvent(severity Severity, msg string, ts time.Time, meta ...Field) Event {
	return Event{
		Severity: severity,
		Message:  msg,
		Time:     ts,
		Meta:     Metadata(slices.Clone(meta)),
	}
}

// Timestamp returns the event time formatted with TimestampLayout.
func (e Event) Timestamp() string {
	return e.Time.UTC().Format(TimestampLayout)
}
