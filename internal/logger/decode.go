package logger

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// FieldsFromMap converts decoded JSON metadata into fields sorted by key.
// Nested objects become groups and integral numbers become Int64 values.
// Numbers may be float64 or json.Number.
func FieldsFromMap(m map[string]any) Metadata {
	keys := slices.Sorted(maps.Keys(m))
	fields := make(Metadata, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fieldFromJSON(k, m[k]))
	}
	return fields
}

func fieldFromJSON(key string, v any) Field {
	switch x := v.(type) {
	case string:
		return String(key, x)
	case bool:
		return Bool(key, x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return Int64(key, int64(x))
		}
		return Float64(key, x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Int64(key, n)
		}
		if f, err := x.Float64(); err == nil {
			return Float64(key, f)
		}
		return String(key, x.String())
	case map[string]any:
		return Group(key, FieldsFromMap(x)...)
	default:
		return Any(key, x)
	}
}

// ParseTimestamp parses a timestamp written with TimestampLayout.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// Event rebuilds the event a file record was written from. Normalized errors
// come back as groups.
func (r FileRecord) Event() (Event, error) {
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return Event{}, err
	}
	severity, ok := ParseSeverity(r.Level)
	if !ok {
		return Event{}, fmt.Errorf("unknown level %q", r.Level)
	}
	return Event{
		Severity: severity,
		Message:  r.Message,
		Time:     ts,
		Meta:     FieldsFromMap(r.Meta),
	}, nil
}
