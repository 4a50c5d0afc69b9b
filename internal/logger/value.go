package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindInt64
	KindUint64
	KindFloat64
	KindBool
	KindTime
	KindDuration
	KindGroup
	KindError
)

var kindNames = [...]string{
	KindAny:      "any",
	KindString:   "string",
	KindInt64:    "int64",
	KindUint64:   "uint64",
	KindFloat64:  "float64",
	KindBool:     "bool",
	KindTime:     "time",
	KindDuration: "duration",
	KindGroup:    "group",
	KindError:    "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<unknown kind>"
}

// Value is a tagged union holding one metadata value. The zero Value is an
// untyped nil of KindAny.
type Value struct {
	kind Kind
	v    any
}

// StringValue returns a Value for a string.
func StringValue(s string) Value { return Value{kind: KindString, v: s} }

// Int64Value returns a Value for an int64.
func Int64Value(n int64) Value { return Value{kind: KindInt64, v: n} }

// Uint64Value returns a Value for a uint64.
func Uint64Value(n uint64) Value { return Value{kind: KindUint64, v: n} }

// Float64Value returns a Value for a float64.
func Float64Value(f float64) Value { return Value{kind: KindFloat64, v: f} }

// BoolValue returns a Value for a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, v: b} }

// TimeValue returns a Value for a time.Time.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, v: t} }

// DurationValue returns a Value for a time.Duration.
func DurationValue(d time.Duration) Value { return Value{kind: KindDuration, v: d} }

// GroupValue returns a Value holding a nested ordered mapping. The fields are
// copied so later changes to the caller's slice are not observed.
func GroupValue(fields ...Field) Value {
	return Value{kind: KindGroup, v: Metadata(slices.Clone(fields))}
}

// ErrorValue returns a Value holding an error. A nil error is kept as KindError.
func ErrorValue(err error) Value { return Value{kind: KindError, v: err} }

// maxAnyDepth bounds how many levels of nested maps AnyValue expands and how
// deep the string fallback renders.
const maxAnyDepth = 10

// Placeholders for map values AnyValue does not expand.
const (
	circularValue = "[Circular]"
	maxDepthValue = "[MaxDepth]"
)

// fallbackSpew renders values JSON cannot encode. spew bounds the depth and
// recovers from panicking String and Error methods.
var fallbackSpew = spew.ConfigState{
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                maxAnyDepth,
}

// AnyValue converts v to the most specific Value kind. A map[string]any becomes
// a group; a map that contains itself is cut off with "[Circular]".
func AnyValue(v any) Value {
	return anyValue(v, nil)
}

// anyValue converts v. path holds the maps being expanded, outermost first.
func anyValue(v any, path []uintptr) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return StringValue(x)
	case int:
		return Int64Value(int64(x))
	case int8:
		return Int64Value(int64(x))
	case int16:
		return Int64Value(int64(x))
	case int32:
		return Int64Value(int64(x))
	case int64:
		return Int64Value(x)
	case uint:
		return Uint64Value(uint64(x))
	case uint8:
		return Uint64Value(uint64(x))
	case uint16:
		return Uint64Value(uint64(x))
	case uint32:
		return Uint64Value(uint64(x))
	case uint64:
		return Uint64Value(x)
	case float32:
		return Float64Value(float64(x))
	case float64:
		return Float64Value(x)
	case bool:
		return BoolValue(x)
	case time.Time:
		return TimeValue(x)
	case time.Duration:
		return DurationValue(x)
	case error:
		return ErrorValue(x)
	case Metadata:
		return GroupValue(x...)
	case []Field:
		return GroupValue(x...)
	case map[string]any:
		return mapValue(x, path)
	default:
		return Value{kind: KindAny, v: v}
	}
}

// mapValue expands m into a group with keys sorted.
func mapValue(m map[string]any, path []uintptr) Value {
	if len(path) >= maxAnyDepth {
		return StringValue(maxDepthValue)
	}
	ptr := reflect.ValueOf(m).Pointer()
	if ptr != 0 && slices.Contains(path, ptr) {
		return StringValue(circularValue)
	}
	path = append(path, ptr)

	keys := slices.Sorted(maps.Keys(m))
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: internKey(k), Value: anyValue(m[k], path)})
	}
	return Value{kind: KindGroup, v: Metadata(fields)}
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// Any returns the value as an untyped Go value.
func (v Value) Any() any { return v.v }

// Str returns the string held by a KindString value.
func (v Value) Str() string {
	s, _ := v.v.(string)
	return s
}

// Int64 returns the integer held by a KindInt64 value.
func (v Value) Int64() int64 {
	n, _ := v.v.(int64)
	return n
}

// Uint64 returns the integer held by a KindUint64 value.
func (v Value) Uint64() uint64 {
	n, _ := v.v.(uint64)
	return n
}

// Float64 returns the float held by a KindFloat64 value.
func (v Value) Float64() float64 {
	f, _ := v.v.(float64)
	return f
}

// Bool returns the bool held by a KindBool value.
func (v Value) Bool() bool {
	b, _ := v.v.(bool)
	return b
}

// Time returns the time held by a KindTime value.
func (v Value) Time() time.Time {
	t, _ := v.v.(time.Time)
	return t
}

// Duration returns the duration held by a KindDuration value.
func (v Value) Duration() time.Duration {
	d, _ := v.v.(time.Duration)
	return d
}

// Group returns the nested mapping held by a KindGroup value.
func (v Value) Group() Metadata {
	m, _ := v.v.(Metadata)
	return m
}

// Err returns the error held by a KindError value.
func (v Value) Err() error {
	err, _ := v.v.(error)
	return err
}

// MarshalJSON renders the value. It never fails: values that cannot be encoded
// fall back to a JSON string of their spew representation, and values whose
// encoding panics become "<unprintable T>".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return marshalNoEscape(v.Str())
	case KindInt64:
		return strconv.AppendInt(nil, v.Int64(), 10), nil
	case KindUint64:
		return strconv.AppendUint(nil, v.Uint64(), 10), nil
	case KindFloat64:
		f := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return marshalNoEscape(strconv.FormatFloat(f, 'g', -1, 64))
		}
		return marshalNoEscape(f)
	case KindBool:
		return strconv.AppendBool(nil, v.Bool()), nil
	case KindTime:
		return marshalNoEscape(v.Time().Format(time.RFC3339Nano))
	case KindDuration:
		return marshalNoEscape(v.Duration().String())
	case KindGroup:
		return v.Group().MarshalJSON()
	case KindError:
		// Errors below the top level are not normalized; keep the message.
		return marshalNoEscape(errorMessage(v.Err()))
	default:
		if v.v == nil {
			return []byte("null"), nil
		}
		data, err := marshalNoEscape(v.v)
		if err == nil {
			return data, nil
		}
		if _, ok := err.(*marshalPanicError); ok {
			return marshalNoEscape(unprintable(v.v))
		}
		return marshalNoEscape(safeSprint(v.v))
	}
}

// Metadata is an ordered mapping of event metadata.
type Metadata []Field

// Get returns the value of the last field with key.
func (m Metadata) Get(key string) (Value, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i].Key == key {
			return m[i].Value, true
		}
	}
	return Value{}, false
}

// dedupe returns the fields with duplicate keys collapsed: the first position
// is kept and the last value wins.
func (m Metadata) dedupe() Metadata {
	if len(m) < 2 {
		return m
	}
	index := make(map[string]int, len(m))
	out := make(Metadata, 0, len(m))
	for _, f := range m {
		if i, ok := index[f.Key]; ok {
			out[i].Value = f.Value
			continue
		}
		index[f.Key] = len(out)
		out = append(out, f)
	}
	return out
}

// MarshalJSON renders the mapping as a JSON object in field order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.dedupe() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := marshalNoEscape(f.Key)
		buf.Write(key)
		buf.WriteByte(':')
		val, _ := f.Value.MarshalJSON()
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalPanicError reports a MarshalJSON or MarshalText method that panicked.
type marshalPanicError struct {
	value any
}

func (e *marshalPanicError) Error() string {
	return fmt.Sprintf("json: panic while encoding %T", e.value)
}

// marshalNoEscape encodes v without HTML escaping, which would otherwise turn
// "<" into "\u003c" in human-read log files. A panic raised by one of v's
// methods is returned as a *marshalPanicError.
func marshalNoEscape(v any) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, &marshalPanicError{value: v}
		}
	}()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// safeSprint formats v with spew's %v, which stops at maxAnyDepth and so
// terminates on cyclic values.
func safeSprint(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = unprintable(v)
		}
	}()
	return fallbackSpew.Sprintf("%v", v)
}

func unprintable(v any) string {
	return fmt.Sprintf("<unprintable %T>", v)
}
