package logger

import (
	"fmt"
	"reflect"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Keys of a normalized error record, in rendering order.
const (
	errorNameKey    = "name"
	errorMessageKey = "message"
	errorTraceKey   = "trace"
)

// namedError lets an error choose its own name in normalized records.
type namedError interface {
	ErrorName() string
}

// stackTracer is implemented by errors created with github.com/pkg/errors.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Normalize returns a copy of meta in which every top-level error value is
// replaced by a {name, message, trace} group. Other values, including errors
// nested inside groups, are returned unchanged.
func Normalize(meta Metadata) Metadata {
	if len(meta) == 0 {
		return Metadata{}
	}
	out := make(Metadata, len(meta))
	for i, f := range meta {
		out[i] = Field{Key: f.Key, Value: NormalizeValue(f.Value)}
	}
	return out
}

// NormalizeValue converts an error value into a plain {name, message, trace}
// record and passes every other value through.
func NormalizeValue(v Value) Value {
	if v.Kind() != KindError {
		return v
	}
	err := v.Err()
	return GroupValue(
		String(errorNameKey, errorName(err)),
		String(errorMessageKey, errorMessage(err)),
		String(errorTraceKey, errorTrace(err)),
	)
}

// errorName returns the error's self-reported name, or its dynamic type name
// without pointer and package qualifiers ("*fs.PathError" becomes "PathError").
func errorName(err error) string {
	if err == nil {
		return ""
	}
	if n, ok := err.(namedError); ok {
		if name, ok := safeCall(n.ErrorName); ok {
			return name
		}
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	name := t.String()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// errorMessage returns err.Error(), recovering from panicking implementations
// such as typed nil pointers.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg, ok := safeCall(err.Error)
	if !ok {
		return "<error: panic in Error()>"
	}
	return msg
}

// errorTrace returns the first stack trace found in err's wrap chain, or "".
func errorTrace(err error) string {
	for e := err; e != nil; e = unwrapOnce(e) {
		if st, ok := e.(stackTracer); ok {
			trace, ok := safeCall(func() string {
				return strings.TrimPrefix(fmt.Sprintf("%+v", st.StackTrace()), "\n")
			})
			if ok {
				return trace
			}
			return ""
		}
	}
	return ""
}

// unwrapOnce follows a single Unwrap() error or Cause() error link.
func unwrapOnce(err error) error {
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		return e.Unwrap()
	case interface{ Cause() error }:
		return e.Cause()
	default:
		return nil
	}
}

// safeCall invokes fn and reports false if it panicked.
func safeCall(fn func() string) (s string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s, ok = "", false
		}
	}()
	return fn(), true
}
