package logger

import (
	"regexp"
	"strings"
)

// redactedValue replaces sensitive data.
const redactedValue = "[REDACTED]"

// redaction is a pattern and its replacement template.
type redaction struct {
	re   *regexp.Regexp
	repl string
}

// sensitiveDataPatterns match secrets embedded in free text.
var sensitiveDataPatterns = []redaction{
	// Auth tokens (Bearer, JWT)
	{regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`), "${1}" + redactedValue},
	{regexp.MustCompile(`(?i)(eyJ[a-zA-Z0-9_-]{5,}\.eyJ[a-zA-Z0-9_-]{5,})\.[a-zA-Z0-9_-]{5,}`), redactedValue},

	// API keys, tokens and secrets
	{regexp.MustCompile(`(?i)((api|access|auth|token|secret|key|passw(or)?d)[0-9a-z\-_\.]*[\s:=]+)([^;,\s]{5,})`), "${1}" + redactedValue},

	// Cookies
	{regexp.MustCompile(`(?i)((session|auth|token|csrf|sid)=)([^;,\s]{5,})`), "${1}" + redactedValue},

	// CSRF tokens
	{regexp.MustCompile(`(?i)(csrf[-_]?token[\s:=]+)([^;,\s"]{5,})`), "${1}" + redactedValue},

	// Credentials in connection strings
	{regexp.MustCompile(`(://[^:/@\s]+:)([^@\s]+)(@)`), "${1}" + redactedValue + "${3}"},
}

// sensitiveKeywords mark metadata keys whose string values are always redacted.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "credential", "token", "auth", "api_key",
	"apikey", "access_token", "secret_key", "authorization", "cookie", "session", "csrf",
}

// RedactSensitiveData replaces secrets found in s with [REDACTED].
func RedactSensitiveData(s string) string {
	if s == "" {
		return s
	}
	for _, r := range sensitiveDataPatterns {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// isSensitiveKey reports whether a metadata key names a secret.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RedactMetadata returns a copy of meta with sensitive values masked. String
// values under sensitive keys are replaced entirely; other strings and error
// messages have embedded secrets replaced. Groups are redacted recursively.
// Other values are left alone.
func RedactMetadata(meta Metadata) Metadata {
	if len(meta) == 0 {
		return meta
	}
	out := make(Metadata, len(meta))
	for i, f := range meta {
		out[i] = Field{Key: f.Key, Value: redactValue(f.Key, f.Value)}
	}
	return out
}

func redactValue(key string, v Value) Value {
	switch v.Kind() {
	case KindString:
		s := v.Str()
		if s != "" && isSensitiveKey(key) {
			return StringValue(redactedValue)
		}
		return StringValue(RedactSensitiveData(s))
	case KindGroup:
		return GroupValue(RedactMetadata(v.Group())...)
	case KindError:
		err := v.Err()
		if err == nil {
			return v
		}
		msg := errorMessage(err)
		if redacted := RedactSensitiveData(msg); redacted != msg {
			return ErrorValue(&redactedError{err: err, msg: redacted})
		}
		return v
	default:
		return v
	}
}

// redactedError is err with secrets removed from its message. Name and trace
// still come from err.
type redactedError struct {
	err error
	msg string
}

func (e *redactedError) Error() string     { return e.msg }
func (e *redactedError) Unwrap() error     { return e.err }
func (e *redactedError) ErrorName() string { return errorName(e.err) }
