package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/antonholmquist/jason"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// panicError panics when asked for its message.
type panicError struct{}

func (*panicError) Error() string { panic("broken error") }

// codedError names itself.
type codedError struct{ code int }

func (e codedError) Error() string     { return fmt.Sprintf("code %d", e.code) }
func (e codedError) ErrorName() string { return "CodedError" }

func TestColorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"ERROR", "\x1b[31mERROR\x1b[0m"},
		{"error", "\x1b[31mERROR\x1b[0m"},
		{"Info", "\x1b[34mINFO\x1b[0m"},
		{"warn", "\x1b[33mWARN\x1b[0m"},
		{"DEBUG", "DEBUG"},
		{"debug", "debug"},
		{"warning", "warning"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Colorize(tt.input))
		})
	}
}

func TestColorize_Idempotent(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"ERROR", "info", "Warn", "DEBUG", "trace", "", "weird level"} {
		once := Colorize(level)
		assert.Equal(t, once, Colorize(once), "Colorize(Colorize(%q))", level)
	}
}

func TestNormalize_NoErrorsIsIdentity(t *testing.T) {
	t.Parallel()

	meta := Metadata{
		String("user", "alice"),
		Int("attempt", 3),
		Group("req", String("id", "r1"), Err(errors.New("nested"))),
		Any("tags", []string{"a", "b"}),
	}

	assert.Equal(t, meta, Normalize(meta))
	assert.Equal(t, Metadata{}, Normalize(nil))
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	meta := Metadata{Err(errors.New("x"))}
	_ = Normalize(meta)
	assert.Equal(t, KindError, meta[0].Value.Kind())
}

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantName    string
		wantMessage string
		wantTrace   bool
	}{
		{"stdlib error", errors.New("bad input"), "errorString", "bad input", false},
		{"path error", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}, "PathError", "open /x: file does not exist", false},
		{"named error", codedError{code: 7}, "CodedError", "code 7", false},
		{"pkg errors", pkgerrors.New("boom"), "fundamental", "boom", true},
		{"wrapped pkg errors", fmt.Errorf("outer: %w", pkgerrors.New("root")), "wrapError", "outer: root", true},
		{"panicking error", &panicError{}, "panicError", "<error: panic in Error()>", false},
		{"nil error", nil, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeValue(ErrorValue(tt.err))
			require.Equal(t, KindGroup, got.Kind())

			group := got.Group()
			require.Len(t, group, 3)
			assert.Equal(t, []string{"name", "message", "trace"}, []string{group[0].Key, group[1].Key, group[2].Key})
			assert.Equal(t, tt.wantName, group[0].Value.Str())
			assert.Equal(t, tt.wantMessage, group[1].Value.Str())
			if tt.wantTrace {
				assert.Contains(t, group[2].Value.Str(), "TestNormalizeValue")
			} else {
				assert.Empty(t, group[2].Value.Str())
			}
		})
	}
}

func TestNormalizeValue_PassesOtherKinds(t *testing.T) {
	t.Parallel()

	for _, v := range []Value{StringValue("x"), Int64Value(1), GroupValue(Err(errors.New("e"))), {}} {
		assert.Equal(t, v, NormalizeValue(v))
	}
}

func TestFormatConsole(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityError, "boom", testTime,
		String("user", "alice"),
		Int("n", 2),
		Group("req", String("id", "r1")))

	want := "\x1b[31mERROR\x1b[0m [\x1b[32m2026-01-02T03:04:05.006Z\x1b[0m] boom\n" +
		"\x1b[35mMETA\x1b[0m {\n" +
		"  user: \"alice\",\n" +
		"  n: 2,\n" +
		"  req: {\n" +
		"    id: \"r1\"\n" +
		"  }\n" +
		"}\n"
	assert.Equal(t, want, FormatConsole(ev))
}

func TestFormatConsole_EmptyMeta(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityInfo, "started", testTime)
	assert.Equal(t,
		"\x1b[34mINFO\x1b[0m [\x1b[32m2026-01-02T03:04:05.006Z\x1b[0m] started\n\x1b[35mMETA\x1b[0m {}\n",
		FormatConsole(ev))
}

func TestFormatConsole_ErrorsAreNotNormalized(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityError, "boom", testTime, NamedError("err", errors.New("bad input")))
	out := FormatConsole(ev)

	assert.Contains(t, out, "err: [errorString: bad input]")
	assert.NotContains(t, out, "message:")
	assert.NotContains(t, out, "trace:")
}

func TestFormatConsole_ErrorWithStack(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityError, "boom", testTime, Err(pkgerrors.New("exploded")))
	out := FormatConsole(ev)

	assert.Contains(t, out, "error: [fundamental: exploded]\n")
	assert.Contains(t, out, "TestFormatConsole_ErrorWithStack")
}

func TestFormatConsole_AnyUsesInspection(t *testing.T) {
	t.Parallel()

	type point struct{ X, Y int }
	ev := NewEvent(SeverityWarn, "odd", testTime,
		Any("p", point{X: 1, Y: 2}),
		Any("nothing", nil))
	out := FormatConsole(ev)

	assert.Contains(t, out, "\x1b[33mWARN\x1b[0m")
	assert.Contains(t, out, "X: (int) 1")
	assert.Contains(t, out, "nothing: null")
}

func TestFormatFile(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityError, "boom", testTime,
		String("user", "alice"),
		NamedError("err", errors.New("bad input")))

	want := `{
    "level": "ERROR",
    "message": "boom",
    "timestamp": "2026-01-02T03:04:05.006Z",
    "meta": {
        "user": "alice",
        "err": {
            "name": "errorString",
            "message": "bad input",
            "trace": ""
        }
    }
}
`
	assert.Equal(t, want, string(FormatFile(ev)))
}

func TestFormatFile_EmptyMetaAndHTML(t *testing.T) {
	t.Parallel()

	out := string(FormatFile(NewEvent(SeverityInfo, "<b>hi</b> & bye", testTime)))
	assert.Contains(t, out, `"message": "<b>hi</b> & bye"`)
	assert.Contains(t, out, `"meta": {}`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestFormatFile_Deterministic(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityWarn, "same", testTime,
		Any("m", map[string]any{"z": 1, "a": "x"}),
		Err(pkgerrors.New("st")))
	assert.Equal(t, FormatFile(ev), FormatFile(ev))
}

func TestFormatFile_RoundTrip(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityWarn, "disk almost full", testTime,
		String("volume", "/data"),
		Float64("used", 0.93),
		Bool("alert", true),
		Group("limits", Int("soft", 80), Int("hard", 95)),
		Err(pkgerrors.New("quota")))

	records, err := DecodeFileRecords(bytes.NewReader(FormatFile(ev)))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "WARN", rec.Level)
	assert.Equal(t, ev.Message, rec.Message)
	assert.Equal(t, ev.Timestamp(), rec.Timestamp)

	normalized, err := Normalize(ev.Meta).MarshalJSON()
	require.NoError(t, err)
	doc, err := jason.NewObjectFromBytes(normalized)
	require.NoError(t, err)
	want := doc.Map()

	got, err := jason.NewObjectFromBytes(mustJSON(t, rec.Meta))
	require.NoError(t, err)
	assert.Equal(t, len(want), len(got.Map()))

	volume, err := got.GetString("volume")
	require.NoError(t, err)
	assert.Equal(t, "/data", volume)

	hard, err := got.GetInt64("limits", "hard")
	require.NoError(t, err)
	assert.Equal(t, int64(95), hard)

	name, err := got.GetString("error", "name")
	require.NoError(t, err)
	assert.Equal(t, "fundamental", name)

	trace, err := got.GetString("error", "trace")
	require.NoError(t, err)
	assert.NotEmpty(t, trace)
}

func TestDecodeFileRecords_Sequence(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	for i := range 3 {
		buf.Write(FormatFile(NewEvent(SeverityInfo, fmt.Sprintf("event %d", i), testTime, Int("i", i))))
	}

	records, err := DecodeFileRecords(&buf)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("event %d", i), rec.Message)
		assert.InDelta(t, float64(i), rec.Meta["i"], 0)
	}

	_, err = DecodeFileRecords(strings.NewReader(`{"level":"INFO"} {"level":`))
	require.Error(t, err)
}

func TestFileRecord_EventRoundTrip(t *testing.T) {
	t.Parallel()

	ev := NewEvent(SeverityWarn, "disk almost full", testTime,
		String("volume", "/data"),
		Float64("ratio", 0.93),
		Int("free_mb", 512),
		Group("limits", Int("soft", 90), Int("hard", 95)),
		NamedError("cause", errors.New("quota")),
	)

	records, err := DecodeFileRecords(bytes.NewReader(FormatFile(ev)))
	require.NoError(t, err)
	require.Len(t, records, 1)

	back, err := records[0].Event()
	require.NoError(t, err)

	assert.Equal(t, ev.Severity, back.Severity)
	assert.Equal(t, ev.Message, back.Message)
	assert.True(t, ev.Time.Equal(back.Time))

	keys := make([]string, 0, len(back.Meta))
	for _, f := range back.Meta {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"cause", "free_mb", "limits", "ratio", "volume"}, keys, "decoded fields are sorted")

	freeMB, _ := back.Meta.Get("free_mb")
	assert.Equal(t, KindInt64, freeMB.Kind())
	ratio, _ := back.Meta.Get("ratio")
	assert.Equal(t, KindFloat64, ratio.Kind())

	cause, _ := back.Meta.Get("cause")
	require.Equal(t, KindGroup, cause.Kind())
	msg, _ := cause.Group().Get("message")
	assert.Equal(t, "quota", msg.Str())
}

func TestFileRecord_EventErrors(t *testing.T) {
	t.Parallel()

	_, err := FileRecord{Level: "INFO", Timestamp: "yesterday"}.Event()
	require.Error(t, err)

	_, err = FileRecord{Level: "FATAL", Timestamp: "2026-01-02T03:04:05.006Z"}.Event()
	require.Error(t, err)
}
