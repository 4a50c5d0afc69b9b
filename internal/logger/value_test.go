package logger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// badJSON cannot be encoded but has a readable String form.
type badJSON struct{}

func (badJSON) MarshalJSON() ([]byte, error) { return nil, errors.New("nope") }
func (badJSON) String() string               { return "bad-json" }

// panicky panics while encoding.
type panicky struct{}

func (panicky) MarshalJSON() ([]byte, error) { panic("encode exploded") }

// panickyStringer cannot be encoded and panics when printed.
type panickyStringer struct{ C chan int }

func (panickyStringer) String() string { panic("print exploded") }

func TestAnyValue_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"string", "x", KindString},
		{"int", 1, KindInt64},
		{"int32", int32(1), KindInt64},
		{"uint8", uint8(1), KindUint64},
		{"float32", float32(1.5), KindFloat64},
		{"bool", true, KindBool},
		{"time", time.Now(), KindTime},
		{"duration", time.Second, KindDuration},
		{"error", errors.New("e"), KindError},
		{"metadata", Metadata{String("a", "b")}, KindGroup},
		{"map", map[string]any{"a": 1}, KindGroup},
		{"slice", []int{1}, KindAny},
		{"nil", nil, KindAny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AnyValue(tt.in).Kind())
		})
	}
}

func TestAnyValue_MapKeysSorted(t *testing.T) {
	t.Parallel()

	v := AnyValue(map[string]any{"b": 2, "a": 1, "c": 3})
	group := v.Group()
	require.Len(t, group, 3)
	assert.Equal(t, "a", group[0].Key)
	assert.Equal(t, "b", group[1].Key)
	assert.Equal(t, "c", group[2].Key)
}

func TestAnyValue_SelfReferencingMap(t *testing.T) {
	t.Parallel()

	m := map[string]any{"a": 1}
	m["self"] = m

	v := AnyValue(m)
	require.Equal(t, KindGroup, v.Kind())
	self, ok := v.Group().Get("self")
	require.True(t, ok)
	assert.Equal(t, KindString, self.Kind())
	assert.Equal(t, "[Circular]", self.Str())

	data, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"self":"[Circular]"}`, string(data))
}

func TestAnyValue_SharedMapIsNotCircular(t *testing.T) {
	t.Parallel()

	shared := map[string]any{"x": 1}
	v := AnyValue(map[string]any{"a": shared, "b": shared})

	for _, key := range []string{"a", "b"} {
		got, ok := v.Group().Get(key)
		require.True(t, ok)
		assert.Equal(t, KindGroup, got.Kind(), key)
	}
}

func TestAnyValue_DepthCapped(t *testing.T) {
	t.Parallel()

	root := map[string]any{}
	cur := root
	for range 2 * maxAnyDepth {
		next := map[string]any{}
		cur["n"] = next
		cur = next
	}

	v := AnyValue(root)
	depth := 0
	for v.Kind() == KindGroup {
		var ok bool
		v, ok = v.Group().Get("n")
		require.True(t, ok)
		depth++
	}
	assert.Equal(t, maxAnyDepth, depth)
	assert.Equal(t, "[MaxDepth]", v.Str())
}

func TestMetadata_LastWinsFirstPositionKept(t *testing.T) {
	t.Parallel()

	meta := Metadata{String("a", "1"), String("b", "2"), String("a", "3")}

	data, err := meta.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"3","b":"2"}`, string(data))
	assert.Equal(t, `{"a":"3","b":"2"}`, string(data))

	v, ok := meta.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", v.Str())

	_, ok = meta.Get("missing")
	assert.False(t, ok)
}

func TestValue_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string without html escaping", StringValue("<a&b>"), `"<a&b>"`},
		{"int", Int64Value(-3), `-3`},
		{"uint", Uint64Value(3), `3`},
		{"float", Float64Value(0.5), `0.5`},
		{"nan", Float64Value(math.NaN()), `"NaN"`},
		{"inf", Float64Value(math.Inf(1)), `"+Inf"`},
		{"bool", BoolValue(true), `true`},
		{"time", TimeValue(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)), `"2026-01-02T03:04:05Z"`},
		{"duration", DurationValue(1500 * time.Millisecond), `"1.5s"`},
		{"nested error", ErrorValue(errors.New("inner")), `"inner"`},
		{"nil any", Value{}, `null`},
		{"slice any", AnyValue([]int{1, 2}), `[1,2]`},
		{"unencodable any", AnyValue(badJSON{}), `"bad-json"`},
		{"unencodable channel", AnyValue(make(chan int)), ""},
		{"panicking marshaler", AnyValue(panicky{}), `"<unprintable logger.panicky>"`},
		{"panicking stringer", AnyValue(panickyStringer{C: make(chan int)}), ""},
		{"cyclic slice", AnyValue(cyclicSlice()), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := tt.v.MarshalJSON()
			require.NoError(t, err)
			if tt.want == "" {
				// Fallback to a JSON string of the fmt representation
				assert.Equal(t, byte('"'), data[0])
				return
			}
			assert.Equal(t, tt.want, string(data))
		})
	}
}

// cyclicSlice returns a slice holding a map that references itself.
func cyclicSlice() []any {
	m := map[string]any{"a": 1}
	m["self"] = m
	return []any{m}
}

func TestGroupValue_CopiesFields(t *testing.T) {
	t.Parallel()

	fields := []Field{String("a", "1")}
	v := GroupValue(fields...)
	fields[0] = String("a", "changed")

	got, _ := v.Group().Get("a")
	assert.Equal(t, "1", got.Str())
}

func TestNewEvent_CopiesMeta(t *testing.T) {
	t.Parallel()

	fields := []Field{String("a", "1")}
	ev := NewEvent(SeverityInfo, "m", testTime, fields...)
	fields[0] = String("a", "changed")

	got, _ := ev.Meta.Get("a")
	assert.Equal(t, "1", got.Str())
	assert.Equal(t, "2026-01-02T03:04:05.006Z", ev.Timestamp())
}

func TestEvent_TimestampIsUTC(t *testing.T) {
	t.Parallel()

	local := time.Date(2026, 6, 1, 12, 0, 0, 123_456_789, time.FixedZone("CEST", 2*3600))
	ev := NewEvent(SeverityInfo, "m", local)
	assert.Equal(t, "2026-06-01T10:00:00.123Z", ev.Timestamp())
}

func TestSeverity(t *testing.T) {
	t.Parallel()

	assert.Less(t, SeverityDebug, SeverityInfo)
	assert.Less(t, SeverityInfo, SeverityWarn)
	assert.Less(t, SeverityWarn, SeverityError)

	assert.Equal(t, "DEBUG", SeverityDebug.String())
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARN", SeverityWarn.String())
	assert.Equal(t, "ERROR", SeverityError.String())

	for name, want := range map[string]Severity{
		"debug": SeverityDebug, "INFO": SeverityInfo, " Warn ": SeverityWarn,
		"warning": SeverityWarn, "error": SeverityError,
	} {
		got, ok := ParseSeverity(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseSeverity("fatal")
	assert.False(t, ok)
}

func TestFieldKeysAreInterned(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "error", Err(errors.New("x")).Key)
	assert.Equal(t, "cause", NamedError("cause", nil).Key)
	assert.Equal(t, KindError, NamedError("cause", nil).Value.Kind())
}
