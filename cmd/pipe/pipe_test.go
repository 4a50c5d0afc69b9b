package pipe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/applog/cmd/pipe"
	"github.com/tphakala/applog/internal/logger"
)

func TestParseJSONLine(t *testing.T) {
	t.Parallel()

	sev, msg, fields, ok := pipe.ParseJSONLine(
		`{"level":"warning","msg":"disk almost full","free_mb":512,"ratio":0.93,"mount":{"path":"/var"}}`,
		logger.SeverityInfo,
	)
	require.True(t, ok)
	assert.Equal(t, logger.SeverityWarn, sev)
	assert.Equal(t, "disk almost full", msg)

	meta := logger.Metadata(fields)
	require.Len(t, meta, 3, "level and msg must not be copied into metadata")
	assert.Equal(t, "free_mb", meta[0].Key, "fields are sorted by key")

	free, _ := meta.Get("free_mb")
	assert.Equal(t, logger.KindInt64, free.Kind())
	assert.Equal(t, int64(512), free.Int64())

	ratio, _ := meta.Get("ratio")
	assert.Equal(t, logger.KindFloat64, ratio.Kind())
	assert.InDelta(t, 0.93, ratio.Float64(), 1e-9)

	mount, _ := meta.Get("mount")
	require.Equal(t, logger.KindGroup, mount.Kind())
	path, ok := mount.Group().Get("path")
	require.True(t, ok)
	assert.Equal(t, "/var", path.Str())
}

func TestParseJSONLine_Fallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		ok      bool
		wantSev logger.Severity
		wantMsg string
	}{
		{"plain text", "server started", false, logger.SeverityDebug, ""},
		{"json array", `[1,2,3]`, false, logger.SeverityDebug, ""},
		{"unknown level", `{"level":"fatal","message":"boom"}`, true, logger.SeverityDebug, "boom"},
		{"message wins over msg", `{"message":"a","msg":"b"}`, true, logger.SeverityDebug, "a"},
		{"no message", `{"user":"u-1"}`, true, logger.SeverityDebug, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sev, msg, _, ok := pipe.ParseJSONLine(tt.line, logger.SeverityDebug)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantSev, sev)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
