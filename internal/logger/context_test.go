package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NopLogger(), FromContext(t.Context()))

	capture := &captureLogger{}
	ctx := WithContext(t.Context(), capture)
	FromContext(ctx).Info("from context")

	assert.Equal(t, "from context", capture.last(t).msg)
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	l := NopLogger().Module("x").With(String("k", "v"))
	assert.NotPanics(t, func() {
		l.Error("ignored", Err(assert.AnError))
		l.Log(SeverityWarn, "ignored")
	})
	require.NoError(t, l.Flush())
}
