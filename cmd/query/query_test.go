package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/applog/cmd/query"
)

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	q, err := query.BuildQuery([]string{"error", "Warning"}, 10, 30*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"ERROR", "WARN"}, q.Levels)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, now.Add(-30*time.Minute), q.Since)
}

func TestBuildQuery_NoFilters(t *testing.T) {
	t.Parallel()

	q, err := query.BuildQuery(nil, 0, 0, time.Now())
	require.NoError(t, err)
	assert.Empty(t, q.Levels)
	assert.True(t, q.Since.IsZero(), "zero --since must not filter by time")
}

func TestBuildQuery_UnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := query.BuildQuery([]string{"info", "critical"}, 0, 0, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"critical"`)
}
