package logger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectDestinations_Development(t *testing.T) {
	t.Parallel()

	dests := SelectDestinations(Config{Environment: EnvDevelopment, StoreURL: "sqlite://:memory:"})
	require.Len(t, dests, 3)

	file, store, console := dests[0], dests[1], dests[2]

	assert.Equal(t, DestinationFile, file.Kind)
	assert.True(t, file.Active)
	assert.Equal(t, SeverityInfo, file.MinSeverity)
	assert.Equal(t, FormatterFile, file.Formatter)
	assert.Equal(t, filepath.Join("logs", "development.log"), file.Path)

	assert.Equal(t, DestinationStore, store.Kind)
	assert.True(t, store.Active)
	assert.Equal(t, SeverityInfo, store.MinSeverity)
	assert.Equal(t, FormatterPassthrough, store.Formatter)
	assert.Equal(t, 2_592_000*time.Second, store.Retention)
	assert.Equal(t, "application_logs", store.Collection)
	assert.Equal(t, "sqlite://:memory:", store.StoreURL)

	assert.Equal(t, DestinationConsole, console.Kind)
	assert.True(t, console.Active)
	assert.Equal(t, SeverityInfo, console.MinSeverity)
	assert.Equal(t, FormatterConsole, console.Formatter)
}

func TestSelectDestinations_ConsoleOnlyInDevelopment(t *testing.T) {
	t.Parallel()

	for _, env := range []Environment{EnvProduction, EnvStaging, EnvTest} {
		t.Run(string(env), func(t *testing.T) {
			t.Parallel()

			dests := SelectDestinations(Config{Environment: env, LogDir: "/var/log/app"})
			require.Len(t, dests, 3)

			active := 0
			for _, d := range dests {
				if d.Kind == DestinationConsole {
					assert.False(t, d.Active)
					continue
				}
				assert.True(t, d.Active)
				active++
			}
			assert.Equal(t, 2, active)
			assert.Equal(t, filepath.Join("/var/log/app", string(env)+".log"), dests[0].Path)
		})
	}
}

func TestSelectDestinations_Pure(t *testing.T) {
	t.Parallel()

	cfg := Config{Environment: EnvProduction}
	assert.Equal(t, SelectDestinations(cfg), SelectDestinations(cfg))
	assert.Empty(t, cfg.LogDir, "the caller's config is not modified")
}

func TestDestination_Admits(t *testing.T) {
	t.Parallel()

	d := Destination{Active: true, MinSeverity: SeverityInfo}
	assert.False(t, d.Admits(SeverityDebug))
	assert.True(t, d.Admits(SeverityInfo))
	assert.True(t, d.Admits(SeverityWarn))
	assert.True(t, d.Admits(SeverityError))

	d.Active = false
	assert.False(t, d.Admits(SeverityError))
}

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	env, err := ParseEnvironment(" Production ")
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, env)

	_, err = ParseEnvironment("prod")
	require.Error(t, err)
	_, err = ParseEnvironment("")
	require.Error(t, err)
}
