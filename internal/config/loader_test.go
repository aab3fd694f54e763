package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Tabula/internal/config"
	ferrors "github.com/turtacn/Tabula/pkg/errors"
)

func TestLoad_File(t *testing.T) {
	cfg, err := config.Load("testdata/turnstile.yaml")
	require.NoError(t, err)

	assert.Equal(t, "turnstile", cfg.Machine.Name)
	assert.Equal(t, 2, cfg.Engine.PoolCapacity)
	assert.Equal(t, 8, cfg.Engine.QueueSize)
	assert.True(t, cfg.Engine.IndexedLookup)
	assert.Equal(t, 1024, cfg.Engine.MaxIndexEntries, "defaults survive a partial engine block")
	assert.Len(t, cfg.Machine.Transitions, 6)
	require.NotNil(t, cfg.Machine.Transitions[4].Guard)
	assert.Equal(t, 1, cfg.Machine.Transitions[4].Guard.MaxFires)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TABULA_ENGINE_POOL_CAPACITY", "6")
	t.Setenv("TABULA_OBS_LOG_LEVEL", "debug")

	cfg, err := config.Load("testdata/turnstile.yaml")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Engine.PoolCapacity)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_EnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, and t.Setenv
	// restores them afterwards.
	t.Setenv("TABULA_ENGINE_QUEUE_SIZE", "")
	os.Unsetenv("TABULA_ENGINE_QUEUE_SIZE")
	t.Setenv("TABULA_SIM_INSTANCES", "")
	os.Unsetenv("TABULA_SIM_INSTANCES")

	cfg, err := config.Load("testdata/turnstile.yaml", "testdata/override.env")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Engine.QueueSize)
	assert.Equal(t, 1, cfg.Simulation.Instances)
}

func TestLoad_MissingFiles(t *testing.T) {
	_, err := config.Load("testdata/nope.yaml")
	assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)

	_, err = config.Load("testdata/turnstile.yaml", "testdata/nope.env")
	assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":   "machine: [",
		"no machine": `version: "1"`,
		"bad backend": `
engine: {queue_backend: kafka}
machine: {name: m, states: [a], events: [e], initial: a, transitions: [{from: a, event: e, to: a}]}`,
		"zero queue": `
engine: {queue_size: 0}
machine: {name: m, states: [a], events: [e], initial: a, transitions: [{from: a, event: e, to: a}]}`,
		"duplicate state": `
machine: {name: m, states: [a, a], events: [e], initial: a, transitions: [{from: a, event: e, to: a}]}`,
		"unknown target": `
machine: {name: m, states: [a], events: [e], initial: a, transitions: [{from: a, event: e, to: b}]}`,
		"unknown event": `
machine: {name: m, states: [a], events: [e], initial: a, transitions: [{from: a, event: x, to: a}]}`,
		"unknown initial": `
machine: {name: m, states: [a], events: [e], initial: z, transitions: [{from: a, event: e, to: a}]}`,
		"unknown script event": `
machine: {name: m, states: [a], events: [e], initial: a, script: [q], transitions: [{from: a, event: e, to: a}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)
		})
	}
}

func TestParse_Minimal(t *testing.T) {
	doc := `
machine:
  name: m
  states: [a, b]
  events: [go]
  initial: a
  transitions:
    - {from: a, event: go, to: b}
`
	path := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.PoolCapacity)
	assert.Equal(t, 16, cfg.Engine.QueueSize)
	assert.Equal(t, "ring", cfg.Engine.QueueBackend)
	assert.Equal(t, 1, cfg.Simulation.Instances)
}
