package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "./data/combatsim.db", cfg.DBPath)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, 50, cfg.MaxRounds)
	assert.InDelta(t, 0.25, cfg.HealThreshold, 1e-9)
	assert.Equal(t, 3, cfg.BuffRounds)
	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, 500, cfg.MaxBatchRuns)
	assert.Equal(t, 30*time.Second, cfg.SimulationTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestYAMLFile(t *testing.T) {
	path := writeFile(t, "combatsim.yaml", `
server:
  address: ":9090"
engine:
  max_rounds: 20
ai:
  heal_threshold: 0.4
simulation:
  timeout: 5s
log:
  level: DEBUG
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, 20, cfg.MaxRounds)
	assert.InDelta(t, 0.4, cfg.HealThreshold, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.SimulationTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestJSONFileAndEnvOverride(t *testing.T) {
	path := writeFile(t, "combatsim.json", `{"batch": {"workers": 2, "max_runs": 10}, "db": {"path": "/tmp/a.db"}}`)
	t.Setenv("COMBATSIM_BATCH_WORKERS", "8")
	t.Setenv("COMBATSIM_CATALOG_PATH", "/etc/catalog.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, 10, cfg.MaxBatchRuns)
	assert.Equal(t, "/tmp/a.db", cfg.DBPath)
	assert.Equal(t, "/etc/catalog.yaml", cfg.CatalogPath)
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"rounds":    "engine:\n  max_rounds: 0\n",
		"threshold": "ai:\n  heal_threshold: 1.5\n",
		"workers":   "batch:\n  workers: 0\n",
		"timeout":   "simulation:\n  timeout: -1s\n",
		"level":     "log:\n  level: loud\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "combatsim.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestZeroBuffRoundsIsKept(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "combatsim.yaml", "ai:\n  buff_rounds: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.BuffRounds)

	_, err = LoadConfig(writeFile(t, "combatsim.yaml", "ai:\n  buff_rounds: -2\n"))
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
