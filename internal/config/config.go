package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "COMBATSIM"

const (
	keyServerAddress     = "server.address"
	keyDBPath            = "db.path"
	keyCatalogPath       = "catalog.path"
	keyMaxRounds         = "engine.max_rounds"
	keyHealThreshold     = "ai.heal_threshold"
	keyBuffRounds        = "ai.buff_rounds"
	keyBatchWorkers      = "batch.workers"
	keyMaxBatchRuns      = "batch.max_runs"
	keySimulationTimeout = "simulation.timeout"
	keyLogLevel          = "log.level"
)

// LoadedConfig holds the server and simulation settings.
type LoadedConfig struct {
	ServerAddress string
	DBPath        string
	// CatalogPath is empty for the embedded catalog.
	CatalogPath   string
	MaxRounds     int
	HealThreshold float64
	// BuffRounds is the last round the party opens with buffs; 0 disables them.
	BuffRounds        int
	BatchWorkers      int
	MaxBatchRuns      int
	SimulationTimeout time.Duration
	LogLevel          string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyServerAddress, ":8080")
	v.SetDefault(keyDBPath, "./data/combatsim.db")
	v.SetDefault(keyCatalogPath, "")
	v.SetDefault(keyMaxRounds, 50)
	v.SetDefault(keyHealThreshold, 0.25)
	v.SetDefault(keyBuffRounds, 3)
	v.SetDefault(keyBatchWorkers, 4)
	v.SetDefault(keyMaxBatchRuns, 500)
	v.SetDefault(keySimulationTimeout, "30s")
	v.SetDefault(keyLogLevel, "info")
}

// LoadConfig reads the configuration file at path (JSON or YAML by
// extension) and applies COMBATSIM_* environment overrides, e.g.
// COMBATSIM_SERVER_ADDRESS. With an empty path an optional combatsim.*
// file in the working directory is used.
func LoadConfig(path string) (*LoadedConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("combatsim")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &LoadedConfig{
		ServerAddress:     strings.TrimSpace(v.GetString(keyServerAddress)),
		DBPath:            strings.TrimSpace(v.GetString(keyDBPath)),
		CatalogPath:       strings.TrimSpace(v.GetString(keyCatalogPath)),
		MaxRounds:         v.GetInt(keyMaxRounds),
		HealThreshold:     v.GetFloat64(keyHealThreshold),
		BuffRounds:        v.GetInt(keyBuffRounds),
		BatchWorkers:      v.GetInt(keyBatchWorkers),
		MaxBatchRuns:      v.GetInt(keyMaxBatchRuns),
		SimulationTimeout: v.GetDuration(keySimulationTimeout),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString(keyLogLevel))),
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *LoadedConfig) validate() error {
	if c.ServerAddress == "" {
		c.ServerAddress = ":8080"
	}
	if c.DBPath == "" {
		return errors.New("db.path is empty")
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("engine.max_rounds must be positive, got %d", c.MaxRounds)
	}
	if c.HealThreshold <= 0 || c.HealThreshold >= 1 {
		return fmt.Errorf("ai.heal_threshold must be in (0,1), got %v", c.HealThreshold)
	}
	if c.BuffRounds < 0 {
		return fmt.Errorf("ai.buff_rounds must not be negative, got %d", c.BuffRounds)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.BatchWorkers)
	}
	if c.MaxBatchRuns < 1 {
		return fmt.Errorf("batch.max_runs must be positive, got %d", c.MaxBatchRuns)
	}
	if c.SimulationTimeout <= 0 {
		return fmt.Errorf("simulation.timeout must be positive, got %s", c.SimulationTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}
