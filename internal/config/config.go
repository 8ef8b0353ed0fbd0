package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"tichu-server/internal/util"
)

// Config provides configuration for the Tichu server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		Secret string `yaml:"secret" envconfig:"secret"`
		// TTLMinutes is how long a seat token is valid
		TTLMinutes int `yaml:"ttlMinutes" envconfig:"ttl_minutes"`
	} `yaml:"jwt"`
	Game struct {
		WinningScore     int `yaml:"winningScore" envconfig:"winning_score"`
		BombWindowMillis int `yaml:"bombWindowMillis" envconfig:"bomb_window_millis"`
		// Seed fixes the deck shuffles. Only useful for testing.
		Seed int64 `yaml:"seed" envconfig:"seed"`
	} `yaml:"game"`
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	cfg := Config{
		PGDSN:          "",
		MigrationsPath: "./sql",
	}

	cfg.JWT.TTLMinutes = 24 * 60
	cfg.Game.WinningScore = 1000
	cfg.Game.BombWindowMillis = 3000
	cfg.Log.Level = "info"

	return cfg
}

// Load will load the configuration
// The defaults are overridden by the YAML file, which is overridden by the environment
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("TICHU_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	case !os.IsNotExist(err):
		return err
	}

	if err := envconfig.Process("tichu", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}

// BombWindow returns how long bombs may be played after a trick closes
func (c Config) BombWindow() time.Duration {
	return time.Duration(c.Game.BombWindowMillis) * time.Millisecond
}

// TokenTTL returns how long a seat token is valid
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTLMinutes) * time.Minute
}
