package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/reservodojo/trainer/pkg/property"
)

// Config is the process runtime configuration, read from the environment.
// The property model itself lives in the JSON document at ConfigPath.
type Config struct {
	ConfigPath  string `env:"TRAINER_CONFIG" envDefault:"./data/config.json"`
	DataDir     string `env:"TRAINER_DATA_DIR" envDefault:"./data"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	// Seed fixes the scenario sequence for reproducible sessions.
	// Zero picks a time-based seed.
	Seed int64 `env:"TRAINER_SEED" envDefault:"0"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadModel reads and validates the property configuration. Unknown keys are
// rejected so typos surface at load time instead of silently changing the
// generated scenarios. The document is decoded over a default-populated
// model: absent keys keep their defaults, explicit zeros are kept as zeros.
func LoadModel(path string) (*property.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read property config %s: %w", path, err)
	}

	m := property.DefaultModel()
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("property config %s failed strict JSON unmarshaling: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
