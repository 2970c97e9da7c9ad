package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservodojo/trainer/pkg/property"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./data/config.json", cfg.ConfigPath)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Seed)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TRAINER_CONFIG", "/etc/trainer/hotel.json")
	t.Setenv("TRAINER_SEED", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/trainer/hotel.json", cfg.ConfigPath)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.in)
	}
}

const minimalConfig = `{
  "guests": [
    {"full_name": "Anna Keller", "adult": true},
    {"full_name": "Jonas Keller", "adult": false}
  ],
  "room_categories": [
    {"id": "double", "name": "Double Room", "min_guests": 1, "max_guests": 2}
  ],
  "booking_window": {
    "earliest_arrival": "2027-01-01",
    "latest_arrival": "2027-03-01"
  }
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadModel(t *testing.T) {
	m, err := LoadModel(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Len(t, m.Guests, 2)
	assert.Len(t, m.RoomCategories, 1)

	// Omitted knobs come back as documented defaults.
	assert.Equal(t, 3, m.MaxServices)
	assert.Equal(t, 1, m.StayLength.MinNights)
	assert.Equal(t, 5, m.StayLength.MaxNights)
	assert.InDelta(t, 0.25, m.ChangeProbability, 1e-9)
}

func TestLoadModel_ExplicitZeros(t *testing.T) {
	// A configured zero is a decision, not an omission: it must survive
	// loading instead of being replaced by the default.
	path := writeConfig(t, `{
	  "guests": [{"full_name": "Anna Keller", "adult": true}],
	  "room_categories": [{"id": "single", "name": "Single Room", "min_guests": 1, "max_guests": 1}],
	  "booking_window": {"earliest_arrival": "2027-01-01", "latest_arrival": "2027-03-01"},
	  "max_services": 0,
	  "change_probability": 0,
	  "follow_up_probability": 0,
	  "default_service_probability": 0
	}`)

	m, err := LoadModel(path)
	require.NoError(t, err)
	assert.Zero(t, m.MaxServices)
	assert.Zero(t, m.ChangeProbability)
	assert.Zero(t, m.FollowUpProbability)
	assert.Zero(t, m.DefaultServiceProbability)
}

func TestLoadModel_UnknownField(t *testing.T) {
	path := writeConfig(t, `{"guests": [], "room_catgories": []}`)
	_, err := LoadModel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict JSON unmarshaling")
}

func TestLoadModel_InvalidConfig(t *testing.T) {
	// Structurally fine JSON, semantically broken: nobody is an adult.
	path := writeConfig(t, `{
	  "guests": [{"full_name": "Jonas Keller", "adult": false}],
	  "room_categories": [{"id": "single", "name": "Single Room", "min_guests": 1, "max_guests": 1}],
	  "booking_window": {"earliest_arrival": "2027-01-01", "latest_arrival": "2027-03-01"}
	}`)

	_, err := LoadModel(path)
	require.Error(t, err)
	var cfgErr *property.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.NotEmpty(t, cfgErr.Problems)
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}
