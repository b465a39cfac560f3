// pkg/config/env_config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/opd-ai/go-ringbreak/pkg/entity"
)

// EnvironmentConfig holds run settings read from RINGBREAK_* variables.
// Variables that change the simulation itself are applied by
// ApplyEnvironmentOverrides.
type EnvironmentConfig struct {
	ConfigPath string
	RunFor     time.Duration
	ExportPath string
}

// DefaultEnvFile is loaded by LoadConfigFromEnv when RINGBREAK_ENV_FILE is unset.
const DefaultEnvFile = ".env"

// LoadDotEnv loads variables from path without overriding ones already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfigFromEnv reads the run settings after loading the optional
// .env file.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	if err := LoadDotEnv(getEnvOrDefault("RINGBREAK_ENV_FILE", DefaultEnvFile)); err != nil {
		return nil, err
	}

	config := &EnvironmentConfig{
		ConfigPath: getEnvOrDefault("RINGBREAK_CONFIG", ""),
		RunFor:     getEnvAsDurationOrDefault("RINGBREAK_RUN_FOR", 0),
		ExportPath: getEnvOrDefault("RINGBREAK_PNG", ""),
	}

	if err := ValidateEnvironmentConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ValidateEnvironmentConfig checks run settings
func ValidateEnvironmentConfig(config *EnvironmentConfig) error {
	if config.RunFor < 0 {
		return fmt.Errorf("%w: RunFor cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnvironmentOverrides applies RINGBREAK_* variables that are set on
// top of a simulation configuration.
func ApplyEnvironmentOverrides(config *SimulationConfig) error {
	if config == nil {
		return errors.New("cannot apply overrides to nil config")
	}

	if _, ok := os.LookupEnv("RINGBREAK_GRAVITY"); ok {
		config.Physics.Gravity = getEnvAsFloatOrDefault("RINGBREAK_GRAVITY", config.Physics.Gravity)
	}
	if _, ok := os.LookupEnv("RINGBREAK_MAX_SPEED"); ok {
		config.Physics.MaxSpeed = getEnvAsFloatOrDefault("RINGBREAK_MAX_SPEED", config.Physics.MaxSpeed)
	}
	if _, ok := os.LookupEnv("RINGBREAK_TICK_RATE"); ok {
		config.Physics.TickRate = getEnvAsIntOrDefault("RINGBREAK_TICK_RATE", config.Physics.TickRate)
	}
	if _, ok := os.LookupEnv("RINGBREAK_RING_COUNT"); ok {
		config.Rings.Count = getEnvAsIntOrDefault("RINGBREAK_RING_COUNT", config.Rings.Count)
	}
	if _, ok := os.LookupEnv("RINGBREAK_ROTATION_SPEED"); ok {
		config.Rings.RotationSpeed = getEnvAsFloatOrDefault("RINGBREAK_ROTATION_SPEED", config.Rings.RotationSpeed)
	}
	if v, ok := os.LookupEnv("RINGBREAK_BOOST_POLICY"); ok {
		config.Boost.Policy = entity.BoostPolicy(v)
	}
	if v, ok := os.LookupEnv("RINGBREAK_BREAK_EFFECT"); ok {
		config.Rings.BreakEffect = entity.BreakEffect(v)
	}
	if _, ok := os.LookupEnv("RINGBREAK_AUDIO"); ok {
		config.Audio.Enabled = getEnvAsBoolOrDefault("RINGBREAK_AUDIO", config.Audio.Enabled)
	}
	if v, ok := os.LookupEnv("RINGBREAK_MIDI_FILE"); ok {
		config.Audio.MidiFile = v
	}
	if v, ok := os.LookupEnv("RINGBREAK_RENDERER"); ok {
		config.Render.Backend = v
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if v, err := time.ParseDuration(value); err == nil {
			return v
		}
	}
	return defaultValue
}
