// Package config loads process settings from the environment and engine
// tuning from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds process configuration.
type Config struct {
	DataCSV       string // draw history export
	CacheDir      string // file store directory
	PostgresDSN   string // empty = no postgres
	ClickhouseDSN string // empty = no clickhouse
	LogLevel      string
	LogPretty     bool
	HTTPPort      int
	TuningFile    string
	Tuning        *Tuning
}

// Load reads .env (if present), the environment, and the tuning file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataCSV:       getEnv("LOTTO_DATA_CSV", "data/645.csv"),
		CacheDir:      getEnv("LOTTO_CACHE_DIR", "cache"),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		ClickhouseDSN: getEnv("CLICKHOUSE_DSN", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     getEnvAsBool("LOG_PRETTY", false),
		HTTPPort:      getEnvAsInt("HTTP_PORT", 8080),
		TuningFile:    getEnv("LOTTO_TUNING_FILE", "lotto.toml"),
	}

	tuning, err := LoadTuning(cfg.TuningFile)
	if err != nil {
		return nil, err
	}
	cfg.Tuning = tuning

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return errors.New("LOTTO_CACHE_DIR is required")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort)
	}
	if c.Tuning == nil {
		return errors.New("tuning not loaded")
	}
	return c.Tuning.Validate()
}

// LoadTuning parses path over DefaultTuning. A missing file yields the defaults.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tuning file: %w", err)
	}

	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return t, nil
}

// SaveTuning writes t to path.
func SaveTuning(path string, t *Tuning) error {
	data, err := toml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tuning: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tuning file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
