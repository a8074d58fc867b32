package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/natevvv/searoute/internal/logging"
	"github.com/natevvv/searoute/pkg/geometry"
	"github.com/natevvv/searoute/pkg/routing"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

const (
	DefaultAlgorithm = "astar"
	DefaultTimeout   = 30 * time.Second
)

// Config holds the runtime configuration loaded from environment variables.
type Config struct {
	Graph         string
	Algorithm     string
	Units         geometry.Unit
	LogLevel      slog.Level
	Timeout       time.Duration
	AvoidPassages []string
	SpeedKnots    float64
}

// LoadEnvFile loads variables from a .env file into the environment.
// Variables which are already set are not overridden, a missing file is no error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %v: %w", path, err)
	}
	return nil
}

// Load reads the SEAROUTE_* environment variables.
// Returns a ConfigError for any invalid value. The graph source is not required here,
// it may still be given on the command line (see Validate).
func Load() (*Config, error) {
	cfg := &Config{
		Graph:      os.Getenv("SEAROUTE_GRAPH"),
		Algorithm:  DefaultAlgorithm,
		Units:      geometry.Kilometers,
		LogLevel:   slog.LevelInfo,
		Timeout:    DefaultTimeout,
		SpeedKnots: routing.DefaultSpeedKnots,
	}

	if algorithm := os.Getenv("SEAROUTE_ALGORITHM"); algorithm != "" {
		cfg.Algorithm = strings.ToLower(algorithm)
	}

	if units := os.Getenv("SEAROUTE_UNITS"); units != "" {
		unit, err := geometry.ParseUnit(units)
		if err != nil {
			return nil, &ConfigError{Field: "SEAROUTE_UNITS", Message: err.Error()}
		}
		cfg.Units = unit
	}

	if level := os.Getenv("SEAROUTE_LOG_LEVEL"); level != "" {
		l, err := logging.ParseLevel(level)
		if err != nil {
			return nil, &ConfigError{Field: "SEAROUTE_LOG_LEVEL", Message: err.Error()}
		}
		cfg.LogLevel = l
	}

	if timeout := os.Getenv("SEAROUTE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, &ConfigError{Field: "SEAROUTE_TIMEOUT", Message: "must be a duration like 30s"}
		}
		cfg.Timeout = d
	}

	if speed := os.Getenv("SEAROUTE_SPEED_KNOTS"); speed != "" {
		knots, err := strconv.ParseFloat(speed, 64)
		if err != nil {
			return nil, &ConfigError{Field: "SEAROUTE_SPEED_KNOTS", Message: "must be a number"}
		}
		cfg.SpeedKnots = knots
	}

	if avoid := os.Getenv("SEAROUTE_AVOID"); avoid != "" {
		cfg.AvoidPassages = SplitList(avoid)
	}

	if err := cfg.validateValues(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate re-checks the fields on an already-constructed Config, including the graph source.
func (c *Config) Validate() error {
	var errs []error
	if c.Graph == "" {
		errs = append(errs, &ConfigError{Field: "SEAROUTE_GRAPH", Message: "required but not set"})
	}
	if err := c.validateValues(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) validateValues() error {
	switch c.Algorithm {
	case "dijkstra", "astar":
	default:
		return &ConfigError{Field: "SEAROUTE_ALGORITHM", Message: fmt.Sprintf("must be dijkstra or astar, got %q", c.Algorithm)}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "SEAROUTE_TIMEOUT", Message: "must be positive"}
	}
	if !(c.SpeedKnots > 0) || math.IsInf(c.SpeedKnots, 0) {
		return &ConfigError{Field: "SEAROUTE_SPEED_KNOTS", Message: "must be a positive number"}
	}
	return nil
}

// SplitList splits a comma separated list and drops empty entries.
func SplitList(s string) []string {
	var list []string
	for _, entry := range strings.Split(s, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			list = append(list, entry)
		}
	}
	return list
}
