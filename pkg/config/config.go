// Package config holds global settings for the Defender service. All
// settings can be configured via environment variables or programmatically.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds global settings for the Defender core and its HTTP boundary.
type Config struct {
	// === Core Settings ===
	Port         string // HTTP listen port (default: "3000")
	ScenarioFile string // Optional path to a YAML scenario pack; empty = built-in pack

	// === Session Lifecycle ===
	// A live session that receives no events for AbandonTimeout is swept
	// to abandoned. SweepInterval controls how often the sweep runs.
	AbandonTimeout time.Duration
	SweepInterval  time.Duration

	// === Ingestion Limits ===
	MaxBatchSize int // Maximum events per ingest call (default: 50)
}

// NewDefaultConfig creates a Config with sensible defaults. All settings
// can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		Port:           GetEnv("DEFENDER_PORT", "3000"),
		ScenarioFile:   GetEnv("DEFENDER_SCENARIO_FILE", ""),
		AbandonTimeout: GetEnvDuration("DEFENDER_ABANDON_TIMEOUT_SECONDS", 1800*time.Second),
		SweepInterval:  GetEnvDuration("DEFENDER_SWEEP_INTERVAL_SECONDS", 300*time.Second),
		MaxBatchSize:   GetEnvInt("DEFENDER_MAX_BATCH_SIZE", 50),
	}
}

// NewDrillConfig creates a Config tuned for short classroom drills: idle
// sessions abandon quickly so the dashboard's session list stays clean.
func NewDrillConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.AbandonTimeout = 5 * time.Minute
	cfg.SweepInterval = 30 * time.Second
	return cfg
}

// Validate checks the configuration for values the core cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.AbandonTimeout <= 0 {
		problems = append(problems, "DEFENDER_ABANDON_TIMEOUT_SECONDS must be positive")
	}
	if c.SweepInterval <= 0 {
		problems = append(problems, "DEFENDER_SWEEP_INTERVAL_SECONDS must be positive")
	}
	if c.MaxBatchSize <= 0 {
		problems = append(problems, "DEFENDER_MAX_BATCH_SIZE must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Helper functions for environment variable parsing.
// These are exported for use by other packages.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a
// default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a
// default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvDuration reads a whole-seconds environment variable as a Duration
// or returns a default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return defaultValue
}
