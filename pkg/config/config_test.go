package config

import (
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Port != "3000" {
		t.Errorf("Port = %s, want 3000", cfg.Port)
	}
	if cfg.ScenarioFile != "" {
		t.Errorf("ScenarioFile = %s, want empty (built-in pack)", cfg.ScenarioFile)
	}
	if cfg.AbandonTimeout != 30*time.Minute {
		t.Errorf("AbandonTimeout = %v, want 30m", cfg.AbandonTimeout)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval = %v, want 5m", cfg.SweepInterval)
	}
	if cfg.MaxBatchSize != 50 {
		t.Errorf("MaxBatchSize = %d, want 50", cfg.MaxBatchSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestNewDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DEFENDER_PORT", "8080")
	t.Setenv("DEFENDER_SCENARIO_FILE", "/etc/defender/pack.yaml")
	t.Setenv("DEFENDER_ABANDON_TIMEOUT_SECONDS", "600")
	t.Setenv("DEFENDER_SWEEP_INTERVAL_SECONDS", "60")
	t.Setenv("DEFENDER_MAX_BATCH_SIZE", "10")

	cfg := NewDefaultConfig()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.ScenarioFile != "/etc/defender/pack.yaml" {
		t.Errorf("ScenarioFile = %s, want override", cfg.ScenarioFile)
	}
	if cfg.AbandonTimeout != 10*time.Minute {
		t.Errorf("AbandonTimeout = %v, want 10m", cfg.AbandonTimeout)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("SweepInterval = %v, want 1m", cfg.SweepInterval)
	}
	if cfg.MaxBatchSize != 10 {
		t.Errorf("MaxBatchSize = %d, want 10", cfg.MaxBatchSize)
	}
}

func TestNewDrillConfig(t *testing.T) {
	cfg := NewDrillConfig()

	if cfg.AbandonTimeout != 5*time.Minute {
		t.Errorf("AbandonTimeout = %v, want 5m", cfg.AbandonTimeout)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("SweepInterval = %v, want 30s", cfg.SweepInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("drill config failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.AbandonTimeout = 0
	cfg.MaxBatchSize = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted a broken config")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("DEFENDER_TEST_STR", "value")
	t.Setenv("DEFENDER_TEST_BOOL", "true")
	t.Setenv("DEFENDER_TEST_INT", "42")
	t.Setenv("DEFENDER_TEST_BAD_INT", "not-a-number")
	t.Setenv("DEFENDER_TEST_SECS", "90")

	if got := GetEnv("DEFENDER_TEST_STR", "d"); got != "value" {
		t.Errorf("GetEnv = %s, want value", got)
	}
	if got := GetEnv("DEFENDER_TEST_MISSING", "d"); got != "d" {
		t.Errorf("GetEnv default = %s, want d", got)
	}
	if got := GetEnvBool("DEFENDER_TEST_BOOL", false); !got {
		t.Error("GetEnvBool = false, want true")
	}
	if got := GetEnvInt("DEFENDER_TEST_INT", 0); got != 42 {
		t.Errorf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("DEFENDER_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("GetEnvInt bad value = %d, want default 7", got)
	}
	if got := GetEnvDuration("DEFENDER_TEST_SECS", time.Second); got != 90*time.Second {
		t.Errorf("GetEnvDuration = %v, want 90s", got)
	}
	if got := GetEnvDuration("DEFENDER_TEST_BAD_INT", time.Second); got != time.Second {
		t.Errorf("GetEnvDuration bad value = %v, want default", got)
	}
}
