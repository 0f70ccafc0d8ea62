package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:37740" {
		t.Errorf("ListenAddr = %s", cfg.ListenAddr())
	}
	if cfg.State.PersistInterval() != 5*time.Minute {
		t.Errorf("persist interval = %v, want 5m", cfg.State.PersistInterval())
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg != Default() {
		t.Error("empty path should return defaults")
	}
}

func TestLoadSparseFileBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"port":4242}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 4242 {
		t.Errorf("port = %d, want 4242", cfg.Server.Port)
	}
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("bind not backfilled: %s", cfg.Server.Bind)
	}
	if cfg.Estimator.MaxHistory != 1000 {
		t.Errorf("estimator defaults not backfilled: %+v", cfg.Estimator)
	}
	if cfg.Scheduler.UrgencyWeight != 0.4 {
		t.Errorf("scheduler defaults not backfilled: %+v", cfg.Scheduler)
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("TEMPO_TEST_PORT", "5151")
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"server":{"port":${TEMPO_TEST_PORT:9999},"bind":"${TEMPO_TEST_BIND:0.0.0.0}"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5151 {
		t.Errorf("env var not substituted: port = %d", cfg.Server.Port)
	}
	if cfg.Server.Bind != "0.0.0.0" {
		t.Errorf("default not substituted: bind = %s", cfg.Server.Bind)
	}
}

func TestLoadRejectsBadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"scheduler":{"urgency_weight":0.9,"importance_weight":0.9,"effort_weight":0.1,"deadline_weight":0.1}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for weights not summing to 1")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("explicitly named but missing config file should error")
	}
}
