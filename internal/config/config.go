// Package config holds all tempo configuration: explicit structs with
// named fields and documented defaults, validated at construction rather
// than defaulted ad hoc at each access.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"tempo/internal/estimate"
	"tempo/internal/memory"
	"tempo/internal/schedule"
)

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `json:"server"`
	State     StateConfig     `json:"state"`
	Estimator estimate.Config `json:"estimator"`
	Scheduler schedule.Config `json:"scheduler"`
	Memory    memory.Config   `json:"memory"`
}

type ServerConfig struct {
	Bind string `json:"bind"`
	Port int    `json:"port"`
}

type StateConfig struct {
	// Path of the state file; empty resolves to ~/.tempo/state.json.
	Path string `json:"path"`
	// PersistIntervalSeconds between periodic snapshots.
	PersistIntervalSeconds int `json:"persist_interval_seconds"`
}

// PersistInterval returns the snapshot interval as a duration.
func (s StateConfig) PersistInterval() time.Duration {
	return time.Duration(s.PersistIntervalSeconds) * time.Second
}

// Default returns a Config with every knob at its documented default.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37740,
		},
		State: StateConfig{
			Path:                   "", // resolved at runtime via state.DefaultPath()
			PersistIntervalSeconds: 300,
		},
		Estimator: estimate.DefaultConfig(),
		Scheduler: schedule.DefaultConfig(),
		Memory:    memory.DefaultConfig(),
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Validate rejects configurations the components cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	if c.State.PersistIntervalSeconds <= 0 {
		return fmt.Errorf("config: persist interval must be positive")
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file, substitutes ${VAR} and ${VAR:default}
// environment references, fills unset fields from Default, and validates.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})

	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fillDefaults backfills zero-valued fields so a sparse config file only
// has to name what it changes.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Server.Bind == "" {
		c.Server.Bind = d.Server.Bind
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.State.PersistIntervalSeconds == 0 {
		c.State.PersistIntervalSeconds = d.State.PersistIntervalSeconds
	}
	if c.Estimator == (estimate.Config{}) {
		c.Estimator = d.Estimator
	}
	if c.Scheduler == (schedule.Config{}) {
		c.Scheduler = d.Scheduler
	}
	if c.Memory == (memory.Config{}) {
		c.Memory = d.Memory
	}
}
