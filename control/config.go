// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Server configuration: YAML loading over defaults, and a store that
// propagates updates to reload listeners.

package control

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// SavePoint triggers a snapshot after Seconds have elapsed since the last
// one if at least Changes writes happened.
type SavePoint struct {
	Seconds int `yaml:"seconds"`
	Changes int `yaml:"changes"`
}

// Config holds every server tunable.
type Config struct {
	Bind           string      `yaml:"bind"`
	Port           int         `yaml:"port"`
	MaxIdleTime    int         `yaml:"timeout"` // seconds; 0 disables idle eviction
	Databases      int         `yaml:"databases"`
	LogLevel       string      `yaml:"loglevel"`
	LogFile        string      `yaml:"logfile"`
	Save           []SavePoint `yaml:"save"`
	CronIntervalMs int         `yaml:"cron_interval_ms"`
	Poller         string      `yaml:"poller"`
	MetricsAddr    string      `yaml:"metrics_addr"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Bind:        "",
		Port:        6379,
		MaxIdleTime: 60 * 5,
		Databases:   16,
		LogLevel:    "notice",
		LogFile:     "stdout",
		Save: []SavePoint{
			{Seconds: 60 * 60, Changes: 1},
			{Seconds: 300, Changes: 100},
			{Seconds: 60, Changes: 10000},
		},
		CronIntervalMs: 1000,
		Poller:         "poll",
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are rejected.
// An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("config: invalid port %d", c.Port)
	case c.Databases < 1:
		return fmt.Errorf("config: invalid number of databases %d", c.Databases)
	case c.MaxIdleTime < 0:
		return fmt.Errorf("config: invalid timeout %d", c.MaxIdleTime)
	case c.CronIntervalMs <= 0:
		return fmt.Errorf("config: invalid cron interval %d", c.CronIntervalMs)
	}
	for _, sp := range c.Save {
		if sp.Seconds < 1 || sp.Changes < 0 {
			return fmt.Errorf("config: invalid save point %d %d", sp.Seconds, sp.Changes)
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ConfigStore holds the active config and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with cfg.
func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{config: cfg}
}

// Get returns the active config.
func (cs *ConfigStore) Get() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// Set validates and installs cfg, then calls every listener synchronously
// in registration order.
func (cs *ConfigStore) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.config = cfg
	listeners := slices.Clone(cs.listeners)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Reload re-reads path and installs the result.
func (cs *ConfigStore) Reload(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return cs.Set(cfg)
}

// OnReload registers a listener called after every Set.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
