// Package config holds the engine's runtime configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls engine-wide behaviour that isn't part of the MPTCP
// protocol state machine itself.
type Config struct {
	// Debug is loaded from the "debug" key. No code in this module reads
	// it; the engine does no per-packet tracing.
	Debug bool `yaml:"debug"`
	// ScratchPoolSize is loaded from the "scratch_pool_size" key. No code in
	// this module passes it to the mptcp scratch pool, which NewSession
	// creates with its default size of 32 buffers.
	ScratchPoolSize int `yaml:"scratch_pool_size"`
	// DeterministicSeed, when non-zero, seeds the random source so that
	// local_key / local_rand draws are reproducible across test runs.
	// Zero means "use crypto/rand".
	DeterministicSeed int64 `yaml:"deterministic_seed"`
	// PendingVarsCapacity bounds the variable-binding FIFO. Zero means
	// unbounded.
	PendingVarsCapacity int `yaml:"pending_vars_capacity"`
}

// AppConfig is the process-wide configuration. ReadConfig does not set it;
// the host tool assigns it once at startup, mirroring config.AppConfig in
// the teacher repo's test harnesses.
var AppConfig *Config

// DefaultConfig returns the engine's zero-config defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:               false,
		ScratchPoolSize:     32,
		DeterministicSeed:   0,
		PendingVarsCapacity: 0,
	}
}

// ReadConfig loads a YAML config file, overlaying it onto DefaultConfig.
// A missing file is not an error; callers get defaults back.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
