// ABOUTME: PlatformConfig is the YAML-backed bootstrap configuration for a Platform.
// ABOUTME: Default() matches the source's compile-time constants; Load reads an override file.
package hapconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlatformConfig bounds one Platform instance's directory size, the priority
// the AMS runs at (client agents must request a priority below it), and the
// default stack size recorded in each agent's hub.Resources.
type PlatformConfig struct {
	MaxSubscribers    int      `yaml:"max_subscribers"`
	MaxPriority       int      `yaml:"max_priority"`
	DefaultStackSize  int      `yaml:"default_stack_size"`
	ReservedNicknames []string `yaml:"reserved_nicknames"`
}

// Default returns the platform's built-in bootstrap configuration: a 64-slot
// directory, client priorities 0 through 98 (99 is reserved for the AMS
// itself), and an 8-call default stack size hint.
func Default() PlatformConfig {
	return PlatformConfig{
		MaxSubscribers:   64,
		MaxPriority:      99,
		DefaultStackSize: 8,
		ReservedNicknames: []string{
			"AMS",
		},
	}
}

// Load reads a YAML override file at path and merges it over Default(): any
// field left zero-valued in the file falls back to the default. A missing
// file is not an error; Default() alone is returned.
func Load(path string) (PlatformConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return PlatformConfig{}, fmt.Errorf("read platform config %s: %w", path, err)
	}

	var override PlatformConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return PlatformConfig{}, fmt.Errorf("parse platform config %s: %w", path, err)
	}

	if override.MaxSubscribers != 0 {
		cfg.MaxSubscribers = override.MaxSubscribers
	}
	if override.MaxPriority != 0 {
		cfg.MaxPriority = override.MaxPriority
	}
	if override.DefaultStackSize != 0 {
		cfg.DefaultStackSize = override.DefaultStackSize
	}
	if len(override.ReservedNicknames) > 0 {
		cfg.ReservedNicknames = override.ReservedNicknames
	}

	return cfg, nil
}
