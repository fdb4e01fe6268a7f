package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/diskshell/internal/util"
	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration values for a shell session.
type Config struct {
	MountOptions
	LogLvl       util.LogLevel // Internal log level (Default warn)
	StorePath    string        // Path of the store file (Default "disk.txt")
	MaxStoreSize int64         // Store size cap in bytes; exceeding it ends the session (Default 10MB)
	MaxLinkDepth int           // Maximum links followed by a single read (Default 40)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	FsName       *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name         *string `yaml:"name,omitempty" json:"name,omitempty"`
	Debug        *bool   `yaml:"debug,omitempty" json:"debug,omitempty"`
	LogLvl       *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"` // CLI verbosity 1 (error) to 5 (trace)
	StorePath    *string `yaml:"store_path,omitempty" json:"store_path,omitempty"`
	MaxStoreSize *int64  `yaml:"max_store_size,omitempty" json:"max_store_size,omitempty"`
	MaxLinkDepth *int    `yaml:"max_link_depth,omitempty" json:"max_link_depth,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:       DefaultLogLvl,
		StorePath:    DefaultStorePath,
		MaxStoreSize: DefaultMaxStoreSize,
		MaxLinkDepth: DefaultMaxLinkDepth,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.StorePath != nil {
		c.StorePath = *override.StorePath
	}
	if override.MaxStoreSize != nil {
		c.MaxStoreSize = *override.MaxStoreSize
	}
	if override.MaxLinkDepth != nil {
		c.MaxLinkDepth = *override.MaxLinkDepth
	}
}

// VerboseToLogLevel maps CLI verbosity (1 error .. 5 trace) to an internal
// log level. Out of range values are clamped.
func VerboseToLogLevel(verbose int) util.LogLevel {
	verbose = min(max(verbose, ErrorVerbose), TraceVerbose)
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
