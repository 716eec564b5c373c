// Package config implements the binding layer configuration.
package config

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/a8m/envsubst"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/common/logging"
)

// DefaultLogModule is the log level key applied to modules without an
// explicit level.
const DefaultLogModule = "default"

// Config is the top-level configuration structure.
type Config struct {
	// Namespace the world is deployed under.
	Namespace common.Namespace `yaml:"namespace"`
	// Path to the deployment manifest.
	Manifest string `yaml:"manifest"`

	RPC       RPCConfig       `yaml:"rpc"`
	Reconcile ReconcileConfig `yaml:"reconcile,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// RPCConfig is the world gateway configuration structure.
type RPCConfig struct {
	// Address of the world gateway.
	Address string `yaml:"address"`
	// Timeout of a single call.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ReconcileConfig is the read model reconciliation configuration structure.
type ReconcileConfig struct {
	// Number of read model queries before giving up.
	MaxAttempts int `yaml:"max_attempts,omitempty"`
	// Spacing between read model queries.
	Interval time.Duration `yaml:"interval,omitempty"`
}

// LogConfig is the logging configuration structure.
type LogConfig struct {
	// Log format (logfmt, json).
	Format string `yaml:"format,omitempty"`
	// Log level (debug, info, warn, error) per module, the "default" key
	// applies to every other module.
	Level map[string]string `yaml:"level,omitempty"`
}

// Levels returns the default log level and the per module log levels.
func (c *LogConfig) Levels() (logging.Level, map[string]logging.Level, error) {
	defaultLvl := logging.LevelInfo
	modules := make(map[string]logging.Level)
	for module, s := range c.Level {
		var lvl logging.Level
		if err := lvl.Set(s); err != nil {
			return 0, nil, fmt.Errorf("module '%s': %w", module, err)
		}
		if module == DefaultLogModule {
			defaultLvl = lvl
			continue
		}
		modules[module] = lvl
	}
	return defaultLvl, modules, nil
}

// LogFormat returns the log format.
func (c *LogConfig) LogFormat() (logging.Format, error) {
	var f logging.Format
	if err := f.Set(c.Format); err != nil {
		return 0, err
	}
	return f, nil
}

// Validate validates the configuration settings.
func (c *Config) Validate() error {
	var result *multierror.Error

	if !c.Namespace.IsValid() {
		result = multierror.Append(result, fmt.Errorf("namespace: %w", common.ErrMalformedNamespace))
	}
	if c.Manifest == "" {
		result = multierror.Append(result, fmt.Errorf("manifest: path must be set"))
	}
	if c.RPC.Address == "" {
		result = multierror.Append(result, fmt.Errorf("rpc.address: must be set"))
	}
	if c.RPC.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("rpc.timeout: negative timeout %s", c.RPC.Timeout))
	}
	if c.Reconcile.MaxAttempts < 1 {
		result = multierror.Append(result, fmt.Errorf("reconcile.max_attempts: must be positive, got %d", c.Reconcile.MaxAttempts))
	}
	if c.Reconcile.Interval < 0 {
		result = multierror.Append(result, fmt.Errorf("reconcile.interval: negative interval %s", c.Reconcile.Interval))
	}
	if _, err := c.Log.LogFormat(); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.format: %w", err))
	}
	if _, _, err := c.Log.Levels(); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}

	return result.ErrorOrNil()
}

// DefaultConfig returns the default configuration settings.
func DefaultConfig() Config {
	return Config{
		Namespace: common.DefaultNamespace,
		Manifest:  "manifest.json",
		RPC: RPCConfig{
			Address: "127.0.0.1:5050",
			Timeout: 30 * time.Second,
		},
		Reconcile: ReconcileConfig{
			MaxAttempts: 5,
			Interval:    2 * time.Second,
		},
		Log: LogConfig{
			Format: "logfmt",
			Level: map[string]string{
				DefaultLogModule: "info",
			},
		},
	}
}

// Parse parses the configuration, applying it on top of the defaults.
// Environment variables are substituted before parsing.
func Parse(data []byte) (*Config, error) {
	data, err := envsubst.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}
	return decode(data)
}

// Load loads the configuration from the given file.
func Load(cfgFile string) (*Config, error) {
	// Read the specified config file and substitute environment variables.
	data, err := envsubst.ReadFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file '%s': %w", cfgFile, err)
	}
	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", cfgFile, err)
	}
	return cfg, nil
}

func decode(data []byte) (*Config, error) {
	// Report error if any of the fields from the input are unknown.
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
