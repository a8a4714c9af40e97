package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/multistream"
)

// DestinationConfig is one output of the run command.
type DestinationConfig struct {
	// Name labels the destination in metrics (default: Path)
	Name string `mapstructure:"name"`
	// Path is "stdout", "stderr", "journal" or a file path, opened for appending
	Path string `mapstructure:"path"`
	// Level is a level name; empty means info
	Level string `mapstructure:"level"`
	// Async queues writes to this destination in the background
	Async bool `mapstructure:"async"`
	// BufferSize is the async queue size (default: 1000)
	BufferSize int `mapstructure:"buffer_size"`
}

// Config holds configuration for the run command
type Config struct {
	LogLevel     string              `mapstructure:"log_level"`
	MetricsAddr  string              `mapstructure:"metrics_addr"`
	Override     string              `mapstructure:"override"`
	Destinations []DestinationConfig `mapstructure:"destinations"`
}

var errNoPath = errors.New("destination has no path")

// loadConfig reads the config file named by the "config" key, then
// applies MULTISTREAM_* environment variables and bound flags.
func loadConfig(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("MULTISTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log_level", "info")

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := core.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Override != "" {
		if _, err := core.ParseLevel(c.Override); err != nil {
			return fmt.Errorf("override: %w", err)
		}
	}
	if len(c.Destinations) == 0 {
		c.Destinations = []DestinationConfig{{Path: "stdout"}}
	}
	for i := range c.Destinations {
		d := &c.Destinations[i]
		if d.Path == "" {
			return fmt.Errorf("destinations[%d]: %w", i, errNoPath)
		}
		if d.Name == "" {
			d.Name = d.Path
		}
		if d.BufferSize < 0 {
			return fmt.Errorf("destinations[%d] (%s): negative buffer_size", i, d.Name)
		}
		if d.Level != "" {
			if _, err := core.ParseLevel(d.Level); err != nil {
				return fmt.Errorf("destinations[%d] (%s): %w", i, d.Name, err)
			}
		}
	}
	return nil
}

// parseDestFlag parses "path=level" or "path" as given to --dest.
func parseDestFlag(s string) DestinationConfig {
	path, level, _ := strings.Cut(s, "=")
	return DestinationConfig{Name: path, Path: path, Level: level}
}

// spec turns a destination into the matching multistream spec.
func (d DestinationConfig) spec(sink io.Writer) multistream.Spec {
	if d.Level == "" {
		return multistream.Default{Sink: sink}
	}
	return multistream.BySymbolicLevel{Sink: sink, Name: d.Level}
}
