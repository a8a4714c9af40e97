package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/multistream"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeFile(t, "multistream.toml", `
log_level = "warn"
metrics_addr = ":9100"

[[destinations]]
path = "stdout"

[[destinations]]
name = "alerts"
path = "/var/log/alerts.log"
level = "error"
async = true
buffer_size = 64
`)

	v := viper.New()
	v.Set("config", path)
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.LogLevel != "warn" || cfg.MetricsAddr != ":9100" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Destinations) != 2 {
		t.Fatalf("destinations = %+v", cfg.Destinations)
	}
	if cfg.Destinations[0].Name != "stdout" {
		t.Errorf("default name = %q, want path", cfg.Destinations[0].Name)
	}
	if cfg.Destinations[1].Name != "alerts" || cfg.Destinations[1].Level != "error" {
		t.Errorf("second destination = %+v", cfg.Destinations[1])
	}
	if !cfg.Destinations[1].Async || cfg.Destinations[1].BufferSize != 64 {
		t.Errorf("async settings not decoded: %+v", cfg.Destinations[1])
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if len(cfg.Destinations) != 1 || cfg.Destinations[0].Path != "stdout" {
		t.Errorf("Destinations = %+v, want stdout only", cfg.Destinations)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MULTISTREAM_LOG_LEVEL", "debug")

	cfg, err := loadConfig(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug from env", cfg.LogLevel)
	}
}

func TestLoadConfig_UnknownLevel(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
destinations:
  - path: stdout
    level: loud
`)

	v := viper.New()
	v.Set("config", path)
	_, err := loadConfig(v)
	if !errors.Is(err, core.ErrUnknownLevel) {
		t.Fatalf("loadConfig() error = %v, want ErrUnknownLevel", err)
	}
}

func TestLoadConfig_MissingPath(t *testing.T) {
	path := writeFile(t, "bad.json", `{"destinations":[{"level":"info"}]}`)

	v := viper.New()
	v.Set("config", path)
	if _, err := loadConfig(v); !errors.Is(err, errNoPath) {
		t.Fatalf("loadConfig() error = %v, want errNoPath", err)
	}
}

func TestParseDestFlag(t *testing.T) {
	d := parseDestFlag("app.log=debug")
	if d.Path != "app.log" || d.Level != "debug" || d.Name != "app.log" {
		t.Errorf("parseDestFlag = %+v", d)
	}

	d = parseDestFlag("stderr")
	if d.Path != "stderr" || d.Level != "" {
		t.Errorf("parseDestFlag = %+v", d)
	}
}

func TestDestinationConfig_Spec(t *testing.T) {
	if _, ok := (DestinationConfig{Path: "x"}).spec(os.Stdout).(multistream.Default); !ok {
		t.Error("destination without level should use Default")
	}
	s, ok := (DestinationConfig{Path: "x", Level: "warn"}).spec(os.Stdout).(multistream.BySymbolicLevel)
	if !ok || s.Name != "warn" {
		t.Errorf("spec = %#v", s)
	}
}
