package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"firestige.xyz/strix/internal/jtt1078"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
strix:
  server:
    listen: ":7605"
    read_buffer_size: 8192
  report:
    interval: 30s
    verbose_frames: 5
  replay:
    port: 7605
  log:
    level: "debug"
    file:
      enabled: true
      filename: "/tmp/strix-test.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Listen != ":7605" {
		t.Errorf("Expected listen :7605, got %s", cfg.Server.Listen)
	}
	if cfg.Server.ReadBufferSize != 8192 {
		t.Errorf("Expected read buffer 8192, got %d", cfg.Server.ReadBufferSize)
	}
	if cfg.Report.Interval != 30*time.Second {
		t.Errorf("Expected interval 30s, got %v", cfg.Report.Interval)
	}
	if cfg.Report.VerboseFrames != 5 {
		t.Errorf("Expected verbose frames 5, got %d", cfg.Report.VerboseFrames)
	}
	if cfg.Replay.Port != 7605 {
		t.Errorf("Expected replay port 7605, got %d", cfg.Replay.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if !cfg.Log.File.Enabled || cfg.Log.File.Filename != "/tmp/strix-test.log" {
		t.Errorf("Unexpected file appender config: %+v", cfg.Log.File)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
strix:
  log:
    level: "warn"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Listen != ":6605" {
		t.Errorf("Expected default listen :6605, got %s", cfg.Server.Listen)
	}
	if cfg.Server.ReadBufferSize != 4096 {
		t.Errorf("Expected default read buffer 4096, got %d", cfg.Server.ReadBufferSize)
	}
	if cfg.Server.MaxPayload != jtt1078.MaxPayloadSize {
		t.Errorf("Expected default max payload %d, got %d", jtt1078.MaxPayloadSize, cfg.Server.MaxPayload)
	}
	if cfg.Report.Interval != 10*time.Second {
		t.Errorf("Expected default interval 10s, got %v", cfg.Report.Interval)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.Log.Level)
	}
	if cfg.Log.File.MaxSize != 100 {
		t.Errorf("Expected default rotation size 100, got %d", cfg.Log.File.MaxSize)
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
strix:
  log:
    level: "shouting"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("Expected error for missing config file, got nil")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Server.Listen = "" }},
		{"zero read buffer", func(c *Config) { c.Server.ReadBufferSize = 0 }},
		{"zero max payload", func(c *Config) { c.Server.MaxPayload = 0 }},
		{"max payload above uint16", func(c *Config) { c.Server.MaxPayload = 70000 }},
		{"zero interval", func(c *Config) { c.Report.Interval = 0 }},
		{"negative verbose frames", func(c *Config) { c.Report.VerboseFrames = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
