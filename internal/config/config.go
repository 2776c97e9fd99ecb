// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/strix/internal/jtt1078"
	"firestige.xyz/strix/internal/log"
)

// Config is the top-level static configuration. It maps to the `strix:`
// root key in YAML; environment variables override via the key replacer
// (e.g. key "strix.server.listen" → env "STRIX_SERVER_LISTEN").
type Config struct {
	Server ServerConfig      `mapstructure:"server" yaml:"server"`
	Report ReportConfig      `mapstructure:"report" yaml:"report"`
	Replay ReplayConfig      `mapstructure:"replay" yaml:"replay"`
	Log    *log.LoggerConfig `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the TCP listener.
type ServerConfig struct {
	Listen         string `mapstructure:"listen" yaml:"listen"`
	ReadBufferSize int    `mapstructure:"read_buffer_size" yaml:"read_buffer_size"`
	// MaxPayload caps the payload length a frame header may declare.
	// Compliant devices stay at or below the protocol limit of 916; raise
	// this only for non-standard encoders.
	MaxPayload int `mapstructure:"max_payload" yaml:"max_payload"`
}

// ReportConfig configures the periodic console reporter.
type ReportConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	// VerboseFrames prints full frame detail for the first N frames of
	// each connection, matching how field engineers eyeball a new device.
	VerboseFrames int `mapstructure:"verbose_frames" yaml:"verbose_frames"`
}

// ReplayConfig configures offline pcap replay.
type ReplayConfig struct {
	// Port selects which TCP destination port in the capture carries the
	// media stream.
	Port uint16 `mapstructure:"port" yaml:"port"`
}

// configRoot is the wrapper matching the YAML structure `strix: ...`.
type configRoot struct {
	Strix Config `mapstructure:"strix"`
}

// Load loads configuration from path. A missing file is an error; use
// Default() when running without one.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Strix

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:         ":6605",
			ReadBufferSize: 4096,
			MaxPayload:     jtt1078.MaxPayloadSize,
		},
		Report: ReportConfig{
			Interval:      10 * time.Second,
			VerboseFrames: 3,
		},
		Replay: ReplayConfig{Port: 6605},
		Log:    log.DefaultConfig(),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("strix.server.listen", ":6605")
	v.SetDefault("strix.server.read_buffer_size", 4096)
	v.SetDefault("strix.server.max_payload", jtt1078.MaxPayloadSize)

	v.SetDefault("strix.report.interval", "10s")
	v.SetDefault("strix.report.verbose_frames", 3)

	v.SetDefault("strix.replay.port", 6605)

	v.SetDefault("strix.log.level", "info")
	v.SetDefault("strix.log.pattern", "%time [%level] %msg%field")
	v.SetDefault("strix.log.time", "2006-01-02 15:04:05")
	v.SetDefault("strix.log.file.enabled", false)
	v.SetDefault("strix.log.file.filename", "/var/log/strix/strix.log")
	v.SetDefault("strix.log.file.max_size", 100)
	v.SetDefault("strix.log.file.max_backups", 5)
	v.SetDefault("strix.log.file.max_age", 30)
	v.SetDefault("strix.log.file.compress", true)
}

// Validate checks values that would only fail deep inside the runtime.
func (cfg *Config) Validate() error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if cfg.Server.ReadBufferSize <= 0 {
		return fmt.Errorf("server.read_buffer_size must be positive, got %d", cfg.Server.ReadBufferSize)
	}
	if cfg.Server.MaxPayload <= 0 || cfg.Server.MaxPayload > 65535 {
		return fmt.Errorf("server.max_payload must be in 1..65535, got %d", cfg.Server.MaxPayload)
	}
	if cfg.Report.Interval <= 0 {
		return fmt.Errorf("report.interval must be positive, got %v", cfg.Report.Interval)
	}
	if cfg.Report.VerboseFrames < 0 {
		return fmt.Errorf("report.verbose_frames must not be negative, got %d", cfg.Report.VerboseFrames)
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if cfg.Log != nil && !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}
	return nil
}
