package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/claude/healthlens/internal/analysis"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Store     StoreConfig     `yaml:"store"`
	Analysis  analysis.Config `yaml:"analysis"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// StoreConfig selects the SQLite database holding analysis runs. An empty DSN
// keeps runs in memory.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8000},
		Tailscale: TailscaleConfig{Hostname: "healthlens"},
		Analysis:  analysis.DefaultConfig(),
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Env vars use the prefix HEALTHLENS_:
//
//	HEALTHLENS_SERVER_HOST, HEALTHLENS_SERVER_PORT, HEALTHLENS_STORE_DSN,
//	HEALTHLENS_TAILSCALE_ENABLED, HEALTHLENS_TAILSCALE_HOSTNAME,
//	HEALTHLENS_ANALYSIS_WINDOW, HEALTHLENS_ANALYSIS_Z_THRESHOLD
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it is set and returns Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEALTHLENS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("HEALTHLENS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HEALTHLENS_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("HEALTHLENS_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("HEALTHLENS_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("HEALTHLENS_ANALYSIS_WINDOW"); v != "" {
		if w, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Window = w
		}
	}
	if v := os.Getenv("HEALTHLENS_ANALYSIS_Z_THRESHOLD"); v != "" {
		if z, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.ZThreshold = z
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}
