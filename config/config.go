// Package config loads the server configuration from anther.yaml,
// environment overrides, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "anther.yaml"
	homeConfigName    = "config.yaml"

	defaultAddr            = "127.0.0.1:8765"
	defaultWorkspace       = "workspace"
	defaultHistoryDSN      = "anther.db"
	defaultHealthCron      = "*/5 * * * *"
	defaultHealthThreshold = 3
	defaultReviewLineLimit = 79
	defaultMaxBodyBytes    = 1 << 20
)

// Config is the resolved server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Tools   ToolsConfig   `yaml:"tools"`
	History HistoryConfig `yaml:"history"`
	Health  HealthConfig  `yaml:"health"`
	Review  ReviewConfig  `yaml:"review"`
	Otel    OtelConfig    `yaml:"otel"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	CORSOrigin   string `yaml:"cors_origin"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// ToolsConfig holds settings consumed by the built-in tools.
type ToolsConfig struct {
	Workspace      string `yaml:"workspace"`
	WeatherAPIKey  string `yaml:"weather_api_key"`
	WeatherBaseURL string `yaml:"weather_base_url"`
	QuoteBaseURL   string `yaml:"quote_base_url"`
}

// HistoryConfig controls invocation history persistence.
type HistoryConfig struct {
	Disabled bool   `yaml:"disabled"`
	DSN      string `yaml:"dsn"`
}

// HealthConfig controls the background probe sweep.
type HealthConfig struct {
	Cron      string `yaml:"cron"`
	Threshold int    `yaml:"threshold"`
}

// ReviewConfig controls the code_review tool.
type ReviewConfig struct {
	LineLimit int          `yaml:"line_limit"`
	Rules     []CustomRule `yaml:"rules"`
}

// CustomRule declares an additional regexp-based review rule.
type CustomRule struct {
	ID      string `yaml:"id"`
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message,omitempty"`
}

// OtelConfig controls trace export. An empty endpoint disables export.
type OtelConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         defaultAddr,
			CORSOrigin:   "*",
			MaxBodyBytes: defaultMaxBodyBytes,
		},
		Tools: ToolsConfig{
			Workspace: defaultWorkspace,
		},
		History: HistoryConfig{
			DSN: defaultHistoryDSN,
		},
		Health: HealthConfig{
			Cron:      defaultHealthCron,
			Threshold: defaultHealthThreshold,
		},
		Review: ReviewConfig{
			LineLimit: defaultReviewLineLimit,
		},
	}
}

// DiscoverPath resolves the config file location with first-match semantics:
// an explicit path (which must exist), anther.yaml in the working directory,
// then ~/.anther/config.yaml.
func DiscoverPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverPathFrom is a testable variant of DiscoverPath.
func DiscoverPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, ".anther", homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// If explicit path is set, not found is an error.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load resolves and parses the configuration. A missing file is not an
// error: defaults plus environment overrides apply.
func Load(explicitPath string) (Config, error) {
	path, found, err := DiscoverPath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if found {
		loaded, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, loaded)
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// merge layers file values over defaults; zero values keep the default.
func merge(base, over Config) Config {
	out := base
	if over.Server.Addr != "" {
		out.Server.Addr = over.Server.Addr
	}
	if over.Server.CORSOrigin != "" {
		out.Server.CORSOrigin = over.Server.CORSOrigin
	}
	if over.Server.MaxBodyBytes > 0 {
		out.Server.MaxBodyBytes = over.Server.MaxBodyBytes
	}
	if over.Tools.Workspace != "" {
		out.Tools.Workspace = over.Tools.Workspace
	}
	if over.Tools.WeatherAPIKey != "" {
		out.Tools.WeatherAPIKey = over.Tools.WeatherAPIKey
	}
	if over.Tools.WeatherBaseURL != "" {
		out.Tools.WeatherBaseURL = over.Tools.WeatherBaseURL
	}
	if over.Tools.QuoteBaseURL != "" {
		out.Tools.QuoteBaseURL = over.Tools.QuoteBaseURL
	}
	out.History.Disabled = over.History.Disabled
	if over.History.DSN != "" {
		out.History.DSN = over.History.DSN
	}
	if over.Health.Cron != "" {
		out.Health.Cron = over.Health.Cron
	}
	if over.Health.Threshold > 0 {
		out.Health.Threshold = over.Health.Threshold
	}
	if over.Review.LineLimit > 0 {
		out.Review.LineLimit = over.Review.LineLimit
	}
	if len(over.Review.Rules) > 0 {
		out.Review.Rules = over.Review.Rules
	}
	if over.Otel.Endpoint != "" {
		out.Otel.Endpoint = over.Otel.Endpoint
	}
	return out
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ANTHER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ANTHER_WORKSPACE"); v != "" {
		cfg.Tools.Workspace = v
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.Tools.WeatherAPIKey = v
	}
	if v := os.Getenv("ANTHER_OTLP_ENDPOINT"); v != "" {
		cfg.Otel.Endpoint = v
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("config: server.max_body_bytes must be positive")
	}
	if strings.TrimSpace(c.Tools.Workspace) == "" {
		return errors.New("config: tools.workspace must not be empty")
	}
	if c.Health.Threshold <= 0 {
		return errors.New("config: health.threshold must be positive")
	}
	if c.Review.LineLimit <= 0 {
		return errors.New("config: review.line_limit must be positive")
	}
	for _, rule := range c.Review.Rules {
		if strings.TrimSpace(rule.ID) == "" {
			return errors.New("config: review rule id must not be empty")
		}
		if strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("config: review rule %q has no pattern", rule.ID)
		}
	}
	return nil
}
