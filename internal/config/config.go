package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported model providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultAddr        = ":8080"
)

// Config represents the complete heritage configuration
type Config struct {
	Provider     string            `yaml:"provider"`
	Model        string            `yaml:"model"`
	BaseURL      string            `yaml:"base_url"`
	Temperature  float32           `yaml:"temperature"` // 0 leaves the provider default
	MaxTokens    int               `yaml:"max_tokens"`
	SystemPrompt string            `yaml:"system_prompt"`
	LogLevel     string            `yaml:"log_level"`
	Secrets      map[string]string `yaml:"secrets"` // Values support ${VAR} expansion

	Tools  ToolsConfig  `yaml:"tools"`
	Retry  RetryConfig  `yaml:"retry"`
	Server ServerConfig `yaml:"server"`
	Hooks  HooksConfig  `yaml:"hooks"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// ToolsConfig controls tool dispatch and the mock archive.
type ToolsConfig struct {
	ExecutionMode        string        `yaml:"execution_mode"` // sequential or mixed
	TextRecordLatency    time.Duration `yaml:"text_record_latency"`
	VisualizationLatency time.Duration `yaml:"visualization_latency"`
}

// RetryConfig bounds retries of failed model calls.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// ServerConfig contains web server settings
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

// HooksConfig contains hook-related settings
type HooksConfig struct {
	// ToolConfirm lists tools that need operator confirmation in the terminal.
	// An entry of "*" confirms every tool.
	ToolConfirm []string `yaml:"tool_confirm"`
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Load reads and parses the YAML config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	cfg.Path = path
	cfg.Secrets = ExpandEnvMap(cfg.Secrets)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Locations returns the paths searched by LoadWithDefaults, in order.
func Locations() []string {
	locations := []string{
		"./heritage.yaml",
		"./configs/heritage.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "heritage", "heritage.yaml"))
	}
	return append(locations, "/etc/heritage/heritage.yaml")
}

// LoadWithDefaults loads the first config file found in Locations. No file
// is not an error: defaults are returned.
func LoadWithDefaults() (*Config, error) {
	for _, loc := range Locations() {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc)
		}
	}
	return Default(), nil
}

// Validate fills defaults and checks config correctness
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	switch c.Provider {
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = DefaultOpenAIModel
		}
	case ProviderGemini:
		if c.Model == "" {
			c.Model = DefaultGeminiModel
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown provider %q (expected openai, gemini or mock)", c.Provider)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative")
	}

	switch strings.ToLower(c.Tools.ExecutionMode) {
	case "":
		c.Tools.ExecutionMode = "sequential"
	case "sequential", "mixed":
		c.Tools.ExecutionMode = strings.ToLower(c.Tools.ExecutionMode)
	default:
		return fmt.Errorf("tools.execution_mode %q must be sequential or mixed", c.Tools.ExecutionMode)
	}
	if c.Tools.TextRecordLatency < 0 || c.Tools.VisualizationLatency < 0 {
		return fmt.Errorf("tool latencies cannot be negative")
	}
	if c.Tools.TextRecordLatency == 0 {
		c.Tools.TextRecordLatency = time.Second
	}
	if c.Tools.VisualizationLatency == 0 {
		c.Tools.VisualizationLatency = 1500 * time.Millisecond
	}

	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts cannot be negative")
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 500 * time.Millisecond
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 4 * time.Second
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay %s is shorter than retry.base_delay %s", c.Retry.MaxDelay, c.Retry.BaseDelay)
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 2 * time.Minute
	}

	return nil
}

// Secret returns a named credential from the secrets section, falling back to
// the process environment. Values are trimmed; blank counts as absent.
func (c *Config) Secret(key string) (string, bool) {
	if v := strings.TrimSpace(c.Secrets[key]); v != "" {
		return v, true
	}
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v, true
	}
	return "", false
}
