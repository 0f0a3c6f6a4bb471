package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ai-chat-relay/internal/provider"
)

const (
	defaultPort         = 8787
	defaultMaxBodyBytes = 1 << 20 // 1 MiB
	defaultReadTimeout  = 30 * time.Second
	defaultMaxTokens    = 4096
)

// Config represents the application configuration parsed from YAML.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig defines listener configuration.
// A zero WriteTimeout leaves streamed responses unbounded.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LogConfig selects the slog level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ProvidersConfig catalogues the upstream providers.
type ProvidersConfig struct {
	Claude ProviderConfig `yaml:"claude"`
	OpenAI ProviderConfig `yaml:"openai"`
	Gemini ProviderConfig `yaml:"gemini"`
	Grok   ProviderConfig `yaml:"grok"`
}

// ProviderConfig captures routing overrides for a provider.
// APIKey is only used when the provider's environment variable is unset.
type ProviderConfig struct {
	APIKey    string  `yaml:"api_key"`
	BaseURL   string  `yaml:"base_url"`
	MaxTokens int     `yaml:"max_tokens"`
	Headers   Headers `yaml:"headers"`
}

// Headers contains additional HTTP headers to send with a provider request.
type Headers map[string]string

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         defaultPort,
			MaxBodyBytes: defaultMaxBodyBytes,
			ReadTimeout:  defaultReadTimeout,
		},
		Log: LogConfig{Level: "info"},
		Providers: ProvidersConfig{
			Claude: ProviderConfig{MaxTokens: defaultMaxTokens},
		},
	}
}

// Load reads YAML configuration from disk on top of Default and validates the result.
func Load(path string) (Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	for name, p := range c.Providers.byID() {
		if err := validateProvider(name, p); err != nil {
			return err
		}
	}
	if c.Providers.Claude.MaxTokens <= 0 {
		return fmt.Errorf("provider %s: max_tokens must be positive", provider.IDClaude)
	}
	return nil
}

// Provider returns the configuration block of the provider id.
func (p ProvidersConfig) Provider(id string) ProviderConfig {
	return p.byID()[id]
}

func (p ProvidersConfig) byID() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		provider.IDClaude: p.Claude,
		provider.IDOpenAI: p.OpenAI,
		provider.IDGemini: p.Gemini,
		provider.IDGrok:   p.Grok,
	}
}

// Credentials resolves API keys for every catalogued provider, preferring the
// environment variable named by the descriptor over the file's api_key.
func (c Config) Credentials(lookup func(string) (string, bool)) provider.Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	creds := make(provider.Credentials)
	for _, desc := range provider.Catalog() {
		if v, ok := lookup(desc.CredentialEnvKey); ok && strings.TrimSpace(v) != "" {
			creds[desc.ID] = strings.TrimSpace(v)
			continue
		}
		if key := strings.TrimSpace(c.Providers.Provider(desc.ID).APIKey); key != "" {
			creds[desc.ID] = key
		}
	}
	return creds
}

// ParseLevel maps a textual level to slog.Level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level %q must be one of debug, info, warn or error", level)
	}
}

func validateProvider(name string, p ProviderConfig) error {
	if p.BaseURL != "" && !strings.HasPrefix(p.BaseURL, "http://") && !strings.HasPrefix(p.BaseURL, "https://") {
		return fmt.Errorf("provider %s: base_url %q must be an http(s) URL", name, p.BaseURL)
	}
	if p.MaxTokens < 0 {
		return fmt.Errorf("provider %s: max_tokens must not be negative", name)
	}
	for headerKey := range p.Headers {
		if !isCanonicalHTTPHeader(headerKey) {
			return fmt.Errorf("provider %s: header %q is not a valid canonical HTTP header", name, headerKey)
		}
	}
	return nil
}

func isCanonicalHTTPHeader(header string) bool {
	if header == "" {
		return false
	}

	for _, r := range header {
		if !(r == '-' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
