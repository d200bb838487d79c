package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admission AdmissionConfig `mapstructure:"admission"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
	LogLevel    string `mapstructure:"log_level"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LimitConfig is one fixed-window budget. Window is a Go duration string.
type LimitConfig struct {
	Limit  int    `mapstructure:"limit" json:"limit"`
	Window string `mapstructure:"window" json:"window"`
}

func (l LimitConfig) WindowDuration() (time.Duration, error) {
	d, err := time.ParseDuration(l.Window)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", l.Window, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("window %q must be positive", l.Window)
	}
	return d, nil
}

type QuotaConfig struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

type SignatureConfig struct {
	SkipPaths        []string `mapstructure:"skip_paths"`
	ProtectedPaths   []string `mapstructure:"protected_paths"`
	ProtectedMethods []string `mapstructure:"protected_methods"`
	MaxSkewSeconds   int      `mapstructure:"max_skew_seconds"`
}

type CacheConfig struct {
	MaxEntries int    `mapstructure:"max_entries"`
	DefaultTTL string `mapstructure:"default_ttl"`
}

type AdmissionConfig struct {
	// SigningSecret is required at startup; a missing secret is a fatal
	// configuration error, never a per-request failure.
	SigningSecret string `mapstructure:"signing_secret"`

	GlobalLimit LimitConfig `mapstructure:"global_limit"`
	// RoleLimits and MethodLimits are allow-lists: a role or method with no
	// entry is not limited by that compositor.
	RoleLimits   map[string]LimitConfig `mapstructure:"role_limits"`
	MethodLimits map[string]LimitConfig `mapstructure:"method_limits"`

	Quotas map[string]QuotaConfig `mapstructure:"quotas"`

	Signature SignatureConfig `mapstructure:"signature"`
	Cache     CacheConfig     `mapstructure:"cache"`

	StrictHeuristics bool     `mapstructure:"strict_heuristics"`
	RequiredHeaders  []string `mapstructure:"required_headers"`
	AuthFlowPaths    []string `mapstructure:"auth_flow_paths"`
	SlowResponseMs   int      `mapstructure:"slow_response_ms"`

	IdentitySecret string `mapstructure:"identity_secret"`
}

type ProvidersConfig struct {
	Places     PlacesProviderConfig `mapstructure:"places"`
	LLM        LLMProviderConfig    `mapstructure:"llm"`
	Translator TranslatorConfig     `mapstructure:"translator"`
}

type PlacesProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type LLMProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type TranslatorConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// viper.Unmarshal flattens nested tables inconsistently when values come
	// from the environment, so the limit tables are decoded explicitly.
	if raw := viper.Get("admission.role_limits"); raw != nil {
		limits, err := decodeLimitTable(raw)
		if err != nil {
			return fmt.Errorf("invalid role_limits: %w", err)
		}
		globalConfig.Admission.RoleLimits = limits
	}
	if raw := viper.Get("admission.method_limits"); raw != nil {
		limits, err := decodeLimitTable(raw)
		if err != nil {
			return fmt.Errorf("invalid method_limits: %w", err)
		}
		globalConfig.Admission.MethodLimits = limits
	}

	setDefaultValues()

	return globalConfig.Validate()
}

func decodeLimitTable(raw interface{}) (map[string]LimitConfig, error) {
	var limits map[string]LimitConfig
	if err := mapstructure.Decode(raw, &limits); err != nil {
		return nil, err
	}
	return limits, nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Server.LogLevel == "" {
		globalConfig.Server.LogLevel = "info"
	}
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Admission.GlobalLimit.Window == "" {
		globalConfig.Admission.GlobalLimit = LimitConfig{Limit: 300, Window: "1m"}
	}
	if globalConfig.Admission.Cache.MaxEntries == 0 {
		globalConfig.Admission.Cache.MaxEntries = 10_000
	}
	if globalConfig.Admission.SlowResponseMs == 0 {
		globalConfig.Admission.SlowResponseMs = 2000
	}
	if globalConfig.Admission.Signature.MaxSkewSeconds == 0 {
		globalConfig.Admission.Signature.MaxSkewSeconds = 300
	}
}

// Validate fails fast: every misconfiguration is a startup error, never a
// per-request one.
func (c *Config) Validate() error {
	if c.Admission.SigningSecret == "" {
		return errors.New("admission.signing_secret is required")
	}
	if c.Admission.IdentitySecret == "" {
		return errors.New("admission.identity_secret is required")
	}
	if c.Admission.GlobalLimit.Window != "" {
		if _, err := c.Admission.GlobalLimit.WindowDuration(); err != nil {
			return fmt.Errorf("global_limit: %w", err)
		}
	}
	for role, limit := range c.Admission.RoleLimits {
		if _, err := limit.WindowDuration(); err != nil {
			return fmt.Errorf("role_limits[%s]: %w", role, err)
		}
	}
	for method, limit := range c.Admission.MethodLimits {
		if _, err := limit.WindowDuration(); err != nil {
			return fmt.Errorf("method_limits[%s]: %w", method, err)
		}
	}
	for name, q := range c.Admission.Quotas {
		if _, err := time.ParseDuration(q.Window); err != nil {
			return fmt.Errorf("quotas[%s]: invalid window %q: %w", name, q.Window, err)
		}
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
