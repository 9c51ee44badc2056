// Package config loads application settings from environment variables and an
// optional config file. Secrets come only from the environment and are never
// written back to disk.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings is the validated application configuration.
type Settings struct {
	AppName     string `mapstructure:"app_name"`
	Environment string `mapstructure:"environment"`
	ListenAddr  string `mapstructure:"listen_addr"`
	LogLevel    string `mapstructure:"log_level"`

	// Security
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	MaxRequestSizeMB   int64    `mapstructure:"max_request_size_mb"`

	// LLM provider
	GroqAPIKey   string  `mapstructure:"groq_api_key"`
	LLMEndpoint  string  `mapstructure:"llm_endpoint"`
	LLMModel     string  `mapstructure:"llm_model"`
	LLMMaxTokens int     `mapstructure:"llm_max_tokens"`
	Temperature  float64 `mapstructure:"llm_temperature"`

	// GitHub analyzer
	GitHubToken string `mapstructure:"github_token"`

	// Storage
	DatabasePath string `mapstructure:"database_path"`
}

// environments accepted for the environment setting.
var environments = map[string]bool{
	"development": true, "testing": true, "staging": true, "production": true,
}

// Load reads settings from the environment (prefix SHORTLIST_) layered over
// an optional config file. configPath may be empty.
func Load(configPath string) (settings Settings, err error) {
	v := viper.New()

	v.SetDefault("app_name", "shortlist")
	v.SetDefault("environment", "development")
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("max_request_size_mb", 10)
	v.SetDefault("llm_endpoint", "")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_max_tokens", 8192)
	v.SetDefault("llm_temperature", 0.15)
	v.SetDefault("database_path", "shortlist.db")

	v.SetEnvPrefix("SHORTLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider keys follow their conventional unprefixed names.
	_ = v.BindEnv("groq_api_key", "SHORTLIST_GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("github_token", "SHORTLIST_GITHUB_TOKEN", "GITHUB_TOKEN")

	if configPath != "" {
		v.SetConfigFile(configPath)
		err = v.ReadInConfig()
		if err != nil {
			err = errors.Wrapf(err, "failed to read config file %s", configPath)
			return settings, err
		}
	}

	err = v.Unmarshal(&settings)
	if err != nil {
		err = errors.Wrap(err, "failed to unmarshal settings")
		return settings, err
	}

	err = settings.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return settings, err
	}

	return settings, err
}

// Validate checks that the loaded settings are usable.
func (s *Settings) Validate() (err error) {
	if !environments[s.Environment] {
		err = errors.Errorf("invalid environment %q (want development, testing, staging, or production)", s.Environment)
		return err
	}
	if s.GroqAPIKey == "" {
		err = errors.New("groq_api_key is required (set GROQ_API_KEY)")
		return err
	}
	if s.RateLimitPerMinute <= 0 {
		err = errors.New("rate_limit_per_minute must be positive")
		return err
	}
	if s.MaxRequestSizeMB <= 0 {
		err = errors.New("max_request_size_mb must be positive")
		return err
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		err = errors.Errorf("llm_temperature %v out of range [0, 2]", s.Temperature)
		return err
	}
	return err
}

// IsProduction reports whether the app runs in production mode.
func (s *Settings) IsProduction() (prod bool) {
	prod = s.Environment == "production"
	return prod
}
