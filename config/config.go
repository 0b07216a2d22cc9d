// Package config loads storyteller settings from a JSON file, STORYTELLER_*
// environment variables and built-in defaults, in that order of precedence
// (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	LLM         LLMConfig   `mapstructure:"llm"`
	ServerAddr  string      `mapstructure:"server_addr"`
	OutputDir   string      `mapstructure:"output_dir"`
	CatalogPath string      `mapstructure:"catalog_path"`
	Loop        LoopConfig  `mapstructure:"loop"`
	Retry       RetryConfig `mapstructure:"retry"`
}

// LLMConfig 生成模块的模型配置。
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	// APIKeyEnv names the environment variable holding the key when APIKey is empty.
	APIKeyEnv string `mapstructure:"api_key_env"`
	BaseURL   string `mapstructure:"base_url"`
}

// LoopConfig tunes the write/judge loop.
type LoopConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	PassScore   int `mapstructure:"pass_score"`
}

// RetryConfig tunes retries against the generation service.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

const envPrefix = "STORYTELLER"

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("server_addr", ":5001")
	v.SetDefault("output_dir", "stories")
	v.SetDefault("catalog_path", "stories/library.db")
	v.SetDefault("loop.max_attempts", 2)
	v.SetDefault("loop.pass_score", 8)
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", time.Second)
}

// Load reads the config file at path. An empty path looks for config.json in
// ./config and the working directory; finding none there is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a request.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "mock":
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %q not supported", c.LLM.Provider)
	}
	if c.Loop.MaxAttempts < 0 {
		return fmt.Errorf("loop.max_attempts must not be negative, got %d", c.Loop.MaxAttempts)
	}
	if c.Loop.PassScore < 1 || c.Loop.PassScore > 10 {
		return fmt.Errorf("loop.pass_score must be between 1 and 10, got %d", c.Loop.PassScore)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	return nil
}

// Credential resolves the API key: the configured value, else the named
// environment variable. It is looked up on every call so a key exported
// after startup is picked up.
func (c LLMConfig) Credential() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	name := c.APIKeyEnv
	if name == "" {
		name = "OPENAI_API_KEY"
	}
	return strings.TrimSpace(os.Getenv(name))
}
