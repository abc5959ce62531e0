package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingAPIKey = errors.New("access API key is not configured")

// Config holds everything the API server needs at startup.
type Config struct {
	Env           string
	Port          string
	EnvFile       string
	ExposeAnswers bool
	AllowOrigins  string
	// APIKeyGenerated is set when Load created a fresh access key.
	APIKeyGenerated bool

	Database DatabaseConfig
	OpenAI   OpenAIConfig
	Auth     AuthConfig
}

type DatabaseConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

type OpenAIConfig struct {
	APIKey           string
	Model            string
	BaseURL          string
	Timeout          time.Duration
	Temperature      float64
	RetryTemperature float64
}

// Enabled reports whether a provider key is present.
func (c OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type AuthConfig struct {
	APIKey string
}

// Load reads the env file (if any) and the process environment. When no
// access key is configured one is generated and persisted to the env file.
func Load() (*Config, error) {
	v := newViper()

	envFile := v.GetString("env_file")
	// The env file is optional; the process environment still applies.
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Env:           v.GetString("env"),
		Port:          v.GetString("port"),
		EnvFile:       envFile,
		ExposeAnswers: v.GetBool("expose_answers"),
		AllowOrigins:  v.GetString("cors.allow_origins"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
			DSN:    v.GetString("database.url"),
		},
		OpenAI: OpenAIConfig{
			APIKey:           strings.TrimSpace(v.GetString("openai.api_key")),
			Model:            v.GetString("openai.model"),
			BaseURL:          strings.TrimSpace(v.GetString("openai.base_url")),
			Timeout:          v.GetDuration("openai.timeout"),
			Temperature:      v.GetFloat64("openai.temperature"),
			RetryTemperature: v.GetFloat64("openai.retry_temperature"),
		},
		Auth: AuthConfig{
			APIKey: strings.TrimSpace(v.GetString("auth.api_key")),
		},
	}

	if cfg.Auth.APIKey == "" {
		key, generated, err := EnsureAPIKey(envFile)
		if err != nil {
			return nil, fmt.Errorf("ensure api key: %w", err)
		}
		cfg.Auth.APIKey = key
		cfg.APIKeyGenerated = generated
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("env", "local")
	v.SetDefault("port", "5000")
	v.SetDefault("env_file", ".env")
	v.SetDefault("expose_answers", false)
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "quiz.db")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", "60s")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.retry_temperature", 0.3)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("env_file", "APP_ENV_FILE")
	_ = v.BindEnv("expose_answers", "EXPOSE_ANSWERS")
	_ = v.BindEnv("cors.allow_origins", "CORS_ALLOW_ORIGINS")
	_ = v.BindEnv("database.driver", "DB_DRIVER")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.model", "OPENAI_MODEL")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("openai.timeout", "OPENAI_TIMEOUT")
	_ = v.BindEnv("openai.temperature", "OPENAI_TEMPERATURE")
	_ = v.BindEnv("openai.retry_temperature", "OPENAI_RETRY_TEMPERATURE")
	_ = v.BindEnv("auth.api_key", "APP_API_KEY")

	return v
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive, got %s", c.OpenAI.Timeout)
	}
	if c.Auth.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
