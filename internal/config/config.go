package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingDB       = errors.New("DATABASE_URL is required")
	ErrInvalidProvider = errors.New("invalid LLM_PROVIDER")
	ErrMissingAPIKey   = errors.New("API key for the selected LLM provider is required")
	ErrInvalidAddr     = errors.New("HTTP_ADDR is required")
)

const (
	ProviderMistral   = "mistral"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"

	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	Env       string
	HTTP      HTTPConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Queue     QueueConfig
	Telegram  TelegramConfig
	Auth      AuthConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type HTTPConfig struct {
	Addr string
}

type DatabaseConfig struct {
	URL string
}

// LLMConfig - настройки провайдеров. В сервис уходит только выбранный клиент.
type LLMConfig struct {
	Provider  string
	Timeout   time.Duration
	Mistral   ProviderConfig
	Gemini    ProviderConfig
	Anthropic ProviderConfig
}

type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type QueueConfig struct {
	URL string
}

func (c QueueConfig) Enabled() bool { return c.URL != "" }

type TelegramConfig struct {
	Token string
}

func (c TelegramConfig) Enabled() bool { return c.Token != "" }

type AuthConfig struct {
	JWTSecret string
}

func (c AuthConfig) Enabled() bool { return c.JWTSecret != "" }

type LogConfig struct {
	Level string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load читает .env (если есть) и переменные окружения.
// Пустой envFile - пробуем ./.env, отсутствие файла не ошибка.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env:  strings.ToLower(v.GetString("APP_ENV")),
		HTTP: HTTPConfig{Addr: v.GetString("HTTP_ADDR")},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(v.GetString("LLM_PROVIDER")),
			Timeout:  time.Duration(v.GetInt("LLM_TIMEOUT_SEC")) * time.Second,
			Mistral: ProviderConfig{
				APIKey:  v.GetString("MISTRAL_API_KEY"),
				Model:   v.GetString("MISTRAL_AI_MODEL"),
				BaseURL: v.GetString("MISTRAL_BASE_URL"),
			},
			Gemini: ProviderConfig{
				APIKey: v.GetString("GEMINI_API_KEY"),
				Model:  v.GetString("GEMINI_MODEL"),
			},
			Anthropic: ProviderConfig{
				APIKey:  v.GetString("ANTHROPIC_API_KEY"),
				Model:   v.GetString("ANTHROPIC_MODEL"),
				BaseURL: v.GetString("ANTHROPIC_BASE_URL"),
			},
		},
		Queue:     QueueConfig{URL: v.GetString("AMQP_URL")},
		Telegram:  TelegramConfig{Token: v.GetString("TELEGRAM_BOT_TOKEN")},
		Auth:      AuthConfig{JWTSecret: v.GetString("JWT_SECRET")},
		Log:       LogConfig{Level: v.GetString("LOG_LEVEL")},
		RateLimit: RateLimitConfig{RequestsPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvProd)
	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("LLM_PROVIDER", ProviderMistral)
	v.SetDefault("LLM_TIMEOUT_SEC", 0)
	v.SetDefault("MISTRAL_AI_MODEL", "mistral-small-latest")
	v.SetDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 10)
}

func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	// уже выставленные переменные окружения не перезаписываются
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDB
	}
	if c.HTTP.Addr == "" {
		return ErrInvalidAddr
	}

	p, err := c.LLM.Selected()
	if err != nil {
		return err
	}
	if c.LLM.Provider != ProviderMock && p.APIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingAPIKey, c.LLM.Provider)
	}
	return nil
}

// Selected возвращает настройки выбранного провайдера.
func (c LLMConfig) Selected() (ProviderConfig, error) {
	switch c.Provider {
	case ProviderMistral:
		return c.Mistral, nil
	case ProviderGemini:
		return c.Gemini, nil
	case ProviderAnthropic:
		return c.Anthropic, nil
	case ProviderMock:
		return ProviderConfig{Model: ProviderMock}, nil
	}
	return ProviderConfig{}, fmt.Errorf("%w: %q", ErrInvalidProvider, c.Provider)
}

func (c *Config) IsDev() bool { return c.Env == EnvDev }
