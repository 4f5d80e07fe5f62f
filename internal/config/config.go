package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config はサーバーの設定です。YAML ファイル（任意）→ 環境変数の順に適用されます。
type Config struct {
	Env             string        `yaml:"env"`
	Port            string        `yaml:"port"`
	APIKey          string        `yaml:"-"`
	Model           string        `yaml:"model"`
	SystemPrompt    string        `yaml:"system_prompt"`
	OutputDir       string        `yaml:"output_dir"`
	InputDir        string        `yaml:"input_dir"`
	Locale          string        `yaml:"locale"`
	CompressQuality int           `yaml:"compress_quality"`
	Seed            *int64        `yaml:"seed"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
}

// Default は既定値のみの設定を返します。
func Default() Config {
	return Config{
		Env:             "production",
		Port:            "8080",
		Model:           "gemini-2.5-flash-image",
		OutputDir:       "downloads",
		Locale:          "pt",
		HTTPTimeout:     30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SessionTTL:      24 * time.Hour,
	}
}

// Load は .env（存在すれば）、STUDIO_CONFIG の YAML、環境変数の順に読み込みます。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("STUDIO_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnvOrDefault("STUDIO_ENV", c.Env)
	c.Port = getEnvOrDefault("STUDIO_PORT", c.Port)
	c.APIKey = getEnvOrDefault("GEMINI_API_KEY", os.Getenv("API_KEY"))
	c.Model = getEnvOrDefault("STUDIO_MODEL", c.Model)
	c.SystemPrompt = getEnvOrDefault("STUDIO_SYSTEM_PROMPT", c.SystemPrompt)
	c.OutputDir = getEnvOrDefault("STUDIO_OUTPUT_DIR", c.OutputDir)
	c.InputDir = getEnvOrDefault("STUDIO_INPUT_DIR", c.InputDir)
	c.Locale = getEnvOrDefault("STUDIO_LOCALE", c.Locale)
	c.CompressQuality = getEnvIntOrDefault("STUDIO_COMPRESS_QUALITY", c.CompressQuality)
	if value := os.Getenv("STUDIO_SEED"); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			c.Seed = &i
		}
	}
	c.HTTPTimeout = getEnvDurationOrDefault("STUDIO_HTTP_TIMEOUT", c.HTTPTimeout)
	c.ShutdownTimeout = getEnvDurationOrDefault("STUDIO_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.SessionTTL = getEnvDurationOrDefault("STUDIO_SESSION_TTL", c.SessionTTL)
}

// Validate は必須項目と値の範囲を確認します。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("GEMINI_API_KEY (or API_KEY) is required")
	}
	if c.Port == "" {
		return fmt.Errorf("STUDIO_PORT is required")
	}
	if c.CompressQuality < 0 || c.CompressQuality > 100 {
		return fmt.Errorf("STUDIO_COMPRESS_QUALITY must be between 0 and 100, got %d", c.CompressQuality)
	}
	switch c.Locale {
	case "pt", "en":
	default:
		return fmt.Errorf("unsupported locale: %s (must be pt or en)", c.Locale)
	}
	return nil
}

// IsDevelopment は開発環境かどうかを返します。
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
