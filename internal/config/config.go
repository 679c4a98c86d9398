// File: internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config 服務啟動時建立一次，之後以指標傳給各元件
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	DB       DBConfig
	Auth     AuthConfig
	Speech   SpeechConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	SendGrid SendGridConfig
}

type AppConfig struct {
	Env      string `env:"APP_ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Port string `env:"PORT" env-default:"3000"`
	// 允許跨域的前端來源，逗號分隔
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:4200,https://angular-polly-app.onrender.com"`
}

type DBConfig struct {
	URL           string `env:"DATABASE_URL" env-required:"true"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" env-default:"true"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"24h"`
}

// SpeechConfig 設定 AWS Polly 與 /speak 的預設值
type SpeechConfig struct {
	Region          string        `env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string        `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string        `env:"POLLY_ENDPOINT"`
	DefaultText     string        `env:"SPEECH_DEFAULT_TEXT" env-default:"Hello"`
	DefaultVoice    string        `env:"SPEECH_DEFAULT_VOICE" env-default:"Joanna"`
	CacheTTL        time.Duration `env:"SPEECH_CACHE_TTL" env-default:"24h"`
}

// RedisConfig Addr 為空時不啟用語音快取
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type WorkerConfig struct {
	Count int `env:"WORKER_COUNT" env-default:"2"`
}

// SendGridConfig APIKey 為空時改用 no-op notifier
type SendGridConfig struct {
	APIKey string `env:"SENDGRID_API_KEY"`
	From   string `env:"MAIL_FROM" env-default:"no-reply@polly-relay.local"`
}

var (
	loadDotenv = func() error { return godotenv.Load() }
	readEnv    = cleanenv.ReadEnv
)

// Load 讀取 .env（非 production）與環境變數並驗證
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// .env 不存在時直接略過
		_ = loadDotenv()
	}

	var cfg Config
	if err := readEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DB.URL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("invalid WORKER_COUNT: %d", c.Worker.Count)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid TOKEN_TTL: %s", c.Auth.TokenTTL)
	}
	return nil
}

// SlogLevel 將 LOG_LEVEL 轉為 slog.Level
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.App.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.App.LogLevel, err)
	}
	return lvl, nil
}

// Addr 回傳 echo.Start 使用的監聽位址
func (c *Config) Addr() string {
	return ":" + c.HTTP.Port
}

// CacheEnabled 表示是否設定了 Redis
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}
