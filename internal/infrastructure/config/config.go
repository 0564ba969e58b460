package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	MailBackendLog  = "log"
	MailBackendSMTP = "smtp"

	MailQueueDirect = "direct"
	MailQueueRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Log   LogConfig
	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Mail  MailConfig
	SMTP  SMTPConfig

	// DataDir holds the CSV fixtures read by the loaddata command.
	DataDir string `env:"DATA_DIR, default=static/data"`
}

type LogConfig struct {
	Pretty     bool   `env:"LOG_PRETTY,      default=false"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB, default=100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS, default=5"`
}

type AuthConfig struct {
	SecretKey           string        `env:"SECRET_KEY, required"`
	Issuer              string        `env:"JWT_ISSUER,            default=yamdb"`
	AccessTokenTTL      time.Duration `env:"ACCESS_TOKEN_TTL,      default=24h"`
	ConfirmationCodeTTL time.Duration `env:"CONFIRMATION_CODE_TTL, default=72h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=yamdb"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type MailConfig struct {
	Backend string `env:"MAIL_BACKEND, default=log"`
	From    string `env:"MAIL_FROM,    default=noreply@yamdb.local"`
	Queue   string `env:"MAIL_QUEUE,   default=direct"`
	Workers int    `env:"MAIL_WORKERS, default=4"`
}

type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT,    default=25"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	TLS      string        `env:"SMTP_TLS,     default=opportunistic"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT, default=10s"`
}

// Load reads a .env file when present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Mail.Backend {
	case MailBackendLog:
	case MailBackendSMTP:
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_BACKEND=%s", MailBackendSMTP)
		}
	default:
		return fmt.Errorf("MAIL_BACKEND must be %q or %q, got %q", MailBackendLog, MailBackendSMTP, c.Mail.Backend)
	}

	switch c.Mail.Queue {
	case MailQueueDirect, MailQueueRedis:
	default:
		return fmt.Errorf("MAIL_QUEUE must be %q or %q, got %q", MailQueueDirect, MailQueueRedis, c.Mail.Queue)
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.ConfirmationCodeTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL and CONFIRMATION_CODE_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
