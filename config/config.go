package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/campus-rcs/site-coordination/pkg/mailer"
	"github.com/campus-rcs/site-coordination/pkg/redis"
	"github.com/campus-rcs/site-coordination/pkg/storage"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	SMTP      SMTPConfig
	AWS       AWSConfig
	Lifecycle LifecycleConfig
}

// SMTPConfig holds the outbound mail relay settings. An empty Host disables sending.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	TimeoutSec int
}

// AdminConfig holds coordinator login settings.
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt hash; generate with `sitectl hash-password`
}

// LifecycleConfig toggles optional notification behaviour.
type LifecycleConfig struct {
	NotifyBookingDenial bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	SecureCookies      bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/site_coordination?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	DialTimeoutSec int
}

// ClientOptions converts the settings for the session store client.
func (c RedisConfig) ClientOptions() redis.Options {
	return redis.Options{
		Addr:        c.Addr,
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: time.Duration(c.DialTimeoutSec) * time.Second,
	}
}

// JWTConfig holds session token signing settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the bucket used for activity exports.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ExportBucket         string
	PresignExpireMinutes int
}

// MailerConfig converts the relay settings for the SMTP sender.
func (c SMTPConfig) MailerConfig() mailer.Config {
	return mailer.Config{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		From:     c.From,
		Timeout:  time.Duration(c.TimeoutSec) * time.Second,
	}
}

// S3Config converts the AWS settings for the export storage.
func (c AWSConfig) S3Config() storage.S3Config {
	return storage.S3Config{
		Region:               c.Region,
		AccessKeyID:          c.AccessKeyID,
		SecretAccessKey:      c.SecretAccessKey,
		ExportBucket:         c.ExportBucket,
		PresignExpireMinutes: c.PresignExpireMinutes,
	}
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "5000"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 60),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			SecureCookies:      getEnvBool("SECURE_COOKIES", false),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "site_coordination"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			DialTimeoutSec: getEnvInt("REDIS_DIAL_TIMEOUT_SEC", 5),
		},
		JWT: JWTConfig{
			Secret:      getEnv("SITE_COORDINATION_SECRET", "dev-secret"),
			ExpireHours: getEnvInt("SESSION_EXPIRE_HOURS", 12),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SITE_COORDINATION_SMTP_HOST", ""),
			Port:       getEnvInt("SITE_COORDINATION_SMTP_PORT", 587),
			User:       getEnv("SITE_COORDINATION_SMTP_USER", ""),
			Password:   getEnv("SITE_COORDINATION_SMTP_PASSWORD", ""),
			From:       getEnv("SITE_COORDINATION_SENDER_EMAIL", "wordpress@campus-rwth-aachen.com"),
			TimeoutSec: getEnvInt("SMTP_TIMEOUT_SEC", 10),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ExportBucket:         getEnv("AWS_S3_EXPORT_BUCKET", "site-coordination-exports"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Lifecycle: LifecycleConfig{
			NotifyBookingDenial: getEnvBool("NOTIFY_BOOKING_DENIAL", false),
		},
	}
	if cfg.Server.Port == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
