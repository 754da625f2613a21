// Package config loads application configuration from environment variables.
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env      string // APP_ENV: dev, test or prod
	Port     string // APP_PORT
	LogLevel string // LOG_LEVEL: zerolog level name

	DBUser    string
	DBPass    string
	DBHost    string
	DBPort    string
	DBName    string
	DBMigrate bool // run embedded migrations at startup

	JWTSecret string // HS256 secret shared with the identity provider

	// Admission control.
	StoreTimeout    time.Duration
	LockWait        time.Duration
	LockTTL         time.Duration
	MaxAttempts     int
	NotifyTimeout   time.Duration
	DistributedLock bool // use the Redis room lock when Redis is reachable

	RabbitURL    string
	BookingQueue string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	CloudinaryCloud  string
	CloudinaryKey    string
	CloudinarySecret string
	CloudinaryFolder string

	StripeWebhookSecret string
	StripeSecretKey     string // enables POST /v1/bookings/:id/pay
	StripeCurrency      string
	AppURL              string // frontend origin Stripe redirects back to
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool { return c.Env == "dev" }

// Load reads configuration values from the environment.  Missing required
// variables are collected and reported together.
func Load() (Config, error) {
	_ = godotenv.Load()

	var missing []string
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     envStr("APP_PORT", "8080"),
		LogLevel: envStr("LOG_LEVEL", "info"),

		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    envStr("DB_HOST", "127.0.0.1"),
		DBPort:    envStr("DB_PORT", "3306"),
		DBName:    must("DB_NAME"),
		DBMigrate: envBool("DB_MIGRATE", false),

		JWTSecret: must("JWT_SECRET"),

		StoreTimeout:    envDur("BOOKING_STORE_TIMEOUT", 5*time.Second),
		LockWait:        envDur("BOOKING_LOCK_WAIT", 3*time.Second),
		LockTTL:         envDur("BOOKING_LOCK_TTL", 10*time.Second),
		MaxAttempts:     envInt("BOOKING_MAX_ATTEMPTS", 3),
		NotifyTimeout:   envDur("BOOKING_NOTIFY_TIMEOUT", 10*time.Second),
		DistributedLock: envBool("BOOKING_DISTRIBUTED_LOCK", true),

		RabbitURL:    os.Getenv("RABBITMQ_URL"),
		BookingQueue: envStr("BOOKING_QUEUE", "booking.created"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: envStr("MAIL_FROM", "QuickStay <no-reply@quickstay.local>"),

		CloudinaryCloud:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder: envStr("CLOUDINARY_FOLDER", "rooms"),

		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:      envStr("STRIPE_CURRENCY", "usd"),
		AppURL:              envStr("APP_URL", "http://localhost:5173"),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.MaxAttempts < 1 {
		return Config{}, errors.New("BOOKING_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.StoreTimeout <= 0 || cfg.LockWait <= 0 {
		return Config{}, errors.New("booking timeouts must be positive")
	}
	return cfg, nil
}
