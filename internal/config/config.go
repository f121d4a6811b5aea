package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Postgres Postgres `validate:"required"`

	Kafka Kafka `validate:"required"`

	Cache Cache `validate:"required"`

	JWT JWT `validate:"required"`

	Stripe Stripe `validate:"required"`
	Paymob Paymob `validate:"required"`
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

// Kafka configures the order-events writer.
type Kafka struct {
	Brokers      []string      `validate:"required,min=1,dive,hostname_port"`
	Topic        string        `validate:"required"`
	BatchTimeout time.Duration `validate:"gte=0"`
}

// Cache holds explicit snapshot-cache options (no package-level defaults).
type Cache struct {
	Capacity int           `validate:"gte=1"`
	TTL      time.Duration `validate:"gt=0"`
}

type JWT struct {
	Secret string `validate:"required"`
}

type Stripe struct {
	SecretKey     string `validate:"required"`
	WebhookSecret string `validate:"required"`
	BaseURL       string `validate:"required,url"`

	// Tolerance bounds the age of a signed webhook timestamp.
	Tolerance time.Duration `validate:"gt=0"`
}

type Paymob struct {
	SecretKey  string `validate:"required"`
	PublicKey  string `validate:"required"`
	HMACSecret string `validate:"required"`
	BaseURL    string `validate:"required,url"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "store"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Kafka: Kafka{
			Brokers:      strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:        env("KAFKA_ORDER_EVENTS_TOPIC", "order-events"),
			BatchTimeout: envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Cache: Cache{
			Capacity: envInt("CACHE_CAPACITY", 1000),
			TTL:      envDuration("CACHE_TTL", 10*time.Minute),
		},

		JWT: JWT{
			Secret: env("JWT_SECRET", ""),
		},

		Stripe: Stripe{
			SecretKey:     env("STRIPE_SECRET_KEY", ""),
			WebhookSecret: env("STRIPE_WEBHOOK_SECRET", ""),
			BaseURL:       env("STRIPE_BASE_URL", "https://api.stripe.com"),
			Tolerance:     envDuration("STRIPE_WEBHOOK_TOLERANCE", 5*time.Minute),
		},

		Paymob: Paymob{
			SecretKey:  env("PAYMOB_SECRET_KEY", ""),
			PublicKey:  env("PAYMOB_PUBLIC_KEY", ""),
			HMACSecret: env("PAYMOB_HMAC_SECRET", ""),
			BaseURL:    env("PAYMOB_BASE_URL", "https://accept.paymob.com"),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
