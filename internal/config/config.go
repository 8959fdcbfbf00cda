package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAuthSecret = "change-me"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env             string
	ServerPort      string
	DBDriver        string
	DatabaseDSN     string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	AuthSecret      string
	CookieSecure    bool
	CodeTTL         time.Duration
	SweepInterval   time.Duration
	LoginRateLimit  int
	LoginRateWindow time.Duration
	TrustedProxies  []string
	DeliveryTimeout time.Duration
	SwaggerHost     string
}

// DeliveryConfig holds the settings that decide which code provider is active.
// It is reloaded on every login so operators can switch providers without a restart.
type DeliveryConfig struct {
	WebhookURL          string
	OutlookClientID     string
	OutlookClientSecret string
	OutlookTenant       string
	AuthSecret          string
}

// Loader returns the current delivery configuration.
type Loader func() DeliveryConfig

// Load builds Config from environment with sensible defaults.
// Values from a .env file in the working directory are used when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:             getEnv("APP_ENV", "development"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/board?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		AuthSecret:      getEnv("AUTH_SECRET", defaultAuthSecret),
		CookieSecure:    getEnvBool("COOKIE_SECURE", false),
		CodeTTL:         getEnvDuration("CODE_TTL", 10*time.Minute),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES"),
		DeliveryTimeout: getEnvDuration("DELIVERY_TIMEOUT", 10*time.Second),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
	}
}

// Validate rejects configurations that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.Env != "development" && (c.AuthSecret == "" || c.AuthSecret == defaultAuthSecret) {
		return errors.New("config: AUTH_SECRET must be set outside development")
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		return errors.New("config: LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	if c.CodeTTL <= 0 {
		return errors.New("config: CODE_TTL must be positive")
	}
	return nil
}

// Delivery returns a Loader bound to this configuration's secret.
// Provider settings are read from the environment on every call.
func (c *Config) Delivery() Loader {
	secret := c.AuthSecret
	return func() DeliveryConfig {
		return LoadDelivery(secret)
	}
}

// LoadDelivery reads the provider settings from the environment.
func LoadDelivery(authSecret string) DeliveryConfig {
	return DeliveryConfig{
		WebhookURL:          strings.TrimSpace(os.Getenv("VERIFY_CODE_URL")),
		OutlookClientID:     strings.TrimSpace(os.Getenv("VERIFY_OUTLOOK_CLIENT_ID")),
		OutlookClientSecret: os.Getenv("VERIFY_OUTLOOK_CLIENT_SECRET"),
		OutlookTenant:       getEnv("VERIFY_OUTLOOK_TENANT", "common"),
		AuthSecret:          authSecret,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
