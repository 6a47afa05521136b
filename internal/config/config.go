package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	AdminAPIKey  string
	CookieSecret string
	CookieSecure bool

	CataloguePath string

	Upstream  UpstreamConfig
	Override  OverrideConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// UpstreamConfig is the environment default for the upstream invite API.
// Empty values fall back to the invite package defaults.
type UpstreamConfig struct {
	Token          string `env:"CHATGPT_BEARER_TOKEN"`
	AccountID      string `env:"CHATGPT_ACCOUNT_ID"`
	UserAgent      string `env:"CHATGPT_IMPERSONATE_UA"`
	BaseURL        string `env:"CHATGPT_API_BASE"`
	TimeoutSeconds int    `env:"INVITE_TIMEOUT_SECONDS" envDefault:"30"`
}

func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

const (
	OverrideBackendMemory = "memory"
	OverrideBackendRedis  = "redis"
)

type OverrideConfig struct {
	Backend string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
}

// NeedsRedis reports whether any component is configured against Redis.
func (c Config) NeedsRedis() bool {
	return c.Override.Backend == OverrideBackendRedis || c.RateLimit.Enabled
}

// Load loads configuration from environment variables and .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var upstream UpstreamConfig
	if err := ParseEnv(&upstream); err != nil {
		return Config{}, err
	}

	environment := getenv("ENVIRONMENT", "development")
	cookieSecure := environment == "production"
	if !cookieSecure {
		cookieSecure = getenvBool("COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:       getenv("APP_SERVICE", "inviteportal"),
		AppVersion:    getenv("APP_VERSION", "0.1.0"),
		Environment:   environment,
		Port:          strings.TrimSpace(getenv("PORT", "5000")),
		AdminAPIKey:   strings.TrimSpace(getenv("ADMIN_API_KEY", "")),
		CookieSecret:  strings.TrimSpace(getenv("COOKIE_SECRET", "")),
		CookieSecure:  cookieSecure,
		CataloguePath: strings.TrimSpace(getenv("PORTAL_CONFIG_PATH", "")),
		Upstream:      upstream,
		Override: OverrideConfig{
			Backend: normalizeBackend(getenv("OVERRIDE_BACKEND", OverrideBackendMemory)),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		RateLimit: RateLimitConfig{
			Enabled: getenvBool("RATE_LIMIT_ENABLED", false),
			Rate:    getenvFloat("RATE_LIMIT_RATE", 1),
			Burst:   int(getenvInt64("RATE_LIMIT_BURST", 10)),
		},
	}

	return cfg, nil
}

// ParseEnv fills target from environment variables using its env tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func normalizeBackend(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case OverrideBackendRedis:
		return OverrideBackendRedis
	default:
		return OverrideBackendMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
