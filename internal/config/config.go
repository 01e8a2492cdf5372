package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingTokenSecret is returned by Load when TOKEN_SECRET is not set.
var ErrMissingTokenSecret = errors.New("TOKEN_SECRET is required")

// Config aggregates runtime configuration for the blog API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	CORS     CORSConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details. URL, when set, wins
// over the discrete fields.
type PostgresConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// RedisConfig carries the optional Redis connection used for login throttling.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	TokenSecret      string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	BcryptCost       int
	JanitorInterval  time.Duration
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("BLOG_API_HOST", "0.0.0.0"),
			Port:         getInt("PORT", 3000),
			ReadTimeout:  getDuration("BLOG_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("BLOG_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("BLOG_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			URL:      getString("DB_URL", ""),
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "blog_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "blog"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			MaxConns: int32(getInt("POSTGRES_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", ""),
			Password: getString("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Auth: loadAuthConfig(),
		Metrics: MetricsConfig{
			PrometheusPath: getString("BLOG_METRICS_PATH", "/metrics"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("ALLOWED_ORIGINS"),
		},
	}

	if strings.TrimSpace(cfg.Auth.TokenSecret) == "" {
		return Config{}, ErrMissingTokenSecret
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadAuthConfig() AuthConfig {
	cost := getInt("BLOG_AUTH_BCRYPT_COST", 12)
	if cost < 4 || cost > 31 {
		cost = 12
	}

	return AuthConfig{
		TokenSecret:      getString("TOKEN_SECRET", ""),
		AccessTokenTTL:   getDuration("BLOG_AUTH_ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL:  getDuration("BLOG_AUTH_REFRESH_TOKEN_TTL", 720*time.Hour),
		BcryptCost:       cost,
		JanitorInterval:  getDuration("BLOG_AUTH_JANITOR_INTERVAL", time.Hour),
		MaxLoginAttempts: getInt("BLOG_AUTH_MAX_LOGIN_ATTEMPTS", 5),
		LoginCooldown:    getDuration("BLOG_AUTH_LOGIN_COOLDOWN", 15*time.Minute),
	}
}
