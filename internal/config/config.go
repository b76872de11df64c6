package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the boost-metrics service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	Commission CommissionConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Analytics  AnalyticsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxConns     int
	MinConns     int
	ConnLifetime time.Duration
	ConnIdleTime time.Duration
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ClickHouseConfig configures the engagement-log connection.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// CommissionConfig configures the live rate service and its fallbacks.
type CommissionConfig struct {
	LiveURL     string
	APIKey      string
	LiveTimeout time.Duration
	CacheTTL    time.Duration
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// AnalyticsConfig bounds the computations the service runs.
type AnalyticsConfig struct {
	// GuidanceLookback is the history window the publish-window
	// recommender consumes when the caller does not supply one.
	GuidanceLookback time.Duration
	// OverviewCacheTTL is how long a computed overview snapshot stays
	// valid in Redis.
	OverviewCacheTTL time.Duration
	// MaxRangeDays caps the date range of a single request.
	MaxRangeDays int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("BOOST_METRICS_HTTP_ADDR", ":8080"),
			Env:             getEnv("BOOST_METRICS_ENV", "development"),
			ShutdownTimeout: getDurationEnv("BOOST_METRICS_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("BOOST_METRICS_DB_HOST", "localhost"),
			Port:     getIntEnv("BOOST_METRICS_DB_PORT", 5432),
			User:     getEnv("BOOST_METRICS_DB_USER", "scenenow"),
			Password: getEnv("BOOST_METRICS_DB_PASSWORD", "scenenow_secret"),
			DBName:   getEnv("BOOST_METRICS_DB_NAME", "scenenow"),
			SSLMode:  getEnv("BOOST_METRICS_DB_SSLMODE", "disable"),
			MaxConns:     getIntEnv("BOOST_METRICS_DB_MAX_CONNS", 25),
			MinConns:     getIntEnv("BOOST_METRICS_DB_MIN_CONNS", 5),
			ConnLifetime: getDurationEnv("BOOST_METRICS_DB_CONN_LIFETIME", time.Hour),
			ConnIdleTime: getDurationEnv("BOOST_METRICS_DB_CONN_IDLE_TIME", 30*time.Minute),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("BOOST_METRICS_CH_ENABLED", false),
			Addr:     getEnv("BOOST_METRICS_CH_ADDR", "localhost:9000"),
			Database: getEnv("BOOST_METRICS_CH_DATABASE", "engagement"),
			User:     getEnv("BOOST_METRICS_CH_USER", "default"),
			Password: getEnv("BOOST_METRICS_CH_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:         getEnv("BOOST_METRICS_REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("BOOST_METRICS_REDIS_PASSWORD", ""),
			DB:           getIntEnv("BOOST_METRICS_REDIS_DB", 0),
			PoolSize:     getIntEnv("BOOST_METRICS_REDIS_POOL_SIZE", 50),
			MinIdleConns: getIntEnv("BOOST_METRICS_REDIS_MIN_IDLE_CONNS", 5),
		},
		Commission: CommissionConfig{
			LiveURL:     getEnv("BOOST_METRICS_COMMISSION_URL", ""),
			APIKey:      getEnv("BOOST_METRICS_COMMISSION_API_KEY", ""),
			LiveTimeout: getDurationEnv("BOOST_METRICS_COMMISSION_TIMEOUT", 2*time.Second),
			CacheTTL:    getDurationEnv("BOOST_METRICS_COMMISSION_CACHE_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("BOOST_METRICS_AUTH_ENABLED", true),
			MasterKey: getEnv("BOOST_METRICS_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("BOOST_METRICS_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("BOOST_METRICS_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("BOOST_METRICS_RATE_LIMIT_RPS", 100),
			Burst:   getIntEnv("BOOST_METRICS_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("BOOST_METRICS_LOG_LEVEL", "info"),
			Format: getEnv("BOOST_METRICS_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("BOOST_METRICS_METRICS_ENABLED", true),
			Path:    getEnv("BOOST_METRICS_METRICS_PATH", "/metrics"),
		},
		Analytics: AnalyticsConfig{
			GuidanceLookback: getDurationEnv("BOOST_METRICS_GUIDANCE_LOOKBACK", 30*24*time.Hour),
			OverviewCacheTTL: getDurationEnv("BOOST_METRICS_OVERVIEW_CACHE_TTL", time.Minute),
			MaxRangeDays:     getIntEnv("BOOST_METRICS_MAX_RANGE_DAYS", 366),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("BOOST_METRICS_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Analytics.MaxRangeDays <= 0 {
		return fmt.Errorf("BOOST_METRICS_MAX_RANGE_DAYS must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
