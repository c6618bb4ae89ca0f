package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; nothing is required.
type Config struct {
	AppEnv string

	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DrainDelay      time.Duration
	CORSOrigins     []string

	// Health endpoint
	HealthPath        string
	HealthDefaultText string
	ReportWriteErrors bool

	// Write authorization. With no tokens and no DB token auth, PUT is disabled.
	AuthTokens  []string
	UpdateRate  float64
	UpdateBurst int
	DBTokenAuth bool

	// Database (optional)
	DatabaseURL     string
	DBMaxConns      int
	DBMinConns      int
	DBProbeInterval time.Duration

	// Transition webhook (optional)
	WebhookURL       string
	WebhookTimeout   time.Duration
	WebhookWorkers   int
	WebhookRateLimit int
	WebhookQueueSize int
	RetryBackoff     []time.Duration
}

// Load reads .env and .env.<APP_ENV> when present, then the environment.
// Real environment variables always win over file values.
func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env == "" {
		env = "local"
	}
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env." + env)

	cfg := &Config{
		AppEnv: env,

		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		DrainDelay:      getDuration("DRAIN_DELAY", 0),
		CORSOrigins:     getCSV("CORS_ORIGINS"),

		HealthPath:        getEnv("HEALTH_PATH", "/status"),
		HealthDefaultText: getEnv("HEALTH_DEFAULT_TEXT", "Healthy"),
		ReportWriteErrors: getBool("HEALTH_REPORT_WRITE_ERRORS", false),

		AuthTokens:  getCSV("HEALTH_AUTH_TOKENS"),
		UpdateRate:  getFloat("HEALTH_UPDATE_RATE", 5),
		UpdateBurst: getInt("HEALTH_UPDATE_BURST", 10),
		DBTokenAuth: getBool("DB_TOKEN_AUTH", false),

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBMaxConns:      getInt("DB_MAX_CONNS", 5),
		DBMinConns:      getInt("DB_MIN_CONNS", 1),
		DBProbeInterval: getDuration("DB_PROBE_INTERVAL", 0),

		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		WebhookTimeout:   getDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		WebhookWorkers:   getInt("WEBHOOK_WORKERS", 2),
		WebhookRateLimit: getInt("WEBHOOK_RATE_LIMIT", 10),
		WebhookQueueSize: getInt("WEBHOOK_QUEUE_SIZE", 100),
		RetryBackoff: []time.Duration{
			getDuration("WEBHOOK_RETRY_BACKOFF_1", 1*time.Second),
			getDuration("WEBHOOK_RETRY_BACKOFF_2", 5*time.Second),
			getDuration("WEBHOOK_RETRY_BACKOFF_3", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.HealthPath, "/") {
		return fmt.Errorf("HEALTH_PATH must start with '/', got %q", c.HealthPath)
	}
	if strings.TrimSpace(c.HealthDefaultText) == "" {
		return fmt.Errorf("HEALTH_DEFAULT_TEXT must not be empty")
	}
	if c.DBTokenAuth && c.DatabaseURL == "" {
		return fmt.Errorf("DB_TOKEN_AUTH requires DATABASE_URL")
	}
	if c.DBProbeInterval > 0 && c.DatabaseURL == "" {
		return fmt.Errorf("DB_PROBE_INTERVAL requires DATABASE_URL")
	}
	// pgxpool takes int32 sizes.
	if c.DBMaxConns < 1 || c.DBMaxConns > math.MaxInt32 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and %d, got %d", math.MaxInt32, c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	if c.UpdateRate <= 0 || c.UpdateBurst <= 0 {
		return fmt.Errorf("HEALTH_UPDATE_RATE and HEALTH_UPDATE_BURST must be positive")
	}
	if c.WebhookURL != "" {
		if c.WebhookWorkers <= 0 {
			return fmt.Errorf("WEBHOOK_WORKERS must be positive, got %d", c.WebhookWorkers)
		}
		if c.WebhookRateLimit <= 0 {
			return fmt.Errorf("WEBHOOK_RATE_LIMIT must be positive, got %d", c.WebhookRateLimit)
		}
		if c.WebhookQueueSize <= 0 {
			return fmt.Errorf("WEBHOOK_QUEUE_SIZE must be positive, got %d", c.WebhookQueueSize)
		}
	}
	return nil
}

// WritesEnabled reports whether any authorization filter will be registered.
func (c *Config) WritesEnabled() bool {
	return len(c.AuthTokens) > 0 || c.DBTokenAuth
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getCSV(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
