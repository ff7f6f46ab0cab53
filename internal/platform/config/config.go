package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     string

	StorageDriver string
	DatabaseURL   string
	EnableDBCheck bool
	RunMigrations bool

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string
	RateLimit          string // ulule limiter formatted rate, e.g. "100-M"

	RedisURL       string // empty disables the report cache
	ReportCacheTTL time.Duration

	AMQPURL      string // empty disables event publishing
	AMQPExchange string

	LedgerMaxRetries           uint64
	LedgerRetryInitialInterval time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "mfg-ledger")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REPORT_CACHE_TTL", "60s")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "ledger.events")
	v.SetDefault("LEDGER_MAX_RETRIES", 5)
	v.SetDefault("LEDGER_RETRY_INITIAL_INTERVAL", "20ms")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:   v.GetString("PGSQL_URL"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTIssuer:     v.GetString("JWT_ISSUER"),
		RateLimit:     v.GetString("RATE_LIMIT"),
		RedisURL:      v.GetString("REDIS_URL"),
		AMQPURL:       v.GetString("AMQP_URL"),
		AMQPExchange:  v.GetString("AMQP_EXCHANGE"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %q", StorageDriverPostgres)
		}
	case StorageDriverMemory:
		log.Println("Warning: using in-memory storage. Data is lost on restart.")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	var err error
	if cfg.ReportCacheTTL, err = parseDuration(v, "REPORT_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.LedgerRetryInitialInterval, err = parseDuration(v, "LEDGER_RETRY_INITIAL_INTERVAL", 20*time.Millisecond); err != nil {
		return nil, err
	}

	retries := v.GetInt("LEDGER_MAX_RETRIES")
	if retries < 0 {
		return nil, fmt.Errorf("LEDGER_MAX_RETRIES must not be negative, got %d", retries)
	}
	cfg.LedgerMaxRetries = uint64(retries)

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}
