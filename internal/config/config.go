package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Tickets  TicketsConfig
	Features FeatureConfig
	Audit    AuditConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StorageConfig selects and configures the document store backend.
type StorageConfig struct {
	Backend        string
	DataDir        string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	PostgresDSN    string
}

// TicketsConfig holds ticket workflow settings and platform references.
type TicketsConfig struct {
	MaxPerUser     int
	CategoryID     string
	LogChannelID   string
	SupportRoleID  string
	AdminRoleID    string
	PanelChannelID string
}

// FeatureConfig toggles optional workflow behavior.
type FeatureConfig struct {
	TranscriptDM   bool
	RatingEnabled  bool
	LogAllMessages bool
}

// AuditConfig gates per-action audit-log notifications.
type AuditConfig struct {
	TicketCreation bool
	TicketClose    bool
	TicketClaim    bool
	TicketRating   bool
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := getEnv("STORAGE_BACKEND", BackendFile)
	switch backend {
	case BackendFile, BackendRedis, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Backend:        backend,
			DataDir:        getEnv("DATA_DIR", "data"),
			RedisAddr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword:  os.Getenv("REDIS_PASSWORD"),
			RedisDB:        redisDB,
			RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "support-desk"),
			PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		},
		Tickets: TicketsConfig{
			MaxPerUser:     getEnvAsInt("MAX_TICKETS_PER_USER", 3),
			CategoryID:     os.Getenv("TICKET_CATEGORY_ID"),
			LogChannelID:   os.Getenv("TICKET_LOG_CHANNEL_ID"),
			SupportRoleID:  os.Getenv("SUPPORT_ROLE_ID"),
			AdminRoleID:    os.Getenv("ADMIN_ROLE_ID"),
			PanelChannelID: os.Getenv("PANEL_CHANNEL_ID"),
		},
		Features: FeatureConfig{
			TranscriptDM:   getEnvAsBool("TRANSCRIPT_DM_ENABLED", false),
			RatingEnabled:  getEnvAsBool("RATING_ENABLED", false),
			LogAllMessages: getEnvAsBool("LOG_ALL_MESSAGES", false),
		},
		Audit: AuditConfig{
			TicketCreation: getEnvAsBool("LOG_TICKET_CREATION", true),
			TicketClose:    getEnvAsBool("LOG_TICKET_CLOSE", true),
			TicketClaim:    getEnvAsBool("LOG_TICKET_CLAIM", true),
			TicketRating:   getEnvAsBool("LOG_TICKET_RATING", true),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Storage.Backend == BackendPostgres && cfg.Storage.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN required for postgres backend")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
