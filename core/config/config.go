package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        Server
	Paths      PathsConfig
	Database   DatabaseConfig
	AI         AIConfig
	Cache      CacheConfig
	Retry      RetryConfig
	Sync       SyncConfig
	WorkerPool WorkerPoolConfig
	APIKeys    APIKeysConfig
}

type Server struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	BaseUrl            string
	TrustedProxies     []string
	CorsAllowedOrigins []string
	ServerID           string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type AIConfig struct {
	Provider   string // gemini | openai
	TextModel  string
	ImageModel string
	VideoModel string
}

type CacheConfig struct {
	TTLDays   int
	MaxSizeMB int64
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelayMs int
	MaxDelayMs  int
}

type SyncConfig struct {
	Mode       string // none | valkey | webhook
	WebhookURL string
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

type APIKeysConfig struct {
	Gemini string
	OpenAI string
}

// Global provides access to the loaded configuration globally (Migration Helper)
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := Server{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "chronolens.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "chronolens:"),
	}

	aiCfg := AIConfig{
		Provider:   getEnv("AI_PROVIDER", "gemini"),
		TextModel:  getEnv("AI_TEXT_MODEL", ""),
		ImageModel: getEnv("AI_IMAGE_MODEL", ""),
		VideoModel: getEnv("AI_VIDEO_MODEL", ""),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Database: dbCfg,
		AI:       aiCfg,
		Cache: CacheConfig{
			TTLDays:   getEnvInt("CACHE_TTL_DAYS", 30),
			MaxSizeMB: getEnvInt64("CACHE_MAX_SIZE_MB", 50),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			BaseDelayMs: getEnvInt("RETRY_BASE_DELAY_MS", 1000),
			MaxDelayMs:  getEnvInt("RETRY_MAX_DELAY_MS", 8000),
		},
		Sync: SyncConfig{
			Mode:       getEnv("SYNC_MODE", "none"),
			WebhookURL: getEnv("SYNC_WEBHOOK_URL", ""),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("PRELOAD_WORKER_POOL_SIZE", 4),
			QueueSize: getEnvInt("PRELOAD_WORKER_QUEUE_SIZE", 64),
		},
		APIKeys: APIKeysConfig{
			Gemini: getEnv("GEMINI_API_KEY", ""),
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
	}

	Global = cfg
	return cfg, nil
}

// HasAPICredential reports whether a usable generation credential is
// configured for the selected provider.
func (c *Config) HasAPICredential() bool {
	switch c.AI.Provider {
	case "openai":
		return c.APIKeys.OpenAI != ""
	default:
		return c.APIKeys.Gemini != ""
	}
}
