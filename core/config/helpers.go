package config

import (
	"os"
	"strconv"
	"strings"
)

// GetAllSettings returns a map of the settings currently loaded in memory.
// Used by the REST settings endpoint.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_debug":           Global.App.Debug,
		"app_version":         Global.App.Version,
		"ai_provider":         Global.AI.Provider,
		"ai_text_model":       Global.AI.TextModel,
		"ai_image_model":      Global.AI.ImageModel,
		"ai_video_model":      Global.AI.VideoModel,
		"cache_ttl_days":      Global.Cache.TTLDays,
		"cache_max_size_mb":   Global.Cache.MaxSizeMB,
		"retry_max_attempts":  Global.Retry.MaxAttempts,
		"retry_base_delay_ms": Global.Retry.BaseDelayMs,
		"retry_max_delay_ms":  Global.Retry.MaxDelayMs,
		"sync_mode":           Global.Sync.Mode,
		"preload_pool_size":   Global.WorkerPool.Size,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}
