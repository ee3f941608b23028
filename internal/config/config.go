package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string
	MigrationsDir string

	// Offline gateway settings.
	AssetUpstream     string
	CacheVersion      string
	CacheNamePrefix   string
	ManifestPath      string
	OfflinePagePath   string
	APIPathSegment    string
	DisabledHosts     []string
	PreviewHostSuffix string
}

func Load() Config {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/daysegment.db"),
		JWTSecret:     getEnv("JWT_SECRET", "change-this-secret"),
		TokenTTL:      time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),

		AssetUpstream:     getEnv("ASSET_UPSTREAM", "http://localhost:5173"),
		CacheVersion:      getEnv("CACHE_VERSION", "day-segment-tracker-v1"),
		CacheNamePrefix:   getEnv("CACHE_NAME_PREFIX", "day-segment-tracker-"),
		ManifestPath:      getEnv("CACHE_MANIFEST_PATH", "./cache-manifest.yaml"),
		OfflinePagePath:   getEnv("OFFLINE_PAGE_PATH", "/offline.html"),
		APIPathSegment:    getEnv("API_PATH_SEGMENT", "/api/"),
		DisabledHosts:     getEnvList("GATEWAY_DISABLED_HOSTS", []string{"localhost", "127.0.0.1"}),
		PreviewHostSuffix: getEnv("PREVIEW_HOST_SUFFIX", ".preview.daysegment.app"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
