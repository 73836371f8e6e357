package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	ListenAddr        string
	APIURL            string
	CacheBackend      string
	CachePath         string
	PhotoStagingPath  string
	TemplateBaseURL   string
	DialogDefaultView string
	RegionsFile       string
	LogLevel          string
	LogFormat         string
	LogFile           string
	HTTPTimeout       time.Duration
}

func Load() *Config {
	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		APIURL:            getEnv("API_URL", "http://localhost:5678/api"),
		CacheBackend:      getEnv("CACHE_BACKEND", "memory"),
		CachePath:         getEnv("CACHE_PATH", "portfolio-cache.db"),
		PhotoStagingPath:  getEnv("PHOTO_STAGING_PATH", filepath.Join(os.TempDir(), "portfolio-staging")),
		TemplateBaseURL:   getEnv("TEMPLATE_BASE_URL", ""),
		DialogDefaultView: getEnv("DIALOG_DEFAULT_VIEW", "galleryView"),
		RegionsFile:       getEnv("REGIONS_FILE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", ""),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getDuration falls back to defaultVal when the variable is unset or unparsable.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
