package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	appNameVar     = "APP_NAME"
	baseURLVar     = "API_BASE_URL"
	folderEnvVar   = "FOLDER"
	httpTimeoutVar = "HTTP_TIMEOUT"
	refreshLeadVar = "REFRESH_LEAD"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Storefront")
}

// GetBaseURL returns the backend API origin, e.g. "https://api.example.com".
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:5000")
}

// GetDataFolder returns the directory holding the session files. Defaults to
// a per-user folder so sibling CLI invocations share one session.
func (EnvVars) GetDataFolder() string {
	if folder := GetEnv(folderEnvVar, ""); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".storefront")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	return getDuration(httpTimeoutVar, 30*time.Second)
}

// GetRefreshLead returns how far before token expiry the client refreshes
// proactively. Zero disables proactive refresh.
func (EnvVars) GetRefreshLead() time.Duration {
	return getDuration(refreshLeadVar, 0)
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
