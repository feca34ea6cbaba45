package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values for the client.
// Nothing here is secret: the only credential the client ever holds is the
// bearer token obtained at login, which is kept in the session, not here.
type AppConfig struct {
	// Remote API
	APIBaseURL        string
	ConnectTimeoutSec int
	RequestTimeoutSec int

	// Excel export
	ExportDir string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = godotenv.Load()

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	cfg = AppConfig{}
	loaded = false
}

// loadJSONConfig reads a grouped JSON file into cfg if present. A missing file
// is not an error; invalid JSON is.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		switch t := m[key].(type) {
		case float64:
			return int(t)
		case int:
			return t
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}

	if api, ok := raw["api"].(map[string]any); ok {
		out.APIBaseURL = getString(api, "BaseURL")
		out.ConnectTimeoutSec = getInt(api, "ConnectTimeoutSec")
		out.RequestTimeoutSec = getInt(api, "RequestTimeoutSec")
	}
	if ex, ok := raw["export"].(map[string]any); ok {
		out.ExportDir = getString(ex, "Dir")
	}
	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:8000/api"
	}
	if c.ConnectTimeoutSec == 0 {
		c.ConnectTimeoutSec = 10
	}
	if c.RequestTimeoutSec == 0 {
		// Content generation round trips through a search API and an LLM.
		c.RequestTimeoutSec = 120
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("API_CONNECT_TIMEOUT_SEC"); v != "" {
		c.ConnectTimeoutSec = mustParseInt(v)
	}
	if v := os.Getenv("API_REQUEST_TIMEOUT_SEC"); v != "" {
		c.RequestTimeoutSec = mustParseInt(v)
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		c.ExportDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return i
}
