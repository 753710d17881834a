package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the web process and the CLI.
type Config struct {
	Port           string        `yaml:"port"`            // HTTP listen port (e.g., "3000")
	BackendURL     string        `yaml:"backend_url"`     // backend origin prefixed to every API path
	BackendTimeout time.Duration `yaml:"backend_timeout"` // 0 keeps the platform default (no timeout)
	BreakerEnabled bool          `yaml:"breaker_enabled"` // trip on repeated transport failures
	SessionKey     string        `yaml:"session_key"`     // CSRF session cookie signing key
	CookieSecure   bool          `yaml:"cookie_secure"`   // Secure flag on cookies we write
	CookieSameSite string        `yaml:"cookie_samesite"` // SameSite policy: Strict/Lax/None
	LogDir         string        `yaml:"log_dir"`         // directory to write application logs; empty = stdout only
	LogLevel       string        `yaml:"log_level"`       // zerolog level name
	LogFormat      string        `yaml:"log_format"`      // json|console
	RedisURL       string        `yaml:"redis_url"`       // empty disables shared dispatch stats
	AllowedOrigins []string      `yaml:"allowed_origins"` // allowed origins for CORS/CSRF origin check
	AuthRatePerMin int           `yaml:"auth_rate_per_min"`
	TrustedProxies []string      `yaml:"trusted_proxies"` // proxies allowed to set X-Forwarded-For; empty = none
	CookieString   string        `yaml:"cookie"`      // raw cookie header for the CLI
	CookieFile     string        `yaml:"cookie_file"` // file the CLI keeps its cookie string in
}

// Load populates Config from environment variables with sane defaults.
// When CONFIG_FILE points to a YAML document its non-zero fields win.
func Load() (Config, error) {
	cfg := Config{
		Port:           firstNonEmpty(os.Getenv("PORT"), "3000"),
		BackendURL:     firstNonEmpty(os.Getenv("BACKEND_URL"), os.Getenv("NEXT_PUBLIC_BACKEND_URL"), "http://localhost:8000"),
		BackendTimeout: durationFromEnv("BACKEND_TIMEOUT", 0),
		BreakerEnabled: boolFromEnv("BREAKER_ENABLED", false),
		SessionKey:     firstNonEmpty(os.Getenv("SESSION_KEY"), "change-this-session-key"),
		CookieSecure:   boolFromEnv("COOKIE_SECURE", false),
		CookieSameSite: firstNonEmpty(os.Getenv("COOKIE_SAMESITE"), "Lax"),
		LogDir:         os.Getenv("LOG_DIR"),
		LogLevel:       firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:      firstNonEmpty(os.Getenv("LOG_FORMAT"), "json"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AllowedOrigins: parseCSV(os.Getenv("ALLOWED_ORIGINS")),
		AuthRatePerMin: intFromEnv("AUTH_RATE_PER_MIN", 30),
		TrustedProxies: parseCSV(os.Getenv("TRUSTED_PROXIES")),
		CookieString:   os.Getenv("MIROTEKA_COOKIE"),
		CookieFile:     firstNonEmpty(os.Getenv("MIROTEKA_COOKIE_FILE"), defaultCookieFile()),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Gateway extracts the dispatcher settings.
func (c Config) Gateway() GatewayConfig {
	return GatewayConfig{
		Origin:         c.BackendURL,
		Timeout:        c.BackendTimeout,
		BreakerEnabled: c.BreakerEnabled,
	}
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	overlayString(&cfg.Port, file.Port)
	overlayString(&cfg.BackendURL, file.BackendURL)
	overlayString(&cfg.SessionKey, file.SessionKey)
	overlayString(&cfg.CookieSameSite, file.CookieSameSite)
	overlayString(&cfg.LogDir, file.LogDir)
	overlayString(&cfg.LogLevel, file.LogLevel)
	overlayString(&cfg.LogFormat, file.LogFormat)
	overlayString(&cfg.RedisURL, file.RedisURL)
	overlayString(&cfg.CookieString, file.CookieString)
	overlayString(&cfg.CookieFile, file.CookieFile)
	if file.BackendTimeout > 0 {
		cfg.BackendTimeout = file.BackendTimeout
	}
	if file.BreakerEnabled {
		cfg.BreakerEnabled = true
	}
	if file.CookieSecure {
		cfg.CookieSecure = true
	}
	if len(file.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = file.AllowedOrigins
	}
	if len(file.TrustedProxies) > 0 {
		cfg.TrustedProxies = file.TrustedProxies
	}
	if file.AuthRatePerMin > 0 {
		cfg.AuthRatePerMin = file.AuthRatePerMin
	}
	return nil
}

func overlayString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func defaultCookieFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".miroteka-cookie"
	}
	return filepath.Join(dir, "miroteka", "cookie")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// boolFromEnv reads a boolean from env var name, falling back to defaultVal when empty or invalid.
func boolFromEnv(name string, defaultVal bool) bool {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// intFromEnv reads an int from env var name, falling back to defaultVal when empty or invalid.
func intFromEnv(name string, defaultVal int) int {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// durationFromEnv accepts Go durations ("5s") or plain milliseconds ("5000").
func durationFromEnv(name string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}

// parseCSV splits comma-separated list and trims spaces; empty entries are skipped.
func parseCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
