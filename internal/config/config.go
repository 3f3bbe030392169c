// Package config loads timeline service configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Probe    ProbeConfig
	Timeline TimelineConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        // Server port (default: 8080)
	ReadTimeout        time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout       time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout        time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins     []string      // CORS origins (default: *)
	RateLimitPerMinute int           // Requests per minute per client IP (default: 60)
	RateLimitBurst     int           // Burst allowance (default: 10)
}

// ProbeConfig controls how decoded part durations are measured.
type ProbeConfig struct {
	// FFprobePath is the ffprobe binary (default: ffprobe on PATH)
	FFprobePath string
	// PreferFFprobe tries ffprobe before the in-process parser (default: false)
	PreferFFprobe bool
	// MaxConcurrent bounds parts read at once (default: 4)
	MaxConcurrent int
	// Timeout bounds a single probe (default: 30s)
	Timeout time.Duration
}

// TimelineConfig controls timeline reconciliation.
type TimelineConfig struct {
	// SkipPartsWithoutMarkers skips parts that carry no markers instead of failing (default: true)
	SkipPartsWithoutMarkers bool
	// BaseURL resolves part URLs when an openbook carries no download base
	BaseURL string
}

// LoadConfig loads configuration from the process command line.
func LoadConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load registers configuration flags on fs, parses args and builds the config with
// precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// Callers may register their own flags on fs first and read fs.Args() afterwards.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")
	rateLimit := fs.String("rate-limit", "", "Requests per minute per client (default: 60)")
	rateBurst := fs.String("rate-burst", "", "Rate limit burst (default: 10)")

	ffprobePath := fs.String("ffprobe-path", "", "Path to ffprobe binary (default: ffprobe)")
	preferFFprobe := fs.String("prefer-ffprobe", "", "Probe durations with ffprobe first (default: false)")
	probeConcurrency := fs.String("probe-concurrency", "", "Parts read concurrently (default: 4)")
	probeTimeout := fs.String("probe-timeout", "", "Timeout for one duration probe (default: 30s)")

	skipEmpty := fs.String("skip-parts-without-markers", "", "Skip parts without markers (default: true)")
	baseURL := fs.String("base-url", "", "Base URL for part downloads")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:               getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins:     splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
			RateLimitPerMinute: getIntConfigValue(*rateLimit, "RATE_LIMIT_PER_MINUTE", 60),
			RateLimitBurst:     getIntConfigValue(*rateBurst, "RATE_LIMIT_BURST", 10),
		},
		Probe: ProbeConfig{
			FFprobePath:   getConfigValue(*ffprobePath, "FFPROBE_PATH", "ffprobe"),
			PreferFFprobe: getBoolConfigValue(*preferFFprobe, "PREFER_FFPROBE", false),
			MaxConcurrent: getIntConfigValue(*probeConcurrency, "PROBE_MAX_CONCURRENT", 4),
		},
		Timeline: TimelineConfig{
			SkipPartsWithoutMarkers: getBoolConfigValue(*skipEmpty, "SKIP_PARTS_WITHOUT_MARKERS", true),
			BaseURL:                 getConfigValue(*baseURL, "TIMELINE_BASE_URL", ""),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Probe.Timeout, err = getDurationConfigValue(*probeTimeout, "PROBE_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid probe timeout: %w", err)
	}

	if cfg.Probe.FFprobePath, err = expandBinaryPath(cfg.Probe.FFprobePath); err != nil {
		return nil, fmt.Errorf("invalid ffprobe path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Probe.MaxConcurrent < 1 {
		return fmt.Errorf("probe concurrency must be positive, got %d", c.Probe.MaxConcurrent)
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.Probe.Timeout)
	}
	if c.Server.RateLimitPerMinute < 1 || c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got %d/min burst %d",
			c.Server.RateLimitPerMinute, c.Server.RateLimitBurst)
	}

	return nil
}

// expandBinaryPath expands ~ and makes the path absolute. Bare command names are
// left for PATH lookup.
func expandBinaryPath(path string) (string, error) {
	if path == "" || (!strings.ContainsRune(path, filepath.Separator) && !strings.HasPrefix(path, "~")) {
		return path, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
