// Package config resolves settings with the precedence flag > environment >
// .env file > default
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/james-see/jazzshed/pkg/harmony"
)

// Config holds the application configuration
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Store    StoreConfig
	Server   ServerConfig
	Practice PracticeConfig
	Advice   AdviceConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging settings
type LoggerConfig struct {
	Level  string
	Format string // json, pretty, or empty for auto
}

// StoreConfig holds practice-journal storage settings
type StoreConfig struct {
	DataDir string
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port string
}

// PracticeConfig holds defaults for the practice views
type PracticeConfig struct {
	Transposition harmony.Transposition
}

// AdviceConfig holds settings for the coaching service
type AdviceConfig struct {
	APIKey  string // empty disables the remote service
	Model   string
	Timeout time.Duration
	RPS     float64 // requests per second allowed to the model
}

// Flags carries command-line values. Empty fields fall through to the
// environment.
type Flags struct {
	Env           string
	LogLevel      string
	LogFormat     string
	DataDir       string
	Port          string
	Transposition string
	EnvFile       string
}

// Load builds a Config from flags, environment variables, an optional .env
// file and defaults
func Load(f Flags) (*Config, error) {
	envFile := f.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is normal.
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(f.Env, "JAZZSHED_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(f.LogLevel, "JAZZSHED_LOG_LEVEL", "info"),
			Format: getConfigValue(f.LogFormat, "JAZZSHED_LOG_FORMAT", ""),
		},
		Store: StoreConfig{
			DataDir: getConfigValue(f.DataDir, "JAZZSHED_DATA_DIR", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(f.Port, "JAZZSHED_PORT", "8080"),
		},
		Practice: PracticeConfig{
			Transposition: harmony.ParseTransposition(getConfigValue(f.Transposition, "JAZZSHED_TRANSPOSITION", "C")),
		},
		Advice: AdviceConfig{
			APIKey: getConfigValue("", "GEMINI_API_KEY", os.Getenv("API_KEY")),
			Model:  getConfigValue("", "JAZZSHED_GEMINI_MODEL", "gemini-3-flash-preview"),
		},
	}

	timeoutStr := getConfigValue("", "JAZZSHED_ADVICE_TIMEOUT", "20s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid advice timeout %q: %w", timeoutStr, err)
	}
	cfg.Advice.Timeout = timeout

	rpsStr := getConfigValue("", "JAZZSHED_ADVICE_RPS", "0.5")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid advice rate %q: %w", rpsStr, err)
	}
	cfg.Advice.RPS = rps

	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all values are present and in range
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Store.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", c.Server.Port)
	}

	if c.Advice.Timeout <= 0 {
		return errors.New("advice timeout must be positive")
	}
	if c.Advice.RPS <= 0 {
		return errors.New("advice rate must be positive")
	}
	return nil
}

// AdviceEnabled reports whether an API key is configured
func (c *Config) AdviceEnabled() bool {
	return c.Advice.APIKey != ""
}

// JournalPath is the badger directory inside the data dir
func (c *Config) JournalPath() string {
	return filepath.Join(c.Store.DataDir, "journal")
}

func (c *Config) expandDataDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Store.DataDir, filepath.Join(homeDir, ".jazzshed"))
	if err != nil {
		return err
	}
	c.Store.DataDir = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute. An empty path yields
// defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
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

// getConfigValue returns the first non-empty value from flag, env var, or default
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// loadEnvFile sets KEY=value pairs from path without overriding variables
// that are already set
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the user
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
