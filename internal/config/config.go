package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	IndexFolder     string `toml:"index_folder"`
	QuarantineDir   string `toml:"quarantine_dir"`
	Port            int    `toml:"port"`
	DBDriver        string `toml:"db_driver"`
	DBPath          string `toml:"db_path"`
	DBHost          string `toml:"db_host"`
	DBPort          int    `toml:"db_port"`
	DBUser          string `toml:"db_user"`
	DBPassword      string `toml:"db_password"`
	DBName          string `toml:"db_name"`
	DBMaxConns      int    `toml:"db_max_conns"`
	StartupScan     string `toml:"startup_scan"`
	DuplicatePolicy string `toml:"duplicate_policy"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
}

func defaults() *Config {
	return &Config{
		IndexFolder:     "public",
		QuarantineDir:   "_quarantine",
		Port:            4000,
		DBDriver:        "sqlite3",
		DBPath:          "./data/catalog.db",
		DBHost:          "localhost",
		DBPort:          5432,
		DBUser:          "postgres",
		DBName:          "catalog",
		DBMaxConns:      5,
		StartupScan:     "full",
		DuplicatePolicy: "all",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load builds the configuration from defaults, an optional TOML file named by
// CATALOG_CONFIG, and environment variables, in increasing precedence.
// If a .env file exists in the current directory or a parent, it is loaded
// first; variables already set in the environment take precedence over it.
// The index folder is resolved to an absolute path and created if missing.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := defaults()
	if path := os.Getenv("CATALOG_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(cfg.IndexFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve INDEX_FOLDER: %w", err)
	}
	cfg.IndexFolder = abs
	if err := os.MkdirAll(cfg.IndexFolder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index folder: %w", err)
	}

	if cfg.DBDriver == "sqlite3" {
		// Create the data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// loadDotEnv loads the nearest .env file, checking the current directory
// first and then up to four parents.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

func (c *Config) applyEnv() error {
	c.IndexFolder = getEnv("INDEX_FOLDER", c.IndexFolder)
	c.QuarantineDir = getEnv("QUARANTINE_DIR", c.QuarantineDir)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.StartupScan = getEnv("STARTUP_SCAN", c.StartupScan)
	c.DuplicatePolicy = getEnv("DUPLICATE_POLICY", c.DuplicatePolicy)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	var err error
	if c.Port, err = getEnvInt("PORT", c.Port); err != nil {
		return err
	}
	if c.DBPort, err = getEnvInt("DB_PORT", c.DBPort); err != nil {
		return err
	}
	if c.DBMaxConns, err = getEnvInt("DB_MAX_CONNS", c.DBMaxConns); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or pgx, got %q", c.DBDriver)
	}
	switch c.StartupScan {
	case "full", "initial", "off":
	default:
		return fmt.Errorf("STARTUP_SCAN must be full, initial or off, got %q", c.StartupScan)
	}
	switch strings.ToLower(c.DuplicatePolicy) {
	case "all", "keep-original":
	default:
		return fmt.Errorf("DUPLICATE_POLICY must be all or keep-original, got %q", c.DuplicatePolicy)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be greater than 0")
	}
	if strings.TrimSpace(c.IndexFolder) == "" {
		return fmt.Errorf("INDEX_FOLDER is required")
	}
	if c.QuarantineDir == "" || strings.ContainsAny(c.QuarantineDir, `/\`) {
		return fmt.Errorf("QUARANTINE_DIR must be a single directory name, got %q", c.QuarantineDir)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
