// Package config loads AskSQL settings from defaults, a YAML file, the
// environment, and command-line flags, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/logging"
)

// ErrMissingAPIKey is returned when the selected LLM provider needs a key and none is set.
var ErrMissingAPIKey = errors.New("LLM API key not set (set LLM_API_KEY or GOOGLE_API_KEY)")

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Assistant AssistantConfig `yaml:"assistant"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address    string        `yaml:"address"`     // Listen address (default: :8080)
	AskTimeout time.Duration `yaml:"ask_timeout"` // Upper bound for one question, all retries included (default: 5m)
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver       string        `yaml:"driver"`        // sqlserver, postgres, pgx or sqlite (default: sqlserver)
	Server       string        `yaml:"server"`        // Server identifier; file path for sqlite
	Name         string        `yaml:"name"`          // Database name (default: master)
	DSN          string        `yaml:"dsn"`           // Full DSN; overrides Server and Name when set
	QueryTimeout time.Duration `yaml:"query_timeout"` // Per-statement timeout (default: 30s)
}

// LLMConfig holds language-model settings
type LLMConfig struct {
	Provider  string        `yaml:"provider"`   // gemini, openai, anthropic or ollama (default: gemini)
	APIKey    string        `yaml:"api_key"`    // Prefer LLM_API_KEY over storing this in the file
	Model     string        `yaml:"model"`      // Provider-specific model name
	BaseURL   string        `yaml:"base_url"`   // Override for proxies or compatible APIs
	Timeout   time.Duration `yaml:"timeout"`    // HTTP timeout per call (default: 60s)
	MaxTokens int           `yaml:"max_tokens"` // Max tokens per response (0 = provider default)
}

// AssistantConfig holds correction loop settings
type AssistantConfig struct {
	MaxCorrections int `yaml:"max_corrections"` // Repair rounds after the first failure (default: 5)
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error (default: info)
}

// CLIFlags carries command-line overrides. Zero values mean "not set".
type CLIFlags struct {
	Address        string
	Driver         string
	Server         string
	Database       string
	DSN            string
	Provider       string
	Model          string
	MaxCorrections int
	LogLevel       string
}

// LoadConfig loads configuration with proper priority:
// 1. Command line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Hard-coded defaults (lowest priority)
func LoadConfig(configPath string, flags CLIFlags) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvironmentVariables(cfg)
	applyCLIFlags(cfg, flags)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:    ":8080",
			AskTimeout: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Driver:       executor.DriverSQLServer,
			Name:         "master",
			QueryTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Timeout:  60 * time.Second,
		},
		Assistant: AssistantConfig{
			MaxCorrections: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// loadConfigFile decodes path over cfg; keys absent from the file keep their current value.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func setStringFromEnv(dest *string, keys ...string) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dest = v
			return
		}
	}
}

func setIntFromEnv(dest *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Warn("ignoring invalid integer in environment", "key", key, "value", v)
		return
	}
	*dest = n
}

func setDurationFromEnv(dest *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logging.Warn("ignoring invalid duration in environment", "key", key, "value", v)
		return
	}
	*dest = d
}

func applyEnvironmentVariables(cfg *Config) {
	setStringFromEnv(&cfg.Server.Address, "ADDR")
	setDurationFromEnv(&cfg.Server.AskTimeout, "ASK_TIMEOUT")

	setStringFromEnv(&cfg.Database.Driver, "DB_DRIVER")
	setStringFromEnv(&cfg.Database.Server, "DB_SERVER", "server")
	setStringFromEnv(&cfg.Database.Name, "DB_NAME")
	setStringFromEnv(&cfg.Database.DSN, "DB_DSN")
	setDurationFromEnv(&cfg.Database.QueryTimeout, "QUERY_TIMEOUT")

	setStringFromEnv(&cfg.LLM.Provider, "LLM_PROVIDER")
	setStringFromEnv(&cfg.LLM.APIKey, "LLM_API_KEY")
	if cfg.LLM.APIKey == "" && strings.EqualFold(cfg.LLM.Provider, "gemini") {
		setStringFromEnv(&cfg.LLM.APIKey, "GOOGLE_API_KEY")
	}
	setStringFromEnv(&cfg.LLM.Model, "LLM_MODEL")
	setStringFromEnv(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setDurationFromEnv(&cfg.LLM.Timeout, "LLM_TIMEOUT")
	setIntFromEnv(&cfg.LLM.MaxTokens, "LLM_MAX_TOKENS")

	setIntFromEnv(&cfg.Assistant.MaxCorrections, "MAX_CORRECTIONS")

	setStringFromEnv(&cfg.Log.Level, "ASKSQL_LOG_LEVEL")
}

func applyCLIFlags(cfg *Config, flags CLIFlags) {
	if flags.Address != "" {
		cfg.Server.Address = flags.Address
	}
	if flags.Driver != "" {
		cfg.Database.Driver = flags.Driver
	}
	if flags.Server != "" {
		cfg.Database.Server = flags.Server
	}
	if flags.Database != "" {
		cfg.Database.Name = flags.Database
	}
	if flags.DSN != "" {
		cfg.Database.DSN = flags.DSN
	}
	if flags.Provider != "" {
		cfg.LLM.Provider = flags.Provider
	}
	if flags.Model != "" {
		cfg.LLM.Model = flags.Model
	}
	if flags.MaxCorrections != 0 {
		cfg.Assistant.MaxCorrections = flags.MaxCorrections
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
}

func validateConfig(cfg *Config) error {
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	if !slices.Contains(executor.SupportedDrivers, cfg.Database.Driver) {
		return fmt.Errorf("unsupported database driver %q (supported: %s)",
			cfg.Database.Driver, strings.Join(executor.SupportedDrivers, ", "))
	}
	if cfg.Database.DSN == "" && cfg.Database.Server == "" {
		return errors.New("database server is required (set DB_SERVER or database.server)")
	}
	if cfg.Assistant.MaxCorrections <= 0 {
		return fmt.Errorf("max corrections must be positive, got %d", cfg.Assistant.MaxCorrections)
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "ollama" {
		return ErrMissingAPIKey
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// DataSourceName returns the configured DSN, or builds one from Server and Name.
func (d DatabaseConfig) DataSourceName() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}
	return executor.DSN(d.Driver, d.Server, d.Name)
}
