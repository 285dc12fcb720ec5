// Package config provides configuration types and loading for remi.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported datastore drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// EnvPrefix is the prefix for environment overrides, e.g. REMI_API_KEY.
const EnvPrefix = "REMI"

// Config holds all configuration options for remi.
type Config struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	DBPath   string `mapstructure:"db"` // SQLite file; empty means a temporary database

	CSVPath   string `mapstructure:"csv"`
	Table     string `mapstructure:"table"`
	Delimiter string `mapstructure:"delimiter"`

	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`

	Python     string `mapstructure:"python"`
	ChartDir   string `mapstructure:"chart_dir"`
	OutputFile string `mapstructure:"output"`

	Banner      string `mapstructure:"banner"`
	Suggest     bool   `mapstructure:"suggest"`
	HistoryFile string `mapstructure:"history_file"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

var defaults = map[string]interface{}{
	"driver":       DriverSQLite,
	"host":         "",
	"port":         3306,
	"user":         "",
	"password":     "",
	"database":     "",
	"db":           "",
	"csv":          "",
	"table":        "",
	"delimiter":    "auto",
	"api_key":      "",
	"base_url":     "",
	"model":        "gpt-4o-mini",
	"max_tokens":   1024,
	"python":       "python3",
	"chart_dir":    ".",
	"output":       "",
	"banner":       "",
	"suggest":      false,
	"history_file": "",
	"log_level":    "warn",
	"log_format":   "console",
	"log_file":     "",
}

// Load reads configuration from, in increasing precedence: defaults, the
// optional YAML file at path, a .env file in the working directory, REMI_*
// environment variables, and any flag in flags that was set explicitly.
// Flag names map onto keys by replacing '-' with '_'.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := defaults[key]; !known || !f.Changed {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	return cfg, nil
}

// ParseDelimiter converts a delimiter string to a rune.
// Valid values: "comma", "csv", "tab", "tsv", "auto".
// Returns 0 for auto-detection.
func ParseDelimiter(delimiterStr string) (rune, error) {
	switch strings.ToLower(delimiterStr) {
	case "comma", "csv":
		return ',', nil
	case "tab", "tsv":
		return '\t', nil
	case "auto":
		return 0, nil
	default:
		return 0, fmt.Errorf("invalid delimiter: %s (use 'comma', 'tab', or 'auto')", delimiterStr)
	}
}

// ParseDriver normalizes a driver name.
func ParseDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3", "":
		return DriverSQLite, nil
	case "mysql":
		return DriverMySQL, nil
	default:
		return "", fmt.Errorf("invalid driver: %s (use 'sqlite' or 'mysql')", driver)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	driver, err := ParseDriver(c.Driver)
	if err != nil {
		return err
	}
	c.Driver = driver

	if c.CSVPath == "" {
		return fmt.Errorf("must specify a CSV file")
	}
	if driver == DriverMySQL {
		var missing []string
		if c.Host == "" {
			missing = append(missing, "host")
		}
		if c.User == "" {
			missing = append(missing, "user")
		}
		if c.Database == "" {
			missing = append(missing, "database")
		}
		if len(missing) > 0 {
			return fmt.Errorf("mysql driver requires: %s", strings.Join(missing, ", "))
		}
	}
	if c.APIKey == "" {
		return fmt.Errorf("must specify an API key (--api-key or %s_API_KEY)", EnvPrefix)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	return nil
}
