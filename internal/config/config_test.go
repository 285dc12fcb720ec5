package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    rune
		wantErr bool
	}{
		{"comma lowercase", "comma", ',', false},
		{"comma uppercase", "COMMA", ',', false},
		{"csv", "csv", ',', false},
		{"tab lowercase", "tab", '\t', false},
		{"tsv", "tsv", '\t', false},
		{"auto", "auto", 0, false},
		{"invalid", "semicolon", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDelimiter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDelimiter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"sqlite", DriverSQLite, false},
		{"SQLite3", DriverSQLite, false},
		{"", DriverSQLite, false},
		{"mysql", DriverMySQL, false},
		{" MySQL ", DriverMySQL, false},
		{"postgres", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDriver(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDriver(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDriver(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func validConfig() Config {
	return Config{
		Driver:    DriverSQLite,
		CSVPath:   "data.csv",
		APIKey:    "key",
		MaxTokens: 1024,
		Delimiter: "auto",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"missing csv", func(c *Config) { c.CSVPath = "" }, true},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, true},
		{"bad driver", func(c *Config) { c.Driver = "oracle" }, true},
		{"bad delimiter", func(c *Config) { c.Delimiter = "pipe" }, true},
		{"mysql missing host", func(c *Config) {
			c.Driver = DriverMySQL
			c.User = "remi"
			c.Database = "sales"
		}, true},
		{"mysql complete", func(c *Config) {
			c.Driver = DriverMySQL
			c.Host = "localhost"
			c.User = "remi"
			c.Database = "sales"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want %q", cfg.Driver, DriverSQLite)
	}
	if cfg.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want 1024", cfg.MaxTokens)
	}
	if cfg.Port != 3306 {
		t.Errorf("Port = %d, want 3306", cfg.Port)
	}
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remi.yaml")
	content := "driver: mysql\nhost: db.internal\nuser: analyst\ndatabase: sales\ntable: orders\nmax_tokens: 512\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("REMI_API_KEY", "from-env")
	t.Setenv("REMI_TABLE", "env_table")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("table", "", "")
	flags.String("csv", "", "")
	flags.Int("max-tokens", 1024, "")
	if err := flags.Parse([]string{"--table", "flag_table"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Driver != DriverMySQL || cfg.Host != "db.internal" || cfg.Database != "sales" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "from-env")
	}
	if cfg.Table != "flag_table" {
		t.Errorf("Table = %q, want flag value to win over env", cfg.Table)
	}
	if cfg.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want unset flag to leave file value 512", cfg.MaxTokens)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}
