package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Templates TemplatesConfig `yaml:"templates"`
	Settings  SettingsConfig  `yaml:"settings"`
	Submit    SubmitConfig    `yaml:"submit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig is optional. Without a host, submitted workouts are not
// stored and the history endpoints are disabled.
type DatabaseConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Name      string `yaml:"name"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	SSLMode   string `yaml:"sslmode"`
	UserLogin string `yaml:"user_login"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// TemplatesConfig selects the template source. The Sheets API is used when
// an api key and spreadsheet id are set, else the CSV URL, else none.
type TemplatesConfig struct {
	SheetsURL     string        `yaml:"sheets_url"`
	APIKey        string        `yaml:"api_key"`
	SpreadsheetID string        `yaml:"spreadsheet_id"`
	SheetName     string        `yaml:"sheet_name"`
	CSVURL        string        `yaml:"csv_url"`
	RedisAddr     string        `yaml:"redis_addr"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

type SettingsConfig struct {
	Path string `yaml:"path"`
}

type SubmitConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies defaults and environment
// variable overrides. Env vars use the prefix REPLOG_ and underscore-separated
// paths:
//
//	REPLOG_SERVER_HOST, REPLOG_SERVER_PORT,
//	REPLOG_DB_HOST, REPLOG_DB_PORT, REPLOG_DB_NAME,
//	REPLOG_DB_USER, REPLOG_DB_PASSWORD, REPLOG_DB_SSLMODE,
//	REPLOG_AUTH_API_KEY,
//	REPLOG_TAILSCALE_ENABLED, REPLOG_TAILSCALE_HOSTNAME,
//	REPLOG_TEMPLATES_API_KEY, REPLOG_TEMPLATES_SPREADSHEET_ID,
//	REPLOG_TEMPLATES_SHEET_NAME, REPLOG_TEMPLATES_CSV_URL,
//	REPLOG_TEMPLATES_REDIS_ADDR,
//	REPLOG_SETTINGS_PATH, REPLOG_SUBMIT_URL, REPLOG_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.UserLogin == "" {
		cfg.Database.UserLogin = "local"
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "replog"
	}
	if cfg.Tailscale.StateDir == "" {
		cfg.Tailscale.StateDir = "tsnet-state"
	}
	if cfg.Templates.SheetName == "" {
		cfg.Templates.SheetName = "Templates"
	}
	if cfg.Templates.CacheTTL == 0 {
		cfg.Templates.CacheTTL = 10 * time.Minute
	}
	if cfg.Settings.Path == "" {
		cfg.Settings.Path = "data/settings.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPLOG_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPLOG_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPLOG_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPLOG_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPLOG_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPLOG_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("REPLOG_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("REPLOG_TEMPLATES_API_KEY"); v != "" {
		cfg.Templates.APIKey = v
	}
	if v := os.Getenv("REPLOG_TEMPLATES_SPREADSHEET_ID"); v != "" {
		cfg.Templates.SpreadsheetID = v
	}
	if v := os.Getenv("REPLOG_TEMPLATES_SHEET_NAME"); v != "" {
		cfg.Templates.SheetName = v
	}
	if v := os.Getenv("REPLOG_TEMPLATES_CSV_URL"); v != "" {
		cfg.Templates.CSVURL = v
	}
	if v := os.Getenv("REPLOG_TEMPLATES_REDIS_ADDR"); v != "" {
		cfg.Templates.RedisAddr = v
	}
	if v := os.Getenv("REPLOG_SETTINGS_PATH"); v != "" {
		cfg.Settings.Path = v
	}
	if v := os.Getenv("REPLOG_SUBMIT_URL"); v != "" {
		cfg.Submit.URL = v
	}
	if v := os.Getenv("REPLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	}
	if c.Templates.SpreadsheetID != "" && c.Templates.APIKey == "" {
		return fmt.Errorf("templates.api_key is required with templates.spreadsheet_id")
	}
	if c.Templates.CacheTTL < 0 {
		return fmt.Errorf("templates.cache_ttl must not be negative")
	}
	return nil
}
