// Package config provides application configuration loaded from environment
// variables, an optional .env file and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      LogConfig
	Admin    AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects the driver and connection string.
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	DSN        string
	Migrations bool // run SQL files instead of AutoMigrate
	Debug      bool
	Seed       bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env           string
	Dev           bool
	SessionSecret string
	SiteTitle     string
}

// LogConfig is handed to logger.Setup.
type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig bootstraps the first administrator on seed.
type AdminConfig struct {
	Email    string
	Password string
}

func (s ServerConfig) Addr() string { return ":" + s.Port }

func (s ServerConfig) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(s.ReadTimeout) * time.Second,
		time.Duration(s.WriteTimeout) * time.Second,
		time.Duration(s.IdleTimeout) * time.Second
}

// IsProduction reports whether APP_ENV names a production deployment.
func (a AppConfig) IsProduction() bool {
	e := strings.ToLower(a.Env)
	return e == "prod" || e == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server_read_timeout", 15)
	v.SetDefault("server_write_timeout", 15)
	v.SetDefault("server_idle_timeout", 60)

	v.SetDefault("database_driver", "postgres")
	v.SetDefault("database_dsn", "")
	v.SetDefault("migrations", false)
	v.SetDefault("db_debug", false)
	v.SetDefault("db_seed", false)

	v.SetDefault("app_env", "development")
	v.SetDefault("dev", false)
	v.SetDefault("session_secret", "")
	v.SetDefault("app_site_title", "Interventi - Finalmente Casa")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
}

// Load reads .env (if present), then configFile (if not empty), then the
// environment, which wins over both.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error loading configuration: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("port"),
			ReadTimeout:  v.GetInt("server_read_timeout"),
			WriteTimeout: v.GetInt("server_write_timeout"),
			IdleTimeout:  v.GetInt("server_idle_timeout"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("database_driver")),
			DSN:        v.GetString("database_dsn"),
			Migrations: ParseBool(v.GetString("migrations")),
			Debug:      ParseBool(v.GetString("db_debug")),
			Seed:       ParseBool(v.GetString("db_seed")),
		},
		App: AppConfig{
			Env:           v.GetString("app_env"),
			Dev:           ParseBool(v.GetString("dev")),
			SessionSecret: v.GetString("session_secret"),
			SiteTitle:     v.GetString("app_site_title"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin_email"),
			Password: v.GetString("admin_password"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.App.IsProduction() && c.App.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required when APP_ENV=%s", c.App.Env)
	}
	return nil
}

// ParseBool accepts "1", "true", "yes" and "on" (any case) as true.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
