package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Progression ProgressionConfig `yaml:"progression"`
}

type StoreConfig struct {
	Path              string `yaml:"path"`
	KeepCorruptBackup bool   `yaml:"keep_corrupt_backup"`
	SeedExercises     bool   `yaml:"seed_exercises"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// APIKey, when set, must accompany every /api request.
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type ProgressionConfig struct {
	CompletionSchedule string `yaml:"completion_schedule"`
	// FirstDayOfWeek applies until the profile sets its own preference.
	FirstDayOfWeek string `yaml:"first_day_of_week"`
	// Timezone decides calendar days. Empty means the system zone.
	Timezone string `yaml:"timezone"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location loads the configured timezone.
func (p ProgressionConfig) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(p.Timezone)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:              "liftlog.db",
			KeepCorruptBackup: true,
			SeedExercises:     true,
		},
		Server: ServerConfig{Host: "127.0.0.1", Port: 8087},
		Log:    LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
		Progression: ProgressionConfig{
			CompletionSchedule: "@hourly",
			FirstDayOfWeek:     "monday",
		},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error. Env vars
// use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_STORE_PATH, LIFTLOG_STORE_KEEP_CORRUPT_BACKUP, LIFTLOG_STORE_SEED_EXERCISES,
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_SERVER_API_KEY,
//	LIFTLOG_LOG_LEVEL, LIFTLOG_LOG_FILE,
//	LIFTLOG_PROGRESSION_SCHEDULE, LIFTLOG_PROGRESSION_FIRST_DAY_OF_WEEK,
//	LIFTLOG_PROGRESSION_TIMEZONE
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("LIFTLOG_STORE_KEEP_CORRUPT_BACKUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Store.KeepCorruptBackup = b
		}
	}
	if v := os.Getenv("LIFTLOG_STORE_SEED_EXERCISES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Store.SeedExercises = b
		}
	}
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_SERVER_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("LIFTLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LIFTLOG_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("LIFTLOG_PROGRESSION_SCHEDULE"); v != "" {
		cfg.Progression.CompletionSchedule = v
	}
	if v := os.Getenv("LIFTLOG_PROGRESSION_FIRST_DAY_OF_WEEK"); v != "" {
		cfg.Progression.FirstDayOfWeek = v
	}
	if v := os.Getenv("LIFTLOG_PROGRESSION_TIMEZONE"); v != "" {
		cfg.Progression.Timezone = v
	}
}

func (c *Config) validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.File != "" && c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be positive when log.file is set")
	}
	if _, err := cron.Parse(c.Progression.CompletionSchedule); err != nil {
		return fmt.Errorf("progression.completion_schedule: %w", err)
	}
	switch c.Progression.FirstDayOfWeek {
	case "monday", "sunday":
	default:
		return fmt.Errorf("progression.first_day_of_week %q must be monday or sunday", c.Progression.FirstDayOfWeek)
	}
	if _, err := c.Progression.Location(); err != nil {
		return fmt.Errorf("progression.timezone: %w", err)
	}
	return nil
}
