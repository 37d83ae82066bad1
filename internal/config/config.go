package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/me/sheetsync/internal/logging"
)

// ServerConfig holds configuration for the sheetsync server.
type ServerConfig struct {
	Addr      string             `yaml:"addr" toml:"addr"`             // Listen address (default ":8000")
	LogLevel  string             `yaml:"log_level" toml:"log_level"`   // Log level: debug, info, warn, error
	LogFormat string             `yaml:"log_format" toml:"log_format"` // Log format: text, json
	LogFile   logging.FileConfig `yaml:"log_file" toml:"log_file"`     // Optional rotating log file

	APIKey             string   `yaml:"api_key" toml:"api_key"`                             // Required X-API-Key value
	AllowedOrigins     []string `yaml:"allowed_origins" toml:"allowed_origins"`             // CORS origins; "*" allows all
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" toml:"rate_limit_per_minute"` // Per client IP, on POST endpoints

	DefaultSheetName    string `yaml:"default_sheet_name" toml:"default_sheet_name"`
	DefaultSyncInterval int    `yaml:"default_sync_interval" toml:"default_sync_interval"` // minutes
	MaxSyncInterval     int    `yaml:"max_sync_interval" toml:"max_sync_interval"`         // minutes

	StopTimeout  time.Duration `yaml:"stop_timeout" toml:"stop_timeout"`
	CycleTimeout time.Duration `yaml:"cycle_timeout" toml:"cycle_timeout"`
	HistorySize  int           `yaml:"history_size" toml:"history_size"`

	SQLiteDir string `yaml:"sqlite_dir" toml:"sqlite_dir"` // SQLite destinations are created under this directory
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:                ":8000",
		LogLevel:            "info",
		LogFormat:           "text",
		AllowedOrigins:      []string{"*"},
		RateLimitPerMinute:  10,
		DefaultSheetName:    "Sheet1",
		DefaultSyncInterval: 5,
		MaxSyncInterval:     1440,
		StopTimeout:         5 * time.Second,
		CycleTimeout:        10 * time.Minute,
		HistorySize:         50,
		SQLiteDir:           "data",
	}
}

// LoadFile overlays the YAML or TOML file at path onto cfg.
// The format is chosen by extension; anything but .toml is read as YAML.
func LoadFile(path string, cfg *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays SHEETSYNC_* environment variables onto cfg.
// lookup is usually os.LookupEnv.
func ApplyEnv(cfg *ServerConfig, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, v)
		}
		*dst = n
		return nil
	}

	str("SHEETSYNC_ADDR", &cfg.Addr)
	str("SHEETSYNC_API_KEY", &cfg.APIKey)
	str("SHEETSYNC_DEFAULT_SHEET_NAME", &cfg.DefaultSheetName)
	str("SHEETSYNC_LOG_LEVEL", &cfg.LogLevel)
	str("SHEETSYNC_LOG_FORMAT", &cfg.LogFormat)
	str("SHEETSYNC_LOG_FILE", &cfg.LogFile.Path)
	str("SHEETSYNC_SQLITE_DIR", &cfg.SQLiteDir)

	if v, ok := lookup("SHEETSYNC_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = ParseOrigins(v)
	}
	if v, ok := lookup("SHEETSYNC_DEBUG"); ok {
		if debug, _ := strconv.ParseBool(v); debug {
			cfg.LogLevel = "debug"
		}
	}

	return errors.Join(
		num("SHEETSYNC_RATE_LIMIT_PER_MINUTE", &cfg.RateLimitPerMinute),
		num("SHEETSYNC_DEFAULT_SYNC_INTERVAL", &cfg.DefaultSyncInterval),
		num("SHEETSYNC_MAX_SYNC_INTERVAL", &cfg.MaxSyncInterval),
	)
}

// ParseOrigins splits a comma-separated origin list. "*" stays a single entry.
func ParseOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports every invalid field.
func (c ServerConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, errors.New("api_key must be set (SHEETSYNC_API_KEY)"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit_per_minute must be positive, got %d", c.RateLimitPerMinute))
	}
	if c.MaxSyncInterval < 1 {
		errs = append(errs, fmt.Errorf("max_sync_interval must be at least 1 minute, got %d", c.MaxSyncInterval))
	}
	if c.DefaultSyncInterval < 1 || c.DefaultSyncInterval > c.MaxSyncInterval {
		errs = append(errs, fmt.Errorf("default_sync_interval must be within [1, %d], got %d", c.MaxSyncInterval, c.DefaultSyncInterval))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, errors.New("stop_timeout must be positive"))
	}
	if c.CycleTimeout <= 0 {
		errs = append(errs, errors.New("cycle_timeout must be positive"))
	}
	if c.HistorySize <= 0 {
		errs = append(errs, errors.New("history_size must be positive"))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("allowed_origins must not be empty"))
	}
	if strings.TrimSpace(c.SQLiteDir) == "" {
		errs = append(errs, errors.New("sqlite_dir must be set"))
	}
	return errors.Join(errs...)
}
