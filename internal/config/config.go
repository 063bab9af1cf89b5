// Package config loads lostfound settings.
//
// Values are layered: built-in defaults, then the TOML file, then a .env file
// and the process environment, then command-line flags applied by the caller.
// Call Validate once every layer has been applied.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Server contains HTTP listener settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Storage contains persistence locations.
type Storage struct {
	Backend    string `toml:"backend"` // json or sqlite
	DBPath     string `toml:"db_path"`
	ItemsFile  string `toml:"items_file"`
	UploadsDir string `toml:"uploads_dir"`
}

// Auth contains token and bootstrap settings.
type Auth struct {
	JWTSecret  string `toml:"jwt_secret"` // empty: generated and kept in the database
	AdminEmail string `toml:"admin_email"`
}

// Email contains SMTP settings for outgoing mail.
type Email struct {
	SMTPHost       string `toml:"smtp_host"`
	SMTPPort       int    `toml:"smtp_port"`
	From           string `toml:"from"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Ntfy contains push notification settings, used when SMTP is not configured.
type Ntfy struct {
	Topic string `toml:"topic"`
}

// Redis contains match cache settings. An empty address disables the cache.
type Redis struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// Log contains log output settings.
type Log struct {
	Path string `toml:"path"`
}

// Config is the complete lostfound configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Storage Storage `toml:"storage"`
	Auth    Auth    `toml:"auth"`
	Email   Email   `toml:"email"`
	Ntfy    Ntfy    `toml:"ntfy"`
	Redis   Redis   `toml:"redis"`
	Log     Log     `toml:"log"`
}

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "lostfound.toml"

// Load reads the configuration file at path over the defaults, then applies
// .env and environment overrides. A missing file is only an error when path
// was given explicitly. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NotifyTimeout returns the bound on a single notification delivery.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Email.TimeoutSeconds) * time.Second
}

// RedisTTL returns how long cached matches live.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
