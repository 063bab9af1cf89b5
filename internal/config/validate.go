package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	return c.validateRedis()
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if !strings.Contains(c.Auth.AdminEmail, "@") {
		return fmt.Errorf("auth.admin_email %q is not an e-mail address", c.Auth.AdminEmail)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "json":
		if strings.TrimSpace(c.Storage.ItemsFile) == "" {
			return errors.New("storage.items_file must be set for the json backend")
		}
	case "sqlite":
	default:
		return fmt.Errorf("storage.backend must be \"json\" or \"sqlite\", got %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.DBPath) == "" {
		return errors.New("storage.db_path must be set")
	}
	if strings.TrimSpace(c.Storage.UploadsDir) == "" {
		return errors.New("storage.uploads_dir must be set")
	}
	return nil
}

func (c *Config) validateEmail() error {
	if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("email.smtp_port %d out of range", c.Email.SMTPPort)
	}
	if c.Email.TimeoutSeconds <= 0 {
		return errors.New("email.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRedis() error {
	if c.Redis.DB < 0 {
		return errors.New("redis.db must not be negative")
	}
	if c.Redis.TTLSeconds < 0 {
		return errors.New("redis.ttl_seconds must not be negative")
	}
	return nil
}
