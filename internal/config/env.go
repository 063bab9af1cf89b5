package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

type lookupFunc func(string) (string, bool)

// applyEnv overlays environment variables. SECRET_KEY, EMAIL_ADDRESS and
// EMAIL_PASSWORD keep their historical names; the rest use a LOSTFOUND_ prefix.
func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = n
		return nil
	}

	str("SECRET_KEY", &c.Auth.JWTSecret)
	str("EMAIL_ADDRESS", &c.Email.From)
	str("EMAIL_ADDRESS", &c.Email.Username)
	str("EMAIL_PASSWORD", &c.Email.Password)

	str("LOSTFOUND_ADDR", &c.Server.Addr)
	str("LOSTFOUND_BACKEND", &c.Storage.Backend)
	str("LOSTFOUND_DB", &c.Storage.DBPath)
	str("LOSTFOUND_ITEMS_FILE", &c.Storage.ItemsFile)
	str("LOSTFOUND_UPLOADS_DIR", &c.Storage.UploadsDir)
	str("LOSTFOUND_ADMIN_EMAIL", &c.Auth.AdminEmail)
	str("LOSTFOUND_SMTP_HOST", &c.Email.SMTPHost)
	str("LOSTFOUND_SMTP_USERNAME", &c.Email.Username)
	str("LOSTFOUND_NTFY_TOPIC", &c.Ntfy.Topic)
	if v, ok := lookup("REDIS_URL"); ok && strings.TrimSpace(v) != "" {
		if err := c.applyRedisURL(strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	str("LOSTFOUND_REDIS_ADDR", &c.Redis.Addr)
	str("LOSTFOUND_REDIS_PASSWORD", &c.Redis.Password)
	str("LOSTFOUND_LOG", &c.Log.Path)

	for key, dst := range map[string]*int{
		"LOSTFOUND_SMTP_PORT":     &c.Email.SMTPPort,
		"LOSTFOUND_EMAIL_TIMEOUT": &c.Email.TimeoutSeconds,
		"LOSTFOUND_REDIS_DB":      &c.Redis.DB,
		"LOSTFOUND_REDIS_TTL":     &c.Redis.TTLSeconds,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// applyRedisURL accepts either a redis:// or rediss:// URL, which may carry a
// password and database number, or a bare host:port.
func (c *Config) applyRedisURL(v string) error {
	if !strings.Contains(v, "://") {
		c.Redis.Addr = v
		return nil
	}
	opts, err := redis.ParseURL(v)
	if err != nil {
		return fmt.Errorf("REDIS_URL: %w", err)
	}
	c.Redis.Addr = opts.Addr
	c.Redis.Password = opts.Password
	c.Redis.DB = opts.DB
	return nil
}
