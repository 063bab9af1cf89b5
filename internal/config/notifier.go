package config

import (
	"log/slog"
	"strings"

	"github.com/erazemk/lostfound/internal/notify"
)

// BuildNotifier picks the delivery backend: SMTP when a sender and password
// are configured, otherwise ntfy when a topic is set, otherwise the log.
func (c *Config) BuildNotifier(logger *slog.Logger) notify.Notifier {
	e := c.Email
	if e.SMTPHost != "" && e.From != "" && e.Password != "" {
		username := e.Username
		if username == "" {
			username = e.From
		}
		return &notify.SMTP{
			Host:     e.SMTPHost,
			Port:     e.SMTPPort,
			From:     e.From,
			Username: username,
			Password: e.Password,
			Timeout:  c.NotifyTimeout(),
		}
	}

	if topic := strings.TrimSpace(c.Ntfy.Topic); topic != "" {
		return notify.NewNtfy(topic, c.NotifyTimeout())
	}

	return notify.Log{Logger: logger}
}
