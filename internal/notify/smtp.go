package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTP sends HTML e-mail through an SMTP server. Port 465 uses implicit TLS,
// any other port upgrades with STARTTLS when the server offers it.
type SMTP struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
	Timeout  time.Duration
}

// Send implements Notifier.
func (s *SMTP) Send(ctx context.Context, to, subject, htmlBody string) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := buildMessage(s.From, to, subject, htmlBody, time.Now())
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.Host, s.clientOptions(timeout)...)
	if err != nil {
		return fmt.Errorf("configuring smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

func (s *SMTP) clientOptions(timeout time.Duration) []mail.Option {
	opts := []mail.Option{mail.WithTimeout(timeout)}
	if s.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	// The port goes last so the TLS options above do not reset it.
	opts = append(opts, mail.WithPort(s.Port))

	if s.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Username),
			mail.WithPassword(s.Password),
		)
	}
	return opts
}

// buildMessage renders a single-part HTML message.
func buildMessage(from, to, subject, htmlBody string, date time.Time) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(date)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}
