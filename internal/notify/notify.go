// Package notify delivers HTML messages to item reporters.
//
// A Notifier is fire-once: it makes a single delivery attempt bounded by the
// caller's context and reports the outcome as an error. Callers that treat
// delivery as best-effort log the error and move on.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single delivery when none is configured.
const DefaultTimeout = 10 * time.Second

// Notifier sends one message to one recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Log writes messages to the structured log instead of delivering them.
// It is the fallback when no transport is configured.
type Log struct {
	Logger *slog.Logger
}

// Send implements Notifier.
func (l Log) Send(_ context.Context, to, subject, htmlBody string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification not delivered (no transport configured)",
		"to", to, "subject", subject, "body", PlainText(htmlBody))
	return nil
}

// Noop discards every message.
type Noop struct{}

// Send implements Notifier.
func (Noop) Send(context.Context, string, string, string) error { return nil }
