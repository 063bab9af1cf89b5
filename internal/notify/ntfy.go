package notify

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const userAgent = "lostfound/1.0"

// Ntfy pushes messages to an ntfy topic. The recipient is included in the
// message text because a topic is shared by all recipients.
type Ntfy struct {
	endpoint string
	client   *http.Client
}

// NewNtfy returns an ntfy notifier posting to the topic URL.
func NewNtfy(topicURL string, timeout time.Duration) *Ntfy {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Ntfy{
		endpoint: strings.TrimSpace(topicURL),
		client:   &http.Client{Timeout: timeout},
	}
}

// Send implements Notifier.
func (n *Ntfy) Send(ctx context.Context, to, subject, htmlBody string) error {
	message := fmt.Sprintf("To: %s\n\n%s", to, PlainText(htmlBody))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	// Header values must be ASCII; ntfy decodes RFC 2047 encoded words.
	req.Header.Set("Title", mime.QEncoding.Encode("utf-8", subject))
	req.Header.Set("Tags", "lostfound")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
