package catalog

import (
	"bytes"
	"context"
	"html/template"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
	"github.com/erazemk/lostfound/internal/store"
)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

var contactReceipt = template.Must(template.New("contact").Parse(`
<h2>We Received Your Message</h2>
<p>Hi {{.Name}},</p>
<p>Thank you for contacting us about: <strong>{{.Subject}}</strong></p>
<p>We will review your message and get back to you shortly.</p>
<p>Best regards,<br>Lost &amp; Found Team</p>
`))

// Contact stores a message for the administrators and sends the sender a
// receipt. A failed receipt does not fail the submission.
func (s *Service) Contact(ctx context.Context, in ContactInput) (*model.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = store.NormalizeEmail(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := check(&in); err != nil {
		return nil, err
	}

	msg, err := store.CreateContactMessage(ctx, s.DB, &model.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("contact message received", "id", msg.ID, "from", msg.Email)

	s.sendReceipt(ctx, msg)
	return msg, nil
}

// ContactMessages lists stored messages, newest first.
func (s *Service) ContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	msgs, err := store.ListContactMessages(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.ContactMessage{}
	}
	return msgs, nil
}

func (s *Service) sendReceipt(ctx context.Context, msg *model.ContactMessage) {
	if s.Notifier == nil {
		return
	}

	var body bytes.Buffer
	if err := contactReceipt.Execute(&body, msg); err != nil {
		s.logger().Error("failed to render contact receipt", "error", err)
		return
	}

	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = notify.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.Notifier.Send(ctx, msg.Email, "We Received Your Message", body.String()); err != nil {
		s.logger().Warn("failed to send contact receipt", "to", msg.Email, "error", err)
	}
}
