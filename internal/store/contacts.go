package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateContactMessage stores a contact form submission.
func CreateContactMessage(ctx context.Context, db *sql.DB, msg *model.ContactMessage) (*model.ContactMessage, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, subject, message) VALUES (?, ?, ?, ?)`,
		msg.Name, NormalizeEmail(msg.Email), msg.Subject, msg.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating contact message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting contact message id: %w", err)
	}

	out := &model.ContactMessage{}
	err = db.QueryRowContext(ctx,
		`SELECT id, name, email, subject, message, created_at FROM contact_messages WHERE id = ?`, id,
	).Scan(&out.ID, &out.Name, &out.Email, &out.Subject, &out.Message, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading contact message: %w", err)
	}
	return out, nil
}

// ListContactMessages returns all contact messages, newest first.
func ListContactMessages(ctx context.Context, db *sql.DB) ([]model.ContactMessage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, created_at
		 FROM contact_messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
