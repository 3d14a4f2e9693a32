package store

import (
	"context"
	"fmt"
	"time"
)

// AddContactMessage stores one contact-form submission.
func (s *Store) AddContactMessage(ctx context.Context, m *ContactMessage) error {
	m.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_messages (name, email, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.Name, m.Email, m.Subject, m.Body, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: add contact message: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: add contact message: %w", err)
	}
	return nil
}

// ContactMessages lists submissions, newest first.
func (s *Store) ContactMessages(ctx context.Context) ([]ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, subject, body, created_at
		FROM contact_messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: contact messages: %w", err)
	}
	defer rows.Close()

	var out []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: contact messages: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
