package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Subscribe signs an address up for the newsletter. A brand-new
// address is created active; an inactive address is reactivated; an
// active one reads back as already subscribed.
func (s *Store) Subscribe(ctx context.Context, email string) (SubscribeOutcome, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("store: subscribe: email required")
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: subscribe: %w", err)
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRowContext(ctx, `SELECT active FROM subscribers WHERE email = ?`, email).Scan(&active)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO subscribers (email, active, created_at, updated_at)
			VALUES (?, 1, ?, ?)`, email, now, now); err != nil {
			return "", fmt.Errorf("store: subscribe: %w", err)
		}
		return SubscribedNew, tx.Commit()
	case err != nil:
		return "", fmt.Errorf("store: subscribe: %w", err)
	case active:
		return SubscribedAlready, tx.Commit()
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE subscribers SET active = 1, updated_at = ? WHERE email = ?`, now, email); err != nil {
			return "", fmt.Errorf("store: subscribe: %w", err)
		}
		return SubscribedReactivated, tx.Commit()
	}
}

// Unsubscribe deactivates the address. Unknown addresses read as not
// found.
func (s *Store) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscribers SET active = 0, updated_at = ? WHERE email = ?`,
		time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("store: unsubscribe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveSubscribers lists active newsletter addresses.
func (s *Store) ActiveSubscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, active, created_at, updated_at
		FROM subscribers WHERE active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("store: active subscribers: %w", err)
	}
	defer rows.Close()

	var out []Subscriber
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: active subscribers: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
