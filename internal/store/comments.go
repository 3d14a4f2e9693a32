package store

import (
	"context"
	"fmt"
	"time"
)

// AddComment stores a new, unapproved comment and fills in the ID.
func (s *Store) AddComment(ctx context.Context, c *Comment) error {
	c.CreatedAt = time.Now().UTC()
	c.Approved = false

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (post_id, name, email, body, approved, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		c.PostID, c.Name, c.Email, c.Body, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: add comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: add comment: %w", err)
	}
	return nil
}

// ApprovedComments lists visible comments for a post, newest first.
func (s *Store) ApprovedComments(ctx context.Context, postID int64) ([]Comment, error) {
	return s.listComments(ctx,
		`WHERE post_id = ? AND approved = 1 ORDER BY created_at DESC, id DESC`, postID)
}

// PendingComments lists unapproved comments across all posts, oldest
// first so moderation works through a queue.
func (s *Store) PendingComments(ctx context.Context) ([]Comment, error) {
	return s.listComments(ctx, `WHERE approved = 0 ORDER BY created_at, id`)
}

func (s *Store) listComments(ctx context.Context, clause string, args ...any) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, name, email, body, approved, created_at FROM comments `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.Approved, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: list comments: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ApproveComment marks one comment as visible.
func (s *Store) ApproveComment(ctx context.Context, commentID int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET approved = 1 WHERE id = ?`, commentID)
	if err != nil {
		return fmt.Errorf("store: approve comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
