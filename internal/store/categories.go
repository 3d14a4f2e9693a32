package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// EnsureCategory returns the category with the given name, creating
// it with the description if it does not exist yet.
func (s *Store) EnsureCategory(ctx context.Context, name, description string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("store: category name required")
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name, slug, description) VALUES (?, ?, ?)`,
		name, slug.Make(name), description); err != nil {
		return Category{}, fmt.Errorf("store: ensure category: %w", err)
	}

	var c Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, description FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if err != nil {
		return Category{}, fmt.Errorf("store: ensure category: %w", err)
	}
	return c, nil
}

// CategoryBySlug returns one category with its visible post count.
func (s *Store) CategoryBySlug(ctx context.Context, categorySlug string) (Category, error) {
	filter, now := publishedFilter()
	var c Category
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description,
			(SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id AND`+filter+`)
		FROM categories c WHERE c.slug = ?`,
		StatusPublished, now, categorySlug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.PostCount)
	if err == sql.ErrNoRows {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("store: category by slug: %w", err)
	}
	return c, nil
}

// Categories lists all categories with visible post counts, most
// populated first.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	filter, now := publishedFilter()
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description,
			(SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id AND`+filter+`) AS post_count
		FROM categories c ORDER BY post_count DESC, c.name`,
		StatusPublished, now)
	if err != nil {
		return nil, fmt.Errorf("store: categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.PostCount); err != nil {
			return nil, fmt.Errorf("store: categories: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
