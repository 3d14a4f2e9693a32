package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const postColumns = `
	p.id, p.title, p.slug, p.category_id, c.name, c.slug,
	p.content, p.excerpt, p.meta_description, p.focus_keywords, p.media_url,
	p.status, p.published_at, p.created_at, p.updated_at,
	p.views, p.likes, p.ai_generated,
	COALESCE((SELECT group_concat(t.name) FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id WHERE pt.post_id = p.id), '')`

const postFrom = ` FROM posts p JOIN categories c ON c.id = p.category_id`

func publishedFilter() (string, any) {
	return ` p.status = ? AND p.published_at IS NOT NULL AND p.published_at <= ?`, time.Now().UTC()
}

// CreatePost inserts the post and its tag links and fills in the
// generated ID and timestamps.
func (s *Store) CreatePost(ctx context.Context, p *Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: create post: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO posts (title, slug, category_id, content, excerpt, meta_description,
			focus_keywords, media_url, status, published_at, created_at, updated_at, ai_generated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Slug, p.CategoryID, p.Content, p.Excerpt, p.MetaDescription,
		p.FocusKeywords, p.MediaURL, p.Status, p.PublishedAt, p.CreatedAt, p.UpdatedAt, p.AIGenerated)
	if err != nil {
		return fmt.Errorf("store: create post: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: create post: %w", err)
	}

	if err := s.setPostTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdatePost rewrites the mutable columns and tag links of an
// existing post.
func (s *Store) UpdatePost(ctx context.Context, p *Post) error {
	p.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: update post: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE posts SET title = ?, slug = ?, category_id = ?, content = ?, excerpt = ?,
			meta_description = ?, focus_keywords = ?, media_url = ?, status = ?,
			published_at = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.CategoryID, p.Content, p.Excerpt,
		p.MetaDescription, p.FocusKeywords, p.MediaURL, p.Status,
		p.PublishedAt, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("store: update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := s.setPostTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) setPostTags(ctx context.Context, tx *sql.Tx, postID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("store: set post tags: %w", err)
	}
	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name, slug) VALUES (?, ?)`,
			name, slug.Make(name)); err != nil {
			return fmt.Errorf("store: set post tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO post_tags (post_id, tag_id)
			SELECT ?, id FROM tags WHERE name = ?`, postID, name); err != nil {
			return fmt.Errorf("store: set post tags: %w", err)
		}
	}
	return nil
}

// PostBySlug returns one post. With publishedOnly set, drafts and
// future-dated posts read as not found.
func (s *Store) PostBySlug(ctx context.Context, postSlug string, publishedOnly bool) (*Post, error) {
	query := `SELECT` + postColumns + postFrom + ` WHERE p.slug = ?`
	args := []any{postSlug}
	if publishedOnly {
		filter, now := publishedFilter()
		query += ` AND` + filter
		args = append(args, StatusPublished, now)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: post by slug: %w", err)
	}
	return p, nil
}

// PublishedPosts lists visible posts, newest first.
func (s *Store) PublishedPosts(ctx context.Context, page, pageSize int) (PostPage, error) {
	filter, now := publishedFilter()
	where := ` WHERE` + filter
	return s.listPosts(ctx, where, []any{StatusPublished, now}, page, pageSize)
}

// AllPosts lists every post including drafts, newest first.
func (s *Store) AllPosts(ctx context.Context, page, pageSize int) (PostPage, error) {
	return s.listPosts(ctx, "", nil, page, pageSize)
}

// PostsByCategory lists visible posts in the category, newest first.
func (s *Store) PostsByCategory(ctx context.Context, categorySlug string, page, pageSize int) (PostPage, error) {
	filter, now := publishedFilter()
	where := ` WHERE c.slug = ? AND` + filter
	return s.listPosts(ctx, where, []any{categorySlug, StatusPublished, now}, page, pageSize)
}

// PostsByTag lists visible posts carrying the tag, newest first.
func (s *Store) PostsByTag(ctx context.Context, tagSlug string, page, pageSize int) (PostPage, error) {
	filter, now := publishedFilter()
	where := ` WHERE p.id IN (SELECT pt.post_id FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE t.slug = ?) AND` + filter
	return s.listPosts(ctx, where, []any{tagSlug, StatusPublished, now}, page, pageSize)
}

// SearchPosts matches the query against title, content and excerpt of
// visible posts.
func (s *Store) SearchPosts(ctx context.Context, q string, page, pageSize int) (PostPage, error) {
	filter, now := publishedFilter()
	like := "%" + strings.TrimSpace(q) + "%"
	where := ` WHERE (p.title LIKE ? OR p.content LIKE ? OR p.excerpt LIKE ?) AND` + filter
	return s.listPosts(ctx, where, []any{like, like, like, StatusPublished, now}, page, pageSize)
}

func (s *Store) listPosts(ctx context.Context, where string, args []any, page, pageSize int) (PostPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	var total int
	countQuery := `SELECT COUNT(*)` + postFrom + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return PostPage{}, fmt.Errorf("store: list posts: %w", err)
	}

	query := `SELECT` + postColumns + postFrom + where +
		` ORDER BY COALESCE(p.published_at, p.created_at) DESC, p.id DESC LIMIT ? OFFSET ?`
	listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return PostPage{}, fmt.Errorf("store: list posts: %w", err)
	}
	defer rows.Close()

	out := PostPage{Page: page, PageSize: pageSize, Total: total}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return PostPage{}, fmt.Errorf("store: list posts: %w", err)
		}
		out.Posts = append(out.Posts, *p)
	}
	if err := rows.Err(); err != nil {
		return PostPage{}, fmt.Errorf("store: list posts: %w", err)
	}
	out.TotalPages = (total + pageSize - 1) / pageSize
	return out, nil
}

// RelatedPosts returns other visible posts from the same category.
func (s *Store) RelatedPosts(ctx context.Context, p *Post, limit int) ([]Post, error) {
	filter, now := publishedFilter()
	query := `SELECT` + postColumns + postFrom +
		` WHERE p.category_id = ? AND p.id != ? AND` + filter +
		` ORDER BY p.published_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, p.CategoryID, p.ID, StatusPublished, now, limit)
	if err != nil {
		return nil, fmt.Errorf("store: related posts: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		related, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("store: related posts: %w", err)
		}
		out = append(out, *related)
	}
	return out, rows.Err()
}

// IncrementViews bumps the view counter.
func (s *Store) IncrementViews(ctx context.Context, postID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, postID)
	if err != nil {
		return fmt.Errorf("store: increment views: %w", err)
	}
	return nil
}

// IncrementLikes bumps the like counter and returns the new count.
func (s *Store) IncrementLikes(ctx context.Context, postID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("store: increment likes: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}

	var likes int64
	if err := s.db.QueryRowContext(ctx, `SELECT likes FROM posts WHERE id = ?`, postID).Scan(&likes); err != nil {
		return 0, fmt.Errorf("store: increment likes: %w", err)
	}
	return likes, nil
}

// SlugExists reports whether any post already uses the slug.
func (s *Store) SlugExists(ctx context.Context, postSlug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE slug = ?`, postSlug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: slug exists: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var publishedAt sql.NullTime
	var tagCSV string
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.CategoryID, &p.Category, &p.CategorySlug,
		&p.Content, &p.Excerpt, &p.MetaDescription, &p.FocusKeywords, &p.MediaURL,
		&p.Status, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.Views, &p.Likes, &p.AIGenerated,
		&tagCSV)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	if tagCSV != "" {
		p.Tags = strings.Split(tagCSV, ",")
	}
	return &p, nil
}
