package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RecordGenerated appends one row of generation history.
func (s *Store) RecordGenerated(ctx context.Context, g *GeneratedContent) error {
	if g.GeneratedAt.IsZero() {
		g.GeneratedAt = time.Now().UTC()
	}
	keywords, err := json.Marshal(g.Keywords)
	if err != nil {
		return fmt.Errorf("store: record generated: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generated_content (title, topic, category, unique_id, difficulty,
			keywords_json, generated_at, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Title, g.Topic, g.Category, g.UniqueID, g.Difficulty,
		string(keywords), g.GeneratedAt, g.Published)
	if err != nil {
		return fmt.Errorf("store: record generated: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: record generated: %w", err)
	}
	return nil
}

// RecentGenerated returns generation history at or after the cutoff,
// newest first.
func (s *Store) RecentGenerated(ctx context.Context, since time.Time) ([]GeneratedContent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, topic, category, unique_id, difficulty, keywords_json, generated_at, published
		FROM generated_content WHERE generated_at >= ? ORDER BY generated_at DESC, id DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("store: recent generated: %w", err)
	}
	defer rows.Close()

	var out []GeneratedContent
	for rows.Next() {
		var g GeneratedContent
		var keywords string
		if err := rows.Scan(&g.ID, &g.Title, &g.Topic, &g.Category, &g.UniqueID,
			&g.Difficulty, &keywords, &g.GeneratedAt, &g.Published); err != nil {
			return nil, fmt.Errorf("store: recent generated: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &g.Keywords); err != nil {
			return nil, fmt.Errorf("store: recent generated: keywords: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GeneratedCategoryUsage counts history rows per category at or after
// the cutoff.
func (s *Store) GeneratedCategoryUsage(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM generated_content
		WHERE generated_at >= ? GROUP BY category`, since)
	if err != nil {
		return nil, fmt.Errorf("store: generated category usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("store: generated category usage: %w", err)
		}
		usage[category] = n
	}
	return usage, rows.Err()
}
