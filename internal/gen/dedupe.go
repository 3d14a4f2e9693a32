package gen

import (
	"context"
	"fmt"
	"time"

	"github.com/halewell/halewell/internal/store"
)

// titleThreshold flags near-identical titles more aggressively than
// topic overlap.
const titleThreshold = 0.3

// Match is one recent history row that resembles the candidate.
type Match struct {
	Title      string    `json:"title"`
	Topic      string    `json:"topic"`
	Category   string    `json:"category"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}

// DuplicateReport is the result of checking a candidate against
// recent generation history.
type DuplicateReport struct {
	IsDuplicate     bool     `json:"is_duplicate"`
	TitleMatches    []Match  `json:"title_matches,omitempty"`
	TopicMatches    []Match  `json:"topic_matches,omitempty"`
	CategoryOveruse bool     `json:"category_overuse"`
	CategoryCount   int      `json:"category_count"`
	OverusedWords   []string `json:"overused_keywords,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Detector checks candidate content against recent history before
// the pipeline commits to writing it.
type Detector struct {
	engine    *Engine
	bank      *Bank
	history   History
	threshold float64
}

func NewDetector(engine *Engine, bank *Bank, history History, threshold float64) *Detector {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.4
	}
	return &Detector{engine: engine, bank: bank, history: history, threshold: threshold}
}

// Check analyzes a candidate title, topic and category against the
// last 30 days of history. A candidate is a duplicate when a recent
// title or topic is too similar, or the category was generated in the
// last 3 days or more than twice in the window.
func (d *Detector) Check(ctx context.Context, title, topic, category string) (DuplicateReport, error) {
	recent, err := d.history.RecentGenerated(ctx, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return DuplicateReport{}, fmt.Errorf("gen: duplicate check: %w", err)
	}

	report := DuplicateReport{}
	threeDaysAgo := time.Now().UTC().AddDate(0, 0, -3)
	wordUse := make(map[string]int)

	for _, g := range recent {
		if sim := Similarity(title, g.Title); sim >= titleThreshold {
			report.TitleMatches = append(report.TitleMatches, matchFor(g, sim))
		}
		if sim := Similarity(topic, g.Topic); sim >= d.threshold {
			report.TopicMatches = append(report.TopicMatches, matchFor(g, sim))
		}
		if g.Category == category {
			report.CategoryCount++
			if g.GeneratedAt.After(threeDaysAgo) {
				report.CategoryOveruse = true
			}
		}
		for _, kw := range ExtractKeywords(g.Topic) {
			wordUse[kw]++
		}
	}
	if report.CategoryCount > 2 {
		report.CategoryOveruse = true
	}

	for _, kw := range ExtractKeywords(topic) {
		if wordUse[kw] > 2 {
			report.OverusedWords = append(report.OverusedWords, kw)
		}
	}

	report.IsDuplicate = len(report.TitleMatches) > 0 ||
		len(report.TopicMatches) > 0 ||
		report.CategoryOveruse
	report.Recommendations = d.recommendations(ctx, category, report)
	return report, nil
}

func matchFor(g store.GeneratedContent, sim float64) Match {
	return Match{
		Title:      g.Title,
		Topic:      g.Topic,
		Category:   g.Category,
		Similarity: sim,
		CreatedAt:  g.GeneratedAt,
	}
}

func (d *Detector) recommendations(ctx context.Context, category string, report DuplicateReport) []string {
	var out []string
	if len(report.TitleMatches) > 0 {
		out = append(out, "rework the title, a recent post uses nearly the same one")
	}
	if len(report.TopicMatches) > 0 {
		out = append(out, "pick a different angle, this topic was covered recently")
	}
	if report.CategoryOveruse {
		if suggested, err := d.engine.SuggestNextCategory(ctx); err == nil && suggested != category {
			out = append(out, "switch category, try "+suggested)
		} else {
			out = append(out, "switch to a less used category")
		}
	}
	for _, kw := range report.OverusedWords {
		out = append(out, "avoid the keyword "+kw+", it appears often in recent topics")
	}
	return out
}

// Alternatives suggests bank topics near the rejected one that are
// not themselves duplicates: same category first, then the engine's
// suggested category.
func (d *Detector) Alternatives(ctx context.Context, topic, category string, count int) ([]Topic, error) {
	if count < 1 {
		count = 3
	}
	recent, err := d.history.RecentGenerated(ctx, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("gen: alternatives: %w", err)
	}

	candidates := d.bank.Topics(category, "")
	if suggested, err := d.engine.SuggestNextCategory(ctx); err == nil && suggested != category {
		candidates = append(candidates, d.bank.Topics(suggested, "")...)
	}

	var out []Topic
	for _, c := range candidates {
		if Similarity(c.Topic, topic) >= d.threshold {
			continue
		}
		if peakSimilarity(c, recent) >= d.threshold {
			continue
		}
		out = append(out, c)
		if len(out) == count {
			break
		}
	}
	return out, nil
}
