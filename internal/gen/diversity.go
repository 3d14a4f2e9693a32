// Package gen is the content-generation engine: topic selection with
// diversity steering, repeat detection, planning, and the pipeline
// that turns a selected topic into a published post.
package gen

import (
	"context"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/halewell/halewell/internal/store"
)

// History is the slice of the store the engine reads and writes.
type History interface {
	RecentGenerated(ctx context.Context, since time.Time) ([]store.GeneratedContent, error)
	GeneratedCategoryUsage(ctx context.Context, since time.Time) (map[string]int, error)
	RecordGenerated(ctx context.Context, g *store.GeneratedContent) error
}

// CategoryProfile is a category's base selection weight. Higher
// weight means higher baseline priority.
type CategoryProfile struct {
	Weight      int
	Description string
}

// DefaultCategories covers the wellness verticals the site writes
// about.
func DefaultCategories() map[string]CategoryProfile {
	return map[string]CategoryProfile{
		"Nutrition":         {Weight: 8, Description: "Healthy eating, vitamins, meal planning"},
		"Fitness":           {Weight: 7, Description: "Exercise routines, workout tips, physical activity"},
		"Mental Health":     {Weight: 6, Description: "Stress management, mindfulness, mental wellness"},
		"Sleep":             {Weight: 6, Description: "Sleep hygiene, rest optimization, bedtime routines"},
		"Hydration":         {Weight: 5, Description: "Water intake, hydration benefits, fluid balance"},
		"Wellness":          {Weight: 5, Description: "General wellness, lifestyle tips, self-care"},
		"Immune System":     {Weight: 5, Description: "Immune support, cold prevention, health defense"},
		"Skincare":          {Weight: 4, Description: "Natural skincare, skin health, beauty routines"},
		"Digestive Health":  {Weight: 4, Description: "Gut health, digestion, digestive wellness"},
		"Weight Management": {Weight: 4, Description: "Healthy weight, metabolism, body composition"},
	}
}

// Engine steers category and topic choice away from what was
// generated recently.
type Engine struct {
	history    History
	categories map[string]CategoryProfile
	recentDays int
}

func NewEngine(history History, recentDays int) *Engine {
	if recentDays < 1 {
		recentDays = 30
	}
	return &Engine{
		history:    history,
		categories: DefaultCategories(),
		recentDays: recentDays,
	}
}

// Categories returns the configured category names, sorted.
func (e *Engine) Categories() []string {
	out := make([]string, 0, len(e.categories))
	for name := range e.categories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CategoryDescription returns the profile description, or an empty
// string for unknown categories.
func (e *Engine) CategoryDescription(category string) string {
	return e.categories[category].Description
}

func (e *Engine) recentSince() time.Time {
	return time.Now().UTC().AddDate(0, 0, -e.recentDays)
}

// CategoryWeights computes the dynamic selection weights: base weight
// plus a bonus of up to 10 for categories with little recent use.
func (e *Engine) CategoryWeights(ctx context.Context) (map[string]float64, error) {
	usage, err := e.history.GeneratedCategoryUsage(ctx, e.recentSince())
	if err != nil {
		return nil, err
	}

	weights := make(map[string]float64, len(e.categories))
	for name, profile := range e.categories {
		bonus := 10 - usage[name]
		if bonus < 0 {
			bonus = 0
		}
		weights[name] = float64(profile.Weight + bonus)
	}
	return weights, nil
}

// SelectDiverseCategory picks a category by weighted random choice,
// favoring underused ones. If the exclusions cover everything, they
// are ignored rather than failing the pick.
func (e *Engine) SelectDiverseCategory(ctx context.Context, exclude []string) (string, error) {
	weights, err := e.CategoryWeights(ctx)
	if err != nil {
		return "", err
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	available := make(map[string]float64, len(weights))
	for name, w := range weights {
		if !excluded[name] {
			available[name] = w
		}
	}
	if len(available) == 0 {
		available = weights
	}

	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)

	var total float64
	for _, name := range names {
		total += available[name]
	}
	pick := rand.Float64() * total
	for _, name := range names {
		pick -= available[name]
		if pick < 0 {
			return name, nil
		}
	}
	return names[len(names)-1], nil
}

// SuggestNextCategory proposes the next category, excluding anything
// used in the last 7 days.
func (e *Engine) SuggestNextCategory(ctx context.Context) (string, error) {
	recent, err := e.history.RecentGenerated(ctx, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		return "", err
	}
	seen := make(map[string]bool)
	var exclude []string
	for _, g := range recent {
		if !seen[g.Category] {
			seen[g.Category] = true
			exclude = append(exclude, g.Category)
		}
	}
	return e.SelectDiverseCategory(ctx, exclude)
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "you": true,
	"he": true, "she": true, "it": true, "we": true, "they": true, "me": true,
	"him": true, "her": true, "us": true, "them": true, "your": true, "every": true,
}

// ExtractKeywords pulls the content-bearing words out of a topic for
// similarity checks.
func ExtractKeywords(topic string) []string {
	words := wordPattern.FindAllString(strings.ToLower(topic), -1)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if !stopWords[w] && len(w) > 2 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

// Similarity is the Jaccard index over the keyword sets of two
// topics: 0 is unrelated, 1 is identical.
func Similarity(topicA, topicB string) float64 {
	setA := keywordSet(topicA)
	setB := keywordSet(topicB)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func keywordSet(topic string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range ExtractKeywords(topic) {
		set[w] = true
	}
	return set
}

// SimilarTopics finds recent history rows whose topic is at least
// threshold-similar to the given one.
func (e *Engine) SimilarTopics(ctx context.Context, topic string, threshold float64) ([]store.GeneratedContent, error) {
	recent, err := e.history.RecentGenerated(ctx, e.recentSince())
	if err != nil {
		return nil, err
	}
	var out []store.GeneratedContent
	for _, g := range recent {
		if Similarity(topic, g.Topic) >= threshold {
			out = append(out, g)
		}
	}
	return out, nil
}

// TooSimilar reports whether any recent topic crosses the similarity
// cap.
func (e *Engine) TooSimilar(ctx context.Context, topic string, maxSimilarity float64) (bool, error) {
	similar, err := e.SimilarTopics(ctx, topic, maxSimilarity)
	if err != nil {
		return false, err
	}
	return len(similar) > 0, nil
}

// Score bundles the diversity metrics for a window of history.
type Score struct {
	Overall           float64 `json:"score"`
	CategoryDiversity float64 `json:"category_diversity"`
	TopicDiversity    float64 `json:"topic_diversity"`
	CategoriesUsed    int     `json:"categories_used"`
	TotalCategories   int     `json:"total_categories"`
}

// DiversityScore measures how varied the last `days` of generation
// were: category coverage and one minus mean pairwise topic
// similarity, averaged.
func (e *Engine) DiversityScore(ctx context.Context, days int) (Score, error) {
	recent, err := e.history.RecentGenerated(ctx, time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return Score{}, err
	}

	total := len(e.categories)
	if len(recent) == 0 {
		return Score{Overall: 1, CategoryDiversity: 1, TopicDiversity: 1, TotalCategories: total}, nil
	}

	used := make(map[string]bool)
	topics := make([]string, 0, len(recent))
	for _, g := range recent {
		used[g.Category] = true
		topics = append(topics, g.Topic)
	}
	categoryDiversity := float64(len(used)) / float64(total)

	topicDiversity := 1.0
	if len(topics) >= 2 {
		var sum float64
		var pairs int
		for i := 0; i < len(topics); i++ {
			for j := i + 1; j < len(topics); j++ {
				sum += Similarity(topics[i], topics[j])
				pairs++
			}
		}
		topicDiversity = 1 - sum/float64(pairs)
	}

	return Score{
		Overall:           (categoryDiversity + topicDiversity) / 2,
		CategoryDiversity: categoryDiversity,
		TopicDiversity:    topicDiversity,
		CategoriesUsed:    len(used),
		TotalCategories:   total,
	}, nil
}

// KeywordCount is one keyword with its occurrence count.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Report is the full diversity analysis for a window of history.
type Report struct {
	PeriodDays        int            `json:"period_days"`
	TotalContent      int            `json:"total_content"`
	CategoryUsage     map[string]int `json:"category_usage"`
	Metrics           Score          `json:"metrics"`
	TopKeywords       []KeywordCount `json:"top_keywords"`
	SuggestedCategory string         `json:"suggested_category"`
	LeastUsed         []string       `json:"least_used_categories"`
}

// DiversityReport assembles usage, keyword and scoring analysis for
// the last `days` of generation.
func (e *Engine) DiversityReport(ctx context.Context, days int) (Report, error) {
	recent, err := e.history.RecentGenerated(ctx, time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return Report{}, err
	}

	usage := make(map[string]int)
	keywordCounts := make(map[string]int)
	for _, g := range recent {
		usage[g.Category]++
		for _, kw := range ExtractKeywords(g.Topic) {
			keywordCounts[kw]++
		}
	}

	top := make([]KeywordCount, 0, len(keywordCounts))
	for kw, n := range keywordCounts {
		top = append(top, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Keyword < top[j].Keyword
	})
	if len(top) > 10 {
		top = top[:10]
	}

	metrics, err := e.DiversityScore(ctx, days)
	if err != nil {
		return Report{}, err
	}
	suggested, err := e.SuggestNextCategory(ctx)
	if err != nil {
		return Report{}, err
	}

	return Report{
		PeriodDays:        days,
		TotalContent:      len(recent),
		CategoryUsage:     usage,
		Metrics:           metrics,
		TopKeywords:       top,
		SuggestedCategory: suggested,
		LeastUsed:         e.leastUsed(usage, 5),
	}, nil
}

// leastUsed ranks configured categories by window usage, fewest
// first.
func (e *Engine) leastUsed(usage map[string]int, limit int) []string {
	names := e.Categories()
	sort.SliceStable(names, func(i, j int) bool {
		return usage[names[i]] < usage[names[j]]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}
