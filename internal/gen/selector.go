package gen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/halewell/halewell/internal/store"
)

// Selection is a topic choice with a confidence estimate.
type Selection struct {
	Topic      string  `json:"topic"`
	Category   string  `json:"category"`
	Difficulty string  `json:"difficulty"`
	Confidence float64 `json:"confidence"`
}

// Selector combines the bank with the diversity engine to pick the
// next topic to write about.
type Selector struct {
	engine    *Engine
	bank      *Bank
	history   History
	threshold float64
}

func NewSelector(engine *Engine, bank *Bank, history History, threshold float64) *Selector {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.4
	}
	return &Selector{engine: engine, bank: bank, history: history, threshold: threshold}
}

// SelectOptimal picks a topic for generation. An empty category lets
// the diversity engine choose one, skipping categories generated in
// the last 7 days; an empty difficulty accepts any level. Bank
// candidates too similar to recent history are filtered out before
// the pick.
func (s *Selector) SelectOptimal(ctx context.Context, category, difficulty string) (Selection, error) {
	if category == "" {
		chosen, err := s.engine.SuggestNextCategory(ctx)
		if err != nil {
			return Selection{}, fmt.Errorf("gen: select category: %w", err)
		}
		category = chosen
	}

	candidates := s.bank.Topics(category, difficulty)
	if len(candidates) == 0 {
		return Selection{}, fmt.Errorf("gen: no topics for category %q difficulty %q", category, difficulty)
	}

	recent, err := s.history.RecentGenerated(ctx, time.Now().UTC().AddDate(0, 0, -s.engine.recentDays))
	if err != nil {
		return Selection{}, fmt.Errorf("gen: select topic: %w", err)
	}

	fresh := filterSimilar(candidates, recent, s.threshold)
	if len(fresh) == 0 {
		// Everything in the bank has been covered recently; fall
		// back to the least-similar candidate rather than failing.
		fresh = []Topic{leastSimilar(candidates, recent)}
	}
	picked := fresh[rand.IntN(len(fresh))]

	return Selection{
		Topic:      picked.Topic,
		Category:   picked.Category,
		Difficulty: picked.Difficulty,
		Confidence: s.confidence(picked, recent),
	}, nil
}

// Suggestions proposes up to count topic ideas across diverse
// categories, avoiding categories already suggested.
func (s *Selector) Suggestions(ctx context.Context, count int) ([]Selection, error) {
	if count < 1 {
		count = 1
	}
	var out []Selection
	var used []string
	for len(out) < count {
		category, err := s.engine.SelectDiverseCategory(ctx, used)
		if err != nil {
			return nil, err
		}
		sel, err := s.SelectOptimal(ctx, category, "")
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
		used = append(used, category)
		if len(used) >= len(s.engine.Categories()) {
			used = nil
		}
	}
	return out, nil
}

// confidence starts at 0.8, rewards an unused category (+0.2) and a
// genuinely fresh topic (+0.1), and penalizes near-repeats (-0.3).
func (s *Selector) confidence(t Topic, recent []store.GeneratedContent) float64 {
	conf := 0.8

	categoryUsed := false
	maxSim := 0.0
	for _, g := range recent {
		if g.Category == t.Category {
			categoryUsed = true
		}
		if sim := Similarity(t.Topic, g.Topic); sim > maxSim {
			maxSim = sim
		}
	}

	if !categoryUsed {
		conf += 0.2
	}
	if maxSim < 0.1 {
		conf += 0.1
	}
	if maxSim > s.threshold {
		conf -= 0.3
	}

	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

// filterSimilar drops candidates whose similarity to any recent topic
// reaches the threshold.
func filterSimilar(candidates []Topic, recent []store.GeneratedContent, threshold float64) []Topic {
	var out []Topic
	for _, c := range candidates {
		tooClose := false
		for _, g := range recent {
			if Similarity(c.Topic, g.Topic) >= threshold {
				tooClose = true
				break
			}
		}
		if !tooClose {
			out = append(out, c)
		}
	}
	return out
}

// leastSimilar returns the candidate with the lowest peak similarity
// to recent history. candidates must be non-empty.
func leastSimilar(candidates []Topic, recent []store.GeneratedContent) Topic {
	best := candidates[0]
	bestSim := peakSimilarity(best, recent)
	for _, c := range candidates[1:] {
		if sim := peakSimilarity(c, recent); sim < bestSim {
			best, bestSim = c, sim
		}
	}
	return best
}

func peakSimilarity(t Topic, recent []store.GeneratedContent) float64 {
	max := 0.0
	for _, g := range recent {
		if sim := Similarity(t.Topic, g.Topic); sim > max {
			max = sim
		}
	}
	return max
}
