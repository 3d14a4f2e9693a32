package gen

import (
	"context"
	"testing"
	"time"

	"github.com/halewell/halewell/internal/testutil/testlog"
)

func newTestSelector(hist *memHistory) *Selector {
	engine := NewEngine(hist, 30)
	return NewSelector(engine, DefaultBank(), hist, 0.4)
}

func TestSelectOptimalForCategory(t *testing.T) {
	testlog.Start(t)
	s := newTestSelector(&memHistory{})

	sel, err := s.SelectOptimal(context.Background(), "Sleep", DifficultyBeginner)
	if err != nil {
		t.Fatalf("SelectOptimal: %v", err)
	}
	if sel.Category != "Sleep" || sel.Difficulty != DifficultyBeginner {
		t.Errorf("selection = %+v", sel)
	}
	if sel.Topic == "" {
		t.Error("empty topic")
	}
}

func TestSelectOptimalUnknownCategory(t *testing.T) {
	testlog.Start(t)
	s := newTestSelector(&memHistory{})
	if _, err := s.SelectOptimal(context.Background(), "Astrology", ""); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestSelectOptimalPicksCategoryWhenEmpty(t *testing.T) {
	testlog.Start(t)
	s := newTestSelector(&memHistory{})

	sel, err := s.SelectOptimal(context.Background(), "", "")
	if err != nil {
		t.Fatalf("SelectOptimal: %v", err)
	}
	if sel.Category == "" || sel.Topic == "" {
		t.Errorf("selection = %+v", sel)
	}
}

func TestSelectOptimalSkipsRecentCategories(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	hist.add("benefits of drinking water daily", "Nutrition", 24*time.Hour)
	s := newTestSelector(hist)

	// The pick is randomized; a category generated within the last
	// 7 days must never come back regardless of the roll.
	for i := 0; i < 200; i++ {
		sel, err := s.SelectOptimal(context.Background(), "", "")
		if err != nil {
			t.Fatalf("SelectOptimal: %v", err)
		}
		if sel.Category == "Nutrition" {
			t.Fatalf("attempt %d selected the category generated yesterday", i)
		}
	}
}

func TestConfidenceFreshCategory(t *testing.T) {
	testlog.Start(t)
	s := newTestSelector(&memHistory{})

	sel, err := s.SelectOptimal(context.Background(), "Hydration", DifficultyBeginner)
	if err != nil {
		t.Fatalf("SelectOptimal: %v", err)
	}
	// Empty history: 0.8 base, +0.2 unused category, +0.1 fresh
	// topic, capped at 1.
	if sel.Confidence != 1 {
		t.Errorf("confidence = %v, want 1", sel.Confidence)
	}
}

func TestConfidencePenalizesRepeats(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	for _, topic := range DefaultBank().Topics("Hydration", "") {
		hist.add(topic.Topic, "Hydration", time.Hour)
	}
	s := newTestSelector(hist)

	sel, err := s.SelectOptimal(context.Background(), "Hydration", "")
	if err != nil {
		t.Fatalf("SelectOptimal: %v", err)
	}
	// Category used and every candidate is a repeat: 0.8 - 0.3.
	if sel.Confidence > 0.5 {
		t.Errorf("confidence = %v for exhausted category", sel.Confidence)
	}
}

func TestSelectOptimalAvoidsRecentTopics(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	all := DefaultBank().Topics("Sleep", "")
	for _, topic := range all[:len(all)-1] {
		hist.add(topic.Topic, "Sleep", time.Hour)
	}
	s := newTestSelector(hist)

	sel, err := s.SelectOptimal(context.Background(), "Sleep", "")
	if err != nil {
		t.Fatalf("SelectOptimal: %v", err)
	}
	for _, g := range hist.rows {
		if Similarity(sel.Topic, g.Topic) >= 0.4 {
			t.Errorf("picked near-repeat %q of %q", sel.Topic, g.Topic)
		}
	}
}

func TestSuggestions(t *testing.T) {
	testlog.Start(t)
	s := newTestSelector(&memHistory{})

	suggestions, err := s.Suggestions(context.Background(), 3)
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("got %d suggestions", len(suggestions))
	}
	seen := make(map[string]bool)
	for _, sel := range suggestions {
		if seen[sel.Category] {
			t.Errorf("category %q suggested twice", sel.Category)
		}
		seen[sel.Category] = true
	}
}
