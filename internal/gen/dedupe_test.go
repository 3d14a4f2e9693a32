package gen

import (
	"context"
	"testing"
	"time"

	"github.com/halewell/halewell/internal/store"
	"github.com/halewell/halewell/internal/testutil/testlog"
)

func newTestDetector(hist *memHistory) *Detector {
	engine := NewEngine(hist, 30)
	return NewDetector(engine, DefaultBank(), hist, 0.4)
}

func TestCheckCleanCandidate(t *testing.T) {
	testlog.Start(t)
	d := newTestDetector(&memHistory{})

	report, err := d.Check(context.Background(),
		"Morning Stretches", "10 minute morning stretches", "Fitness")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.IsDuplicate {
		t.Errorf("clean candidate flagged: %+v", report)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("unexpected recommendations: %v", report.Recommendations)
	}
}

func TestCheckFlagsSimilarTitle(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	hist.rows = append(hist.rows, historyRow("Morning Stretches Guide",
		"completely different topic here", "Wellness", 10*24*time.Hour))
	d := newTestDetector(hist)

	report, err := d.Check(context.Background(),
		"Morning Stretches Guide", "another unrelated angle", "Fitness")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.IsDuplicate || len(report.TitleMatches) == 0 {
		t.Fatalf("similar title not flagged: %+v", report)
	}
}

func TestCheckFlagsRecentCategory(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	hist.add("unrelated old angle entirely", "Fitness", 24*time.Hour)
	d := newTestDetector(hist)

	report, err := d.Check(context.Background(),
		"Fresh Title", "brand new unrelated topic", "Fitness")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.CategoryOveruse || !report.IsDuplicate {
		t.Fatalf("category used yesterday not flagged: %+v", report)
	}
}

func TestCheckFlagsCategoryVolume(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	hist.add("angle one about squats form", "Fitness", 10*24*time.Hour)
	hist.add("angle two about running shoes", "Fitness", 15*24*time.Hour)
	hist.add("angle three about grip strength", "Fitness", 20*24*time.Hour)
	d := newTestDetector(hist)

	report, err := d.Check(context.Background(),
		"Fresh Title", "brand new unrelated topic", "Fitness")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.CategoryCount != 3 {
		t.Errorf("category count = %d", report.CategoryCount)
	}
	if !report.CategoryOveruse {
		t.Fatalf("three uses in 30 days not flagged: %+v", report)
	}
}

func TestCheckFlagsOverusedKeywords(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	hist.add("hydration tips for morning", "Hydration", 5*24*time.Hour)
	hist.add("hydration tricks for office", "Wellness", 10*24*time.Hour)
	hist.add("hydration myths debunked today", "Nutrition", 15*24*time.Hour)
	d := newTestDetector(hist)

	report, err := d.Check(context.Background(),
		"Fresh Title", "hydration science for runners", "Sleep")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	found := false
	for _, kw := range report.OverusedWords {
		if kw == "hydration" {
			found = true
		}
	}
	if !found {
		t.Errorf("overused keyword not reported: %+v", report)
	}
}

func TestAlternativesAvoidDuplicates(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	hist.add("benefits of drinking water daily", "Hydration", time.Hour)
	d := newTestDetector(hist)

	alts, err := d.Alternatives(context.Background(),
		"benefits of drinking water daily", "Hydration", 3)
	if err != nil {
		t.Fatalf("Alternatives: %v", err)
	}
	if len(alts) == 0 {
		t.Fatal("no alternatives offered")
	}
	for _, alt := range alts {
		if Similarity(alt.Topic, "benefits of drinking water daily") >= 0.4 {
			t.Errorf("alternative %q too close to rejected topic", alt.Topic)
		}
	}
}

func historyRow(title, topic, category string, age time.Duration) store.GeneratedContent {
	return store.GeneratedContent{
		Title:       title,
		Topic:       topic,
		Category:    category,
		GeneratedAt: time.Now().UTC().Add(-age),
	}
}
