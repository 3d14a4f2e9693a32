package gen

import (
	"context"
	"fmt"
	"time"
)

// PlannedPiece is one scheduled topic in a calendar plan.
type PlannedPiece struct {
	Topic      string  `json:"topic"`
	Category   string  `json:"category"`
	Difficulty string  `json:"difficulty"`
	Confidence float64 `json:"confidence"`
}

// PlannedDay groups the pieces scheduled for one date.
type PlannedDay struct {
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	Pieces  []PlannedPiece `json:"pieces"`
}

// Plan is a forward content schedule with rotation metrics.
type Plan struct {
	Days               int            `json:"days"`
	PerDay             int            `json:"per_day"`
	Schedule           []PlannedDay   `json:"schedule"`
	CategoryCounts     map[string]int `json:"category_counts"`
	RotationEfficiency float64        `json:"rotation_efficiency"`
	CategoryBalance    float64        `json:"category_balance"`
}

// Calendar builds forward content plans from the selector.
type Calendar struct {
	selector *Selector
	engine   *Engine
}

func NewCalendar(selector *Selector, engine *Engine) *Calendar {
	return &Calendar{selector: selector, engine: engine}
}

// Plan lays out `days` days of content starting tomorrow in the given
// location, rotating categories so consecutive picks differ.
func (c *Calendar) Plan(ctx context.Context, days, perDay int, loc *time.Location) (Plan, error) {
	if days < 1 || days > 90 {
		return Plan{}, fmt.Errorf("gen: plan days out of range: %d", days)
	}
	if perDay < 1 {
		perDay = 1
	}
	if loc == nil {
		loc = time.UTC
	}

	plan := Plan{
		Days:           days,
		PerDay:         perDay,
		CategoryCounts: make(map[string]int),
	}

	var sequence []string
	var lastCategory string
	start := time.Now().In(loc).AddDate(0, 0, 1)

	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day)
		planned := PlannedDay{
			Date:    date.Format("2006-01-02"),
			Weekday: date.Weekday().String(),
		}

		for i := 0; i < perDay; i++ {
			category, err := c.engine.SelectDiverseCategory(ctx, []string{lastCategory})
			if err != nil {
				return Plan{}, err
			}
			sel, err := c.selector.SelectOptimal(ctx, category, "")
			if err != nil {
				return Plan{}, err
			}
			planned.Pieces = append(planned.Pieces, PlannedPiece{
				Topic:      sel.Topic,
				Category:   sel.Category,
				Difficulty: sel.Difficulty,
				Confidence: sel.Confidence,
			})
			plan.CategoryCounts[sel.Category]++
			sequence = append(sequence, sel.Category)
			lastCategory = sel.Category
		}
		plan.Schedule = append(plan.Schedule, planned)
	}

	plan.RotationEfficiency = rotationEfficiency(sequence)
	plan.CategoryBalance = categoryBalance(plan.CategoryCounts)
	return plan, nil
}

// rotationEfficiency is the fraction of consecutive picks that switch
// category. A single pick rotates perfectly.
func rotationEfficiency(sequence []string) float64 {
	if len(sequence) < 2 {
		return 1
	}
	switches := 0
	for i := 1; i < len(sequence); i++ {
		if sequence[i] != sequence[i-1] {
			switches++
		}
	}
	return float64(switches) / float64(len(sequence)-1)
}

// categoryBalance is the min/max usage ratio across used categories:
// 1 means perfectly even, near 0 means one category dominates.
func categoryBalance(counts map[string]int) float64 {
	if len(counts) == 0 {
		return 1
	}
	min, max := -1, 0
	for _, n := range counts {
		if min < 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return 1
	}
	return float64(min) / float64(max)
}
