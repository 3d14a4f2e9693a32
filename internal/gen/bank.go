package gen

import (
	"math/rand/v2"
	"sort"
	"strings"
)

// Difficulty levels for bank topics.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Difficulties lists the levels in teaching order.
var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Topic is one bank entry.
type Topic struct {
	Topic      string `json:"topic"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// Bank holds the curated topics the pipeline draws from, keyed by
// category then difficulty.
type Bank struct {
	topics map[string]map[string][]string
}

// DefaultBank is the built-in wellness topic catalog.
func DefaultBank() *Bank {
	return &Bank{topics: map[string]map[string][]string{
		"Nutrition": {
			DifficultyBeginner: {
				"5 simple swaps for a healthier breakfast",
				"how to read a nutrition label without getting lost",
				"easy ways to eat more vegetables every day",
				"beginner's guide to portion sizes",
			},
			DifficultyIntermediate: {
				"balancing macronutrients for steady energy",
				"meal prepping a full week in under two hours",
				"iron rich foods and how to absorb them better",
				"smart grocery shopping on a tight budget",
			},
			DifficultyAdvanced: {
				"timing protein intake around training sessions",
				"anti inflammatory eating patterns explained",
				"micronutrient gaps in plant based diets",
				"periodizing nutrition for endurance athletes",
			},
		},
		"Fitness": {
			DifficultyBeginner: {
				"10 minute morning stretches to start your day",
				"walking workouts that actually build fitness",
				"bodyweight exercises you can do at home",
				"how to warm up properly before exercise",
			},
			DifficultyIntermediate: {
				"building a balanced weekly workout split",
				"progressive overload without a gym membership",
				"core training beyond endless crunches",
				"running form fixes for fewer injuries",
			},
			DifficultyAdvanced: {
				"tempo training for strength plateaus",
				"heart rate zone training demystified",
				"mobility work for heavy compound lifts",
				"structuring a deload week that works",
			},
		},
		"Mental Health": {
			DifficultyBeginner: {
				"5 minute breathing exercises for instant calm",
				"simple journaling prompts for stressful days",
				"how short walks lift your mood",
				"setting gentle boundaries with your phone",
			},
			DifficultyIntermediate: {
				"building a sustainable mindfulness habit",
				"managing workplace stress before it builds up",
				"cognitive reframing for everyday worries",
				"how social connection protects mental health",
			},
			DifficultyAdvanced: {
				"understanding the stress response cycle",
				"designing a personal resilience toolkit",
				"burnout recovery beyond taking a holiday",
				"attention restoration and deep rest practices",
			},
		},
		"Sleep": {
			DifficultyBeginner: {
				"a simple wind down routine for better sleep",
				"why a consistent wake time beats early bedtimes",
				"making your bedroom a sleep friendly space",
				"caffeine timing and your night's rest",
			},
			DifficultyIntermediate: {
				"resetting your sleep schedule after travel",
				"napping without ruining your night sleep",
				"screens, blue light and melatonin explained",
				"sleep tracking data and what actually matters",
			},
			DifficultyAdvanced: {
				"chronotypes and scheduling your hardest work",
				"sleep architecture and the role of deep sleep",
				"managing shift work sleep disruption",
				"temperature regulation for deeper sleep",
			},
		},
		"Hydration": {
			DifficultyBeginner: {
				"how much water do you really need each day",
				"easy habits to drink more water",
				"signs of mild dehydration you might miss",
				"flavoring water without added sugar",
			},
			DifficultyIntermediate: {
				"hydration strategies for hot weather workouts",
				"electrolytes explained for everyday exercisers",
				"coffee, tea and your daily fluid balance",
				"hydrating foods that count toward your intake",
			},
			DifficultyAdvanced: {
				"fluid loading before endurance events",
				"sodium balance for heavy sweaters",
				"hydration and cognitive performance at work",
				"overhydration risks in long distance sport",
			},
		},
		"Wellness": {
			DifficultyBeginner: {
				"a realistic self care routine for busy weeks",
				"small morning habits with outsized benefits",
				"decluttering one corner of your life at a time",
				"the case for a daily dose of sunlight",
			},
			DifficultyIntermediate: {
				"habit stacking to make routines stick",
				"designing a restorative weekend",
				"digital minimalism for a calmer week",
				"seasonal wellness resets that actually help",
			},
			DifficultyAdvanced: {
				"tracking personal wellness metrics that matter",
				"building an annual rest and recovery calendar",
				"hormesis and the benefits of good stress",
				"longevity habits backed by current research",
			},
		},
		"Immune System": {
			DifficultyBeginner: {
				"everyday habits that support your immune system",
				"handwashing and hygiene basics that still matter",
				"sleep as your first line of immune defense",
				"foods that support winter wellness",
			},
			DifficultyIntermediate: {
				"exercise intensity and immune resilience",
				"vitamin d, zinc and immune support evidence",
				"gut health and its link to immunity",
				"recovering well after a cold or flu",
			},
			DifficultyAdvanced: {
				"chronic stress and immune suppression",
				"inflammation markers and what they tell you",
				"training through illness, when to stop",
				"immune aging and staying resilient later in life",
			},
		},
		"Skincare": {
			DifficultyBeginner: {
				"a simple three step skincare routine",
				"sunscreen habits for everyday protection",
				"gentle cleansing for sensitive skin",
				"hydrating your skin from the inside out",
			},
			DifficultyIntermediate: {
				"layering skincare products in the right order",
				"skin barrier repair after overexfoliating",
				"seasonal skincare adjustments that work",
				"diet, sleep and your skin's appearance",
			},
			DifficultyAdvanced: {
				"retinoids explained for careful beginners",
				"reading ingredient lists like a formulator",
				"skin microbiome friendly routines",
				"managing adult acne without harsh products",
			},
		},
		"Digestive Health": {
			DifficultyBeginner: {
				"fiber basics for a happier gut",
				"eating slowly and why it helps digestion",
				"fermented foods worth adding to your plate",
				"gentle remedies for occasional bloating",
			},
			DifficultyIntermediate: {
				"prebiotics versus probiotics explained",
				"keeping your gut happy while traveling",
				"stress and the gut brain connection",
				"building meals around digestive comfort",
			},
			DifficultyAdvanced: {
				"diversity of the gut microbiome and diet",
				"elimination diets done safely",
				"fodmaps explained without the confusion",
				"digestive enzymes, who actually needs them",
			},
		},
		"Weight Management": {
			DifficultyBeginner: {
				"small sustainable changes for healthy weight",
				"why crash diets backfire",
				"mindful eating for natural portion control",
				"daily movement beyond formal workouts",
			},
			DifficultyIntermediate: {
				"protein and satiety for easier appetite control",
				"strength training for a healthier metabolism",
				"weekend habits that quietly add up",
				"plateaus and how to respond to them calmly",
			},
			DifficultyAdvanced: {
				"energy balance myths and metabolic adaptation",
				"body recomposition for experienced trainees",
				"maintaining weight loss over the long term",
				"hormones, sleep and appetite regulation",
			},
		},
	}}
}

// Categories returns the bank's category names, sorted.
func (b *Bank) Categories() []string {
	out := make([]string, 0, len(b.topics))
	for name := range b.topics {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Topics returns the entries for a category. An empty difficulty
// selects all levels.
func (b *Bank) Topics(category, difficulty string) []Topic {
	levels, ok := b.topics[category]
	if !ok {
		return nil
	}

	var out []Topic
	for _, level := range Difficulties {
		if difficulty != "" && level != difficulty {
			continue
		}
		for _, t := range levels[level] {
			out = append(out, Topic{Topic: t, Category: category, Difficulty: level})
		}
	}
	return out
}

// TopicsByDifficulty returns every bank entry at one level, across
// all categories.
func (b *Bank) TopicsByDifficulty(difficulty string) []Topic {
	var out []Topic
	for _, category := range b.Categories() {
		out = append(out, b.Topics(category, difficulty)...)
	}
	return out
}

// RandomTopic picks one entry at random from a category, optionally
// narrowed to a difficulty. Returns false if nothing matches.
func (b *Bank) RandomTopic(category, difficulty string) (Topic, bool) {
	topics := b.Topics(category, difficulty)
	if len(topics) == 0 {
		return Topic{}, false
	}
	return topics[rand.IntN(len(topics))], true
}

// DifficultyOf looks up the level of a known bank topic. Returns
// false when the topic is not in the bank.
func (b *Bank) DifficultyOf(category, topic string) (string, bool) {
	for _, t := range b.Topics(category, "") {
		if strings.EqualFold(t.Topic, topic) {
			return t.Difficulty, true
		}
	}
	return "", false
}

// Search finds bank entries whose topic contains the keyword,
// case-insensitively.
func (b *Bank) Search(keyword string) []Topic {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil
	}
	var out []Topic
	for _, category := range b.Categories() {
		for _, t := range b.Topics(category, "") {
			if strings.Contains(strings.ToLower(t.Topic), needle) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Stats counts bank entries per category and per difficulty.
func (b *Bank) Stats() (byCategory map[string]int, byDifficulty map[string]int, total int) {
	byCategory = make(map[string]int)
	byDifficulty = make(map[string]int)
	for _, category := range b.Categories() {
		for _, t := range b.Topics(category, "") {
			byCategory[t.Category]++
			byDifficulty[t.Difficulty]++
			total++
		}
	}
	return byCategory, byDifficulty, total
}
