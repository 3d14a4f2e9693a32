package gen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Draft is a fully composed piece, ready to become a post.
type Draft struct {
	Title           string
	Content         string
	Excerpt         string
	MetaDescription string
	Tags            []string
	FocusKeywords   []string
	UniqueID        string
}

// Composer turns a selected topic into article content. The template
// composer below is the built-in implementation; an external model
// can be plugged in behind the same interface.
type Composer interface {
	Compose(sel Selection) (Draft, error)
}

// TemplateComposer writes structured articles from the topic alone.
// Output is deterministic for a given selection apart from the
// unique id.
type TemplateComposer struct {
	engine *Engine
}

func NewTemplateComposer(engine *Engine) *TemplateComposer {
	return &TemplateComposer{engine: engine}
}

func (c *TemplateComposer) Compose(sel Selection) (Draft, error) {
	if strings.TrimSpace(sel.Topic) == "" {
		return Draft{}, fmt.Errorf("gen: compose: empty topic")
	}

	title := titleCase(sel.Topic)
	keywords := ExtractKeywords(sel.Topic)
	uid := strings.Split(uuid.NewString(), "-")[0]

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", c.lede(sel))
	fmt.Fprintf(&b, "## Why it matters\n\n%s\n\n", c.whyItMatters(sel))
	fmt.Fprintf(&b, "## Where to start\n\n")
	for _, step := range c.steps(sel) {
		fmt.Fprintf(&b, "- %s\n", step)
	}
	fmt.Fprintf(&b, "\n## Keep it going\n\n%s\n", c.closing(sel))

	meta := fmt.Sprintf("%s. Practical %s guidance from Halewell.",
		title, strings.ToLower(sel.Category))
	if len(meta) > 160 {
		meta = meta[:157] + "..."
	}

	tags := []string{sel.Category, sel.Difficulty}
	if len(keywords) > 0 {
		tags = append(tags, keywords[0])
	}

	return Draft{
		Title:           title,
		Content:         b.String(),
		Excerpt:         c.lede(sel),
		MetaDescription: meta,
		Tags:            tags,
		FocusKeywords:   keywords,
		UniqueID:        uid,
	}, nil
}

func (c *TemplateComposer) lede(sel Selection) string {
	desc := ""
	if c.engine != nil {
		desc = c.engine.CategoryDescription(sel.Category)
	}
	if desc == "" {
		desc = "everyday wellness"
	}
	return fmt.Sprintf("%s is one of those areas of %s where small, consistent changes add up. "+
		"This guide covers %s in plain terms, so you can put it to work this week.",
		titleCase(sel.Topic), strings.ToLower(desc), strings.ToLower(sel.Topic))
}

func (c *TemplateComposer) whyItMatters(sel Selection) string {
	switch sel.Difficulty {
	case DifficultyAdvanced:
		return "Once the basics are in place, the returns come from precision. " +
			"The details below assume you already have a routine and want to refine it."
	case DifficultyIntermediate:
		return "You have the fundamentals down. The next gains come from structure " +
			"and consistency rather than big dramatic changes."
	default:
		return "You do not need special equipment or a perfect routine to benefit. " +
			"Starting small and staying consistent beats an ambitious plan you abandon in a week."
	}
}

func (c *TemplateComposer) steps(sel Selection) []string {
	steps := []string{
		"Pick one change from this article and attach it to something you already do daily.",
		"Track it for a week, a note on your phone is enough.",
		"Review at the weekend and adjust the size of the habit, not the goal.",
	}
	if sel.Difficulty != DifficultyBeginner {
		steps = append(steps,
			"Once the habit holds for two weeks, layer in the next refinement.")
	}
	return steps
}

func (c *TemplateComposer) closing(sel Selection) string {
	return fmt.Sprintf("Progress in %s is rarely linear. Expect flat weeks, keep the habit "+
		"small enough to survive them, and check back for more %s guides.",
		strings.ToLower(sel.Category), strings.ToLower(sel.Category))
}

// titleCase capitalizes each word except short connectives after the
// first word.
func titleCase(s string) string {
	small := map[string]bool{
		"a": true, "an": true, "the": true, "and": true, "or": true,
		"for": true, "to": true, "of": true, "in": true, "on": true,
		"at": true, "by": true, "with": true,
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if i > 0 && small[w] {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
