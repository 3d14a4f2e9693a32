package gen

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/halewell/halewell/internal/blog"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/store"
)

// Run outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// PostCreator is the slice of the blog service the pipeline needs.
type PostCreator interface {
	CreatePost(ctx context.Context, in blog.PostInput) (*store.Post, error)
}

// Options steers a single generation run. Zero values mean "let the
// selector decide".
type Options struct {
	Topic      string
	Category   string
	Difficulty string
	Publish    bool
}

// Result is the outcome of one generation attempt.
type Result struct {
	Outcome   string    `json:"outcome"`
	Selection Selection `json:"selection"`
	Slug      string    `json:"slug,omitempty"`
	PostID    int64     `json:"post_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// RunSummary aggregates a batch of generation attempts.
type RunSummary struct {
	Requested  int       `json:"requested"`
	Created    int       `json:"created"`
	Duplicates int       `json:"duplicates"`
	Failed     int       `json:"failed"`
	Results    []Result  `json:"results"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Pipeline runs selection, composition, duplicate checking and post
// creation end to end.
type Pipeline struct {
	selector *Selector
	detector *Detector
	composer Composer
	posts    PostCreator
	engine   *Engine
	history  History
	log      zerolog.Logger
}

func NewPipeline(selector *Selector, detector *Detector, composer Composer,
	posts PostCreator, engine *Engine, history History, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		selector: selector,
		detector: detector,
		composer: composer,
		posts:    posts,
		engine:   engine,
		history:  history,
		log:      log.With().Str("component", "gen").Logger(),
	}
}

// Run generates one piece of content. A duplicate verdict skips the
// piece without error; only infrastructure failures return one.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()

	sel, err := p.resolveSelection(ctx, opts)
	if err != nil {
		observability.RecordGenerationRun(OutcomeFailed, time.Since(start))
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}, err
	}
	log := p.log.With().Str("topic", sel.Topic).Str("category", sel.Category).Logger()

	draft, err := p.composer.Compose(sel)
	if err != nil {
		observability.RecordGenerationRun(OutcomeFailed, time.Since(start))
		return Result{Outcome: OutcomeFailed, Selection: sel, Reason: err.Error()}, err
	}

	report, err := p.detector.Check(ctx, draft.Title, sel.Topic, sel.Category)
	if err != nil {
		observability.RecordGenerationRun(OutcomeFailed, time.Since(start))
		return Result{Outcome: OutcomeFailed, Selection: sel, Reason: err.Error()}, err
	}
	if report.IsDuplicate {
		log.Info().Strs("recommendations", report.Recommendations).Msg("skipping duplicate content")
		observability.RecordGenerationRun(OutcomeDuplicate, time.Since(start))
		return Result{
			Outcome:   OutcomeDuplicate,
			Selection: sel,
			Reason:    strings.Join(report.Recommendations, "; "),
		}, nil
	}

	post, err := p.posts.CreatePost(ctx, blog.PostInput{
		Title:               draft.Title,
		Category:            sel.Category,
		CategoryDescription: p.engine.CategoryDescription(sel.Category),
		Tags:                draft.Tags,
		Content:             draft.Content,
		Excerpt:             draft.Excerpt,
		MetaDescription:     draft.MetaDescription,
		FocusKeywords:       strings.Join(draft.FocusKeywords, ", "),
		UniqueID:            draft.UniqueID,
		Publish:             opts.Publish,
		AIGenerated:         true,
	})
	if err != nil {
		observability.RecordGenerationRun(OutcomeFailed, time.Since(start))
		return Result{Outcome: OutcomeFailed, Selection: sel, Reason: err.Error()}, err
	}

	record := &store.GeneratedContent{
		Title:      draft.Title,
		Topic:      sel.Topic,
		Category:   sel.Category,
		UniqueID:   draft.UniqueID,
		Difficulty: sel.Difficulty,
		Keywords:   draft.FocusKeywords,
		Published:  opts.Publish,
	}
	if err := p.history.RecordGenerated(ctx, record); err != nil {
		// The post exists; a history gap only weakens diversity
		// steering, so log and carry on.
		log.Warn().Err(err).Msg("recording generation history failed")
	}

	log.Info().Str("slug", post.Slug).Bool("published", opts.Publish).Msg("content generated")
	observability.RecordGenerationRun(OutcomeCreated, time.Since(start))
	return Result{
		Outcome:   OutcomeCreated,
		Selection: sel,
		Slug:      post.Slug,
		PostID:    post.ID,
	}, nil
}

// RunBatch generates count pieces, continuing past duplicates and
// failures. The error is nil unless every attempt failed outright.
func (p *Pipeline) RunBatch(ctx context.Context, count int, opts Options) (RunSummary, error) {
	if count < 1 {
		count = 1
	}
	summary := RunSummary{Requested: count, StartedAt: time.Now().UTC()}

	var lastErr error
	for i := 0; i < count; i++ {
		res, err := p.Run(ctx, opts)
		summary.Results = append(summary.Results, res)
		switch res.Outcome {
		case OutcomeCreated:
			summary.Created++
		case OutcomeDuplicate:
			summary.Duplicates++
		default:
			summary.Failed++
			lastErr = err
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
	}
	summary.FinishedAt = time.Now().UTC()

	if summary.Created == 0 && summary.Duplicates == 0 && lastErr != nil {
		return summary, lastErr
	}
	return summary, nil
}

func (p *Pipeline) resolveSelection(ctx context.Context, opts Options) (Selection, error) {
	if strings.TrimSpace(opts.Topic) == "" {
		return p.selector.SelectOptimal(ctx, opts.Category, opts.Difficulty)
	}

	// Explicit topic: fill in category and difficulty around it.
	sel := Selection{
		Topic:      strings.TrimSpace(opts.Topic),
		Category:   strings.TrimSpace(opts.Category),
		Difficulty: strings.TrimSpace(opts.Difficulty),
		Confidence: 1,
	}
	if sel.Category == "" {
		category, err := p.engine.SuggestNextCategory(ctx)
		if err != nil {
			return Selection{}, err
		}
		sel.Category = category
	}
	if sel.Difficulty == "" {
		if level, ok := p.selector.bank.DifficultyOf(sel.Category, sel.Topic); ok {
			sel.Difficulty = level
		} else {
			sel.Difficulty = DifficultyBeginner
		}
	}
	return sel, nil
}
