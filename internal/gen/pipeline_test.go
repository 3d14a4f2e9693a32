package gen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/halewell/halewell/internal/blog"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/store"
	"github.com/halewell/halewell/internal/testutil/testlog"
)

type fakeCreator struct {
	created []blog.PostInput
	fail    bool
}

func (f *fakeCreator) CreatePost(_ context.Context, in blog.PostInput) (*store.Post, error) {
	if f.fail {
		return nil, errors.New("db down")
	}
	f.created = append(f.created, in)
	return &store.Post{ID: int64(len(f.created)), Slug: in.Slug(), Title: in.Title}, nil
}

func newTestPipeline(hist *memHistory, creator *fakeCreator) *Pipeline {
	engine := NewEngine(hist, 30)
	bank := DefaultBank()
	selector := NewSelector(engine, bank, hist, 0.4)
	detector := NewDetector(engine, bank, hist, 0.4)
	composer := NewTemplateComposer(engine)
	return NewPipeline(selector, detector, composer, creator, engine, hist,
		observability.InitTestLogger("gen_test"))
}

func TestRunCreatesPost(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	creator := &fakeCreator{}
	p := newTestPipeline(hist, creator)

	res, err := p.Run(context.Background(), Options{Category: "Sleep", Publish: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeCreated {
		t.Fatalf("outcome = %q reason = %q", res.Outcome, res.Reason)
	}
	if res.Slug == "" || res.PostID == 0 {
		t.Errorf("result = %+v", res)
	}

	if len(creator.created) != 1 {
		t.Fatalf("created = %d", len(creator.created))
	}
	in := creator.created[0]
	if !in.AIGenerated || !in.Publish {
		t.Errorf("post input flags = %+v", in)
	}
	if in.UniqueID == "" {
		t.Error("no unique id on post input")
	}

	if len(hist.rows) != 1 {
		t.Fatalf("history rows = %d", len(hist.rows))
	}
	if hist.rows[0].Category != "Sleep" || !hist.rows[0].Published {
		t.Errorf("history row = %+v", hist.rows[0])
	}
}

func TestRunExplicitTopic(t *testing.T) {
	testlog.Start(t)
	creator := &fakeCreator{}
	p := newTestPipeline(&memHistory{}, creator)

	res, err := p.Run(context.Background(), Options{
		Topic:    "a field guide to evening teas",
		Category: "Sleep",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeCreated {
		t.Fatalf("outcome = %q", res.Outcome)
	}
	if res.Selection.Topic != "a field guide to evening teas" {
		t.Errorf("topic = %q", res.Selection.Topic)
	}
	if res.Selection.Difficulty != DifficultyBeginner {
		t.Errorf("off-bank topic difficulty = %q", res.Selection.Difficulty)
	}
}

func TestRunSkipsDuplicate(t *testing.T) {
	testlog.Start(t)
	hist := &memHistory{}
	// Same category yesterday makes any candidate a repeat.
	hist.add("completely unrelated older angle", "Sleep", 24*time.Hour)
	creator := &fakeCreator{}
	p := newTestPipeline(hist, creator)

	res, err := p.Run(context.Background(), Options{Category: "Sleep"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeDuplicate {
		t.Fatalf("outcome = %q", res.Outcome)
	}
	if res.Reason == "" {
		t.Error("duplicate skip has no reason")
	}
	if len(creator.created) != 0 {
		t.Errorf("post created despite duplicate verdict")
	}
	if len(hist.rows) != 1 {
		t.Errorf("duplicate recorded in history")
	}
}

func TestRunCreateFailure(t *testing.T) {
	testlog.Start(t)
	creator := &fakeCreator{fail: true}
	p := newTestPipeline(&memHistory{}, creator)

	res, err := p.Run(context.Background(), Options{Category: "Fitness"})
	if err == nil {
		t.Fatal("expected error from failing creator")
	}
	if res.Outcome != OutcomeFailed {
		t.Errorf("outcome = %q", res.Outcome)
	}
}

func TestRunBatchContinuesPastDuplicates(t *testing.T) {
	testlog.Start(t)
	creator := &fakeCreator{}
	p := newTestPipeline(&memHistory{}, creator)

	summary, err := p.RunBatch(context.Background(), 3, Options{Publish: true})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.Requested != 3 || len(summary.Results) != 3 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Created+summary.Duplicates+summary.Failed != 3 {
		t.Errorf("outcome counts do not add up: %+v", summary)
	}
	if summary.Created < 1 {
		t.Errorf("nothing created: %+v", summary)
	}
	if summary.FinishedAt.Before(summary.StartedAt) {
		t.Errorf("timestamps inverted: %+v", summary)
	}
}

func TestRunBatchAllFailed(t *testing.T) {
	testlog.Start(t)
	creator := &fakeCreator{fail: true}
	p := newTestPipeline(&memHistory{}, creator)

	summary, err := p.RunBatch(context.Background(), 2, Options{})
	if err == nil {
		t.Fatal("expected error when every attempt fails")
	}
	if summary.Failed == 0 {
		t.Errorf("summary = %+v", summary)
	}
}
