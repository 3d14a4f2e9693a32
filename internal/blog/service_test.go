package blog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/store"
	"github.com/halewell/halewell/internal/testutil/testlog"
)

type fakeNotifier struct {
	contacts []store.ContactMessage
	welcomes []string
	fail     bool
}

func (f *fakeNotifier) ContactReceived(m store.ContactMessage) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.contacts = append(f.contacts, m)
	return nil
}

func (f *fakeNotifier) SubscriberJoined(email string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.welcomes = append(f.welcomes, email)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeNotifier) {
	t.Helper()
	testlog.Start(t)
	st, err := store.NewStore(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	notifier := &fakeNotifier{}
	cfg := config.SiteConfig{
		Title:    "Halewell",
		BaseURL:  "http://localhost:8080",
		PageSize: 6,
		Author:   "Halewell Team",
	}
	return NewService(st, notifier, cfg, observability.InitTestLogger("blog_test")), notifier
}

func TestCreatePostPublishes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{
		Title:    "Morning Stretches",
		Category: "Fitness",
		Content:  "Start slow.\n\nThen keep going.",
		Publish:  true,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.Slug != "morning-stretches" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.Status != store.StatusPublished || p.PublishedAt == nil {
		t.Errorf("status = %q publishedAt = %v", p.Status, p.PublishedAt)
	}
	if p.Excerpt != "Start slow." {
		t.Errorf("derived excerpt = %q", p.Excerpt)
	}
}

func TestCreatePostUniqueIDInSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{
		Title:    "Morning Stretches",
		Category: "Fitness",
		Content:  "body",
		UniqueID: "a1b2c3d4",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.Slug != "morning-stretches-a1b2c3d4" {
		t.Errorf("slug = %q", p.Slug)
	}
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := PostInput{Title: "Same Title", Category: "Sleep", Content: "body"}
	if _, err := svc.CreatePost(ctx, in); err != nil {
		t.Fatalf("first CreatePost: %v", err)
	}
	if _, err := svc.CreatePost(ctx, in); !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestCreatePostValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []PostInput{
		{Category: "Sleep", Content: "body"},
		{Title: "No Body", Category: "Sleep"},
		{Title: "No Category", Content: "body"},
	}
	for _, in := range cases {
		if _, err := svc.CreatePost(ctx, in); !errors.Is(err, ErrInvalid) {
			t.Errorf("input %+v: expected ErrInvalid, got %v", in, err)
		}
	}
}

func TestPostDetailCountsView(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{
		Title:    "View Counter",
		Category: "Wellness",
		Content:  "# Heading\n\nbody",
		Publish:  true,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	detail, err := svc.PostDetail(ctx, p.Slug)
	if err != nil {
		t.Fatalf("PostDetail: %v", err)
	}
	if detail.Post.Views != 1 {
		t.Errorf("views = %d, want 1", detail.Post.Views)
	}
	if detail.HTML == "" || detail.HTML == detail.Post.Content {
		t.Errorf("content not rendered: %q", detail.HTML)
	}

	detail, _ = svc.PostDetail(ctx, p.Slug)
	if detail.Post.Views != 2 {
		t.Errorf("views = %d, want 2", detail.Post.Views)
	}
}

func TestCommentOnDraftRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, PostInput{
		Title:    "Hidden Draft",
		Category: "Sleep",
		Content:  "body",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	_, err = svc.AddComment(ctx, p.Slug, "Ada", "ada@example.com", "first!")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for draft, got %v", err)
	}
}

func TestAddCommentValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, _ := svc.CreatePost(ctx, PostInput{
		Title: "Open Post", Category: "Sleep", Content: "body", Publish: true,
	})

	if _, err := svc.AddComment(ctx, p.Slug, "", "a@b.com", "hi"); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := svc.AddComment(ctx, p.Slug, "Ada", "not-an-email", "hi"); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad email: %v", err)
	}
	if _, err := svc.AddComment(ctx, p.Slug, "Ada", "ada@example.com", "hi"); err != nil {
		t.Errorf("valid comment: %v", err)
	}
}

func TestSubscribeSendsWelcome(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	outcome, err := svc.Subscribe(ctx, "reader@example.com")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if outcome != store.SubscribedNew {
		t.Errorf("outcome = %q", outcome)
	}
	if len(notifier.welcomes) != 1 {
		t.Errorf("welcomes = %v", notifier.welcomes)
	}

	// Already-subscribed does not mail again.
	if _, err := svc.Subscribe(ctx, "reader@example.com"); err != nil {
		t.Fatalf("repeat Subscribe: %v", err)
	}
	if len(notifier.welcomes) != 1 {
		t.Errorf("welcomes after repeat = %v", notifier.welcomes)
	}
}

func TestSubscribeMailFailureIsNotFatal(t *testing.T) {
	svc, notifier := newTestService(t)
	notifier.fail = true

	outcome, err := svc.Subscribe(context.Background(), "reader@example.com")
	if err != nil {
		t.Fatalf("Subscribe with failing mail: %v", err)
	}
	if outcome != store.SubscribedNew {
		t.Errorf("outcome = %q", outcome)
	}
}

func TestContactStoredEvenWhenRelayFails(t *testing.T) {
	svc, notifier := newTestService(t)
	notifier.fail = true
	ctx := context.Background()

	m, err := svc.Contact(ctx, "Ada", "ada@example.com", "Hello", "A question")
	if err != nil {
		t.Fatalf("Contact: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("message not stored")
	}

	stored, err := svc.ContactMessages(ctx)
	if err != nil {
		t.Fatalf("ContactMessages: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(stored))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, _ := newTestService(t)
	page, err := svc.Search(context.Background(), "   ", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 0 || len(page.Posts) != 0 {
		t.Errorf("empty query returned %+v", page)
	}
}
