package blog

import (
	"context"
	"strings"
	"testing"
)

func TestSiteFeed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreatePost(ctx, PostInput{
		Title:    "Feed Entry",
		Category: "Wellness",
		Tags:     []string{"habits"},
		Content:  "Feed body.",
		Publish:  true,
	}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	xml, err := svc.SiteFeed(ctx)
	if err != nil {
		t.Fatalf("SiteFeed: %v", err)
	}
	body := string(xml)
	if !strings.Contains(body, "Feed Entry") {
		t.Errorf("entry title missing from feed:\n%s", body)
	}
	if !strings.Contains(body, "posts/feed-entry") {
		t.Errorf("entry link missing from feed:\n%s", body)
	}
}

func TestCategoryFeedSelfLink(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreatePost(ctx, PostInput{
		Title:    "Deep Rest",
		Category: "Sleep",
		Content:  "Rest body.",
		Publish:  true,
	}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	xml, err := svc.CategoryFeed(ctx, "sleep")
	if err != nil {
		t.Fatalf("CategoryFeed: %v", err)
	}
	body := string(xml)
	if !strings.Contains(body, "Deep Rest") {
		t.Errorf("entry title missing from feed:\n%s", body)
	}
	// The self link must match the route the feed is served on.
	if !strings.Contains(body, "api/categories/sleep/feed.xml") {
		t.Errorf("self link missing from feed:\n%s", body)
	}
}

func TestCategoryFeedUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CategoryFeed(context.Background(), "no-such-category"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
