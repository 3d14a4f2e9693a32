package media

import (
	"io"
	"strings"
	"testing"

	"github.com/halewell/halewell/internal/testutil/testlog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	testlog.Start(t)
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newTestStore(t)

	rel, err := s.Save("posts/hero.jpg", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rel != "posts/hero.jpg" {
		t.Errorf("saved path = %q", rel)
	}

	f, err := s.Open(rel)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "image bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	s := newTestStore(t)

	bad := []string{
		"../outside.txt",
		"a/../../outside.txt",
		"",
		"   ",
	}
	for _, p := range bad {
		if _, err := s.Resolve(p); err == nil {
			t.Errorf("Resolve(%q) accepted", p)
		}
	}
}

func TestResolveCleansDotSegments(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Resolve("a/./b/../c.png"); err != nil {
		t.Errorf("Resolve clean path: %v", err)
	}
	// Leading slash from router wildcards is tolerated.
	if _, err := s.Resolve("/posts/img.png"); err != nil {
		t.Errorf("Resolve leading slash: %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save("gone.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Remove("gone.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Open("gone.txt"); err == nil {
		t.Fatal("removed file still opens")
	}
	if err := s.Remove("never-existed.txt"); err == nil {
		t.Fatal("removing missing file succeeded")
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"posts/a.jpg", "posts/b.jpg", "misc/c.png"} {
		if _, err := s.Save(p, strings.NewReader("x")); err != nil {
			t.Fatalf("Save %s: %v", p, err)
		}
	}

	all, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %v", all)
	}

	posts, err := s.List("posts/")
	if err != nil {
		t.Fatalf("List posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("posts = %v", posts)
	}
}
