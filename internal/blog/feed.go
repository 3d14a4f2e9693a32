package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	atom "github.com/thomas11/atomgenerator"

	"github.com/halewell/halewell/internal/store"
)

const feedEntryLimit = 20

// SiteFeed renders the Atom feed of the latest published posts.
func (s *Service) SiteFeed(ctx context.Context) ([]byte, error) {
	page, err := s.store.PublishedPosts(ctx, 1, feedEntryLimit)
	if err != nil {
		return nil, err
	}
	return s.renderFeed(s.cfg.Title, "", page.Posts)
}

// CategoryFeed renders the Atom feed for one category.
func (s *Service) CategoryFeed(ctx context.Context, categorySlug string) ([]byte, error) {
	category, err := s.store.CategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	page, err := s.store.PostsByCategory(ctx, categorySlug, 1, feedEntryLimit)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s — %s", s.cfg.Title, category.Name)
	return s.renderFeed(title, "api/categories/"+categorySlug+"/feed.xml", page.Posts)
}

func (s *Service) renderFeed(title, relURL string, posts []store.Post) ([]byte, error) {
	feedURL := s.baseURL() + strings.TrimPrefix(relURL, "/")

	feed := atom.Feed{
		Title:   title,
		Link:    feedURL,
		PubDate: time.Now(),
	}
	feed.AddAuthor(atom.Author{
		Name: s.cfg.Author,
		Uri:  s.baseURL(),
	})

	for i := range posts {
		feed.AddEntry(s.entryForPost(&posts[i]))
	}

	if errs := feed.Validate(); len(errs) > 0 {
		for _, e := range errs {
			s.log.Error().Err(e).Msg("atom feed invalid")
		}
		return nil, errs[0]
	}
	return feed.GenXml()
}

func (s *Service) entryForPost(p *store.Post) *atom.Entry {
	pubDate := p.CreatedAt
	if p.PublishedAt != nil {
		pubDate = *p.PublishedAt
	}

	e := &atom.Entry{
		Title:       p.Title,
		Description: p.Excerpt,
		Link:        s.baseURL() + "posts/" + p.Slug,
		PubDate:     pubDate,
		Content:     s.render.Render(p.Content),
	}
	e.AddCategory(atom.Category{Term: p.Category})
	for _, tag := range p.Tags {
		e.AddCategory(atom.Category{Term: tag})
	}
	return e
}

func (s *Service) baseURL() string {
	base := s.cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
