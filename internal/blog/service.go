// Package blog implements the content domain on top of the store:
// publishing, reader interactions, newsletter and contact flows.
package blog

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/store"
)

var (
	ErrInvalid       = errors.New("blog: invalid input")
	ErrDuplicateSlug = errors.New("blog: duplicate slug")
)

// Notifier sends the mails the blog flows trigger. Failures are the
// caller's to decide on; the flows here never let mail break a write
// that already happened.
type Notifier interface {
	ContactReceived(m store.ContactMessage) error
	SubscriberJoined(email string) error
}

// Service owns blog reads and writes.
type Service struct {
	store    *store.Store
	render   *Renderer
	notifier Notifier
	cfg      config.SiteConfig
	log      zerolog.Logger
}

func NewService(st *store.Store, notifier Notifier, cfg config.SiteConfig, log zerolog.Logger) *Service {
	return &Service{
		store:    st,
		render:   NewRenderer(),
		notifier: notifier,
		cfg:      cfg,
		log:      log.With().Str("component", "blog").Logger(),
	}
}

// PostInput is everything needed to create or update a post.
type PostInput struct {
	Title               string   `json:"title"`
	Category            string   `json:"category"`
	CategoryDescription string   `json:"category_description"`
	Tags                []string `json:"tags"`
	Content             string   `json:"content"`
	Excerpt             string   `json:"excerpt"`
	MetaDescription     string   `json:"meta_description"`
	FocusKeywords       string   `json:"focus_keywords"`
	MediaURL            string   `json:"media_url"`
	UniqueID            string   `json:"unique_id"`
	Publish             bool     `json:"publish"`
	AIGenerated         bool     `json:"ai_generated"`
}

func (in PostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalid)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content required", ErrInvalid)
	}
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("%w: category required", ErrInvalid)
	}
	return nil
}

// Slug builds the post slug: slugified title, with the unique id
// suffixed when present so generated posts cannot collide.
func (in PostInput) Slug() string {
	base := slug.Make(in.Title)
	uid := strings.TrimSpace(in.UniqueID)
	if uid == "" {
		return base
	}
	return base + "-" + slug.Make(uid)
}

// CreatePost validates, slugs, and stores a new post. Publishing
// stamps published_at with the current time.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*store.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	postSlug := in.Slug()
	exists, err := s.store.SlugExists(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, postSlug)
	}

	description := in.CategoryDescription
	if description == "" {
		description = in.Category + " related content"
	}
	category, err := s.store.EnsureCategory(ctx, in.Category, description)
	if err != nil {
		return nil, err
	}

	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = Excerpt(in.Content, 200)
	}

	p := &store.Post{
		Title:           strings.TrimSpace(in.Title),
		Slug:            postSlug,
		CategoryID:      category.ID,
		Category:        category.Name,
		CategorySlug:    category.Slug,
		Tags:            in.Tags,
		Content:         in.Content,
		Excerpt:         excerpt,
		MetaDescription: strings.TrimSpace(in.MetaDescription),
		FocusKeywords:   strings.TrimSpace(in.FocusKeywords),
		MediaURL:        strings.TrimSpace(in.MediaURL),
		Status:          store.StatusDraft,
		AIGenerated:     in.AIGenerated,
	}
	if in.Publish {
		now := time.Now().UTC()
		p.Status = store.StatusPublished
		p.PublishedAt = &now
	}

	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("slug", p.Slug).Str("category", p.Category).
		Bool("published", in.Publish).Msg("post created")
	return p, nil
}

// UpdatePost rewrites an existing post in place. The slug is stable
// across updates.
func (s *Service) UpdatePost(ctx context.Context, postSlug string, in PostInput) (*store.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.store.PostBySlug(ctx, postSlug, false)
	if err != nil {
		return nil, err
	}

	description := in.CategoryDescription
	if description == "" {
		description = in.Category + " related content"
	}
	category, err := s.store.EnsureCategory(ctx, in.Category, description)
	if err != nil {
		return nil, err
	}

	p.Title = strings.TrimSpace(in.Title)
	p.CategoryID = category.ID
	p.Category = category.Name
	p.CategorySlug = category.Slug
	p.Tags = in.Tags
	p.Content = in.Content
	p.Excerpt = strings.TrimSpace(in.Excerpt)
	if p.Excerpt == "" {
		p.Excerpt = Excerpt(in.Content, 200)
	}
	p.MetaDescription = strings.TrimSpace(in.MetaDescription)
	p.FocusKeywords = strings.TrimSpace(in.FocusKeywords)
	p.MediaURL = strings.TrimSpace(in.MediaURL)
	if in.Publish && p.Status != store.StatusPublished {
		now := time.Now().UTC()
		p.Status = store.StatusPublished
		p.PublishedAt = &now
	}
	if !in.Publish {
		p.Status = store.StatusDraft
		p.PublishedAt = nil
	}

	if err := s.store.UpdatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PostDetail is one post prepared for reading.
type PostDetail struct {
	Post     store.Post      `json:"post"`
	HTML     string          `json:"html"`
	Comments []store.Comment `json:"comments"`
	Related  []store.Post    `json:"related"`
}

// PostDetail loads a published post with rendered body, approved
// comments and related posts, and counts the view.
func (s *Service) PostDetail(ctx context.Context, postSlug string) (*PostDetail, error) {
	p, err := s.store.PostBySlug(ctx, postSlug, true)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementViews(ctx, p.ID); err != nil {
		s.log.Warn().Err(err).Str("slug", postSlug).Msg("view count increment failed")
	} else {
		p.Views++
	}

	comments, err := s.store.ApprovedComments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	related, err := s.store.RelatedPosts(ctx, p, 3)
	if err != nil {
		return nil, err
	}

	return &PostDetail{
		Post:     *p,
		HTML:     s.render.Render(p.Content),
		Comments: comments,
		Related:  related,
	}, nil
}

// ListPosts pages through published posts.
func (s *Service) ListPosts(ctx context.Context, page int) (store.PostPage, error) {
	return s.store.PublishedPosts(ctx, page, s.cfg.PageSize)
}

// ListAllPosts pages through every post, drafts included.
func (s *Service) ListAllPosts(ctx context.Context, page int) (store.PostPage, error) {
	return s.store.AllPosts(ctx, page, s.cfg.PageSize)
}

func (s *Service) CategoryPosts(ctx context.Context, categorySlug string, page int) (store.Category, store.PostPage, error) {
	category, err := s.store.CategoryBySlug(ctx, categorySlug)
	if err != nil {
		return store.Category{}, store.PostPage{}, err
	}
	posts, err := s.store.PostsByCategory(ctx, categorySlug, page, s.cfg.PageSize)
	return category, posts, err
}

func (s *Service) TagPosts(ctx context.Context, tagSlug string, page int) (store.PostPage, error) {
	return s.store.PostsByTag(ctx, tagSlug, page, s.cfg.PageSize)
}

func (s *Service) Search(ctx context.Context, query string, page int) (store.PostPage, error) {
	if strings.TrimSpace(query) == "" {
		return store.PostPage{Page: 1, PageSize: s.cfg.PageSize}, nil
	}
	return s.store.SearchPosts(ctx, query, page, s.cfg.PageSize)
}

func (s *Service) Categories(ctx context.Context) ([]store.Category, error) {
	return s.store.Categories(ctx)
}

// AddComment stores a reader comment against a published post. It
// surfaces only after moderation.
func (s *Service) AddComment(ctx context.Context, postSlug, name, email, body string) (*store.Comment, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: name and comment required", ErrInvalid)
	}
	if err := validEmail(email); err != nil {
		return nil, err
	}
	p, err := s.store.PostBySlug(ctx, postSlug, true)
	if err != nil {
		return nil, err
	}

	c := &store.Comment{
		PostID: p.ID,
		Name:   strings.TrimSpace(name),
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Body:   strings.TrimSpace(body),
	}
	if err := s.store.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Like bumps the like counter of a published post and returns the
// new count.
func (s *Service) Like(ctx context.Context, postSlug string) (int64, error) {
	p, err := s.store.PostBySlug(ctx, postSlug, true)
	if err != nil {
		return 0, err
	}
	return s.store.IncrementLikes(ctx, p.ID)
}

// Subscribe signs an address up for the newsletter. New and
// reactivated subscribers get a welcome mail; mail failure is logged,
// not returned.
func (s *Service) Subscribe(ctx context.Context, email string) (store.SubscribeOutcome, error) {
	if err := validEmail(email); err != nil {
		return "", err
	}
	outcome, err := s.store.Subscribe(ctx, email)
	if err != nil {
		return "", err
	}
	if outcome != store.SubscribedAlready && s.notifier != nil {
		if err := s.notifier.SubscriberJoined(email); err != nil {
			s.log.Warn().Err(err).Msg("welcome mail failed")
		}
	}
	return outcome, nil
}

func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	if err := validEmail(email); err != nil {
		return err
	}
	return s.store.Unsubscribe(ctx, email)
}

// Contact stores the submission and relays it to the site admin. The
// message is kept even when the relay fails.
func (s *Service) Contact(ctx context.Context, name, email, subject, body string) (*store.ContactMessage, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: name, subject and message required", ErrInvalid)
	}
	if err := validEmail(email); err != nil {
		return nil, err
	}

	m := &store.ContactMessage{
		Name:    strings.TrimSpace(name),
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}
	if err := s.store.AddContactMessage(ctx, m); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.ContactReceived(*m); err != nil {
			s.log.Warn().Err(err).Int64("message_id", m.ID).Msg("contact relay failed")
		}
	}
	return m, nil
}

func (s *Service) PendingComments(ctx context.Context) ([]store.Comment, error) {
	return s.store.PendingComments(ctx)
}

func (s *Service) ApproveComment(ctx context.Context, id int64) error {
	return s.store.ApproveComment(ctx, id)
}

func (s *Service) ActiveSubscribers(ctx context.Context) ([]store.Subscriber, error) {
	return s.store.ActiveSubscribers(ctx)
}

func (s *Service) ContactMessages(ctx context.Context) ([]store.ContactMessage, error) {
	return s.store.ContactMessages(ctx)
}

func validEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email required", ErrInvalid)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", ErrInvalid, email)
	}
	return nil
}
