package store

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Post struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	CategoryID      int64      `json:"-"`
	Category        string     `json:"category"`
	CategorySlug    string     `json:"category_slug"`
	Tags            []string   `json:"tags"`
	Content         string     `json:"content"`
	Excerpt         string     `json:"excerpt"`
	MetaDescription string     `json:"meta_description,omitempty"`
	FocusKeywords   string     `json:"focus_keywords,omitempty"`
	MediaURL        string     `json:"media_url,omitempty"`
	Status          string     `json:"status"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Views           int64      `json:"views"`
	Likes           int64      `json:"likes"`
	AIGenerated     bool       `json:"ai_generated"`
}

// Published reports whether the post is visible to readers at now.
func (p *Post) Published(now time.Time) bool {
	return p.Status == StatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(now)
}

type PostPage struct {
	Posts      []Post `json:"posts"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PostCount   int    `json:"post_count"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Name      string    `json:"name"`
	Email     string    `json:"-"`
	Body      string    `json:"body"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscribeOutcome describes what a signup did to the subscriber row.
type SubscribeOutcome string

const (
	SubscribedNew         SubscribeOutcome = "subscribed"
	SubscribedAlready     SubscribeOutcome = "already_subscribed"
	SubscribedReactivated SubscribeOutcome = "resubscribed"
)

type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// GeneratedContent is one row of generation history, kept to steer
// diversity and block repeats.
type GeneratedContent struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Category    string    `json:"category"`
	UniqueID    string    `json:"unique_id"`
	Difficulty  string    `json:"difficulty"`
	Keywords    []string  `json:"keywords"`
	GeneratedAt time.Time `json:"generated_at"`
	Published   bool      `json:"published"`
}
