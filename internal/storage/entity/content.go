package entity

import "github.com/lumina-fans/idolcms/internal/query"

// Status gates an article's visibility. The store does not restrict it to
// the known values.
type Status string

// Known article statuses.
const (
	StatusDraft     Status = "DRAFT"
	StatusReview    Status = "REVIEW"
	StatusScheduled Status = "SCHEDULED"
	StatusPublished Status = "PUBLISHED"
)

// Article is the editorial content shared by posts and news.
type Article struct {
	Title       string   `json:"title" jsonschema:"required,minLength=1"`
	Slug        string   `json:"slug" jsonschema:"required,minLength=1"`
	Content     string   `json:"content,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	CoverImage  string   `json:"coverImage,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      Status   `json:"status,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
}

// GetSlug returns the URL slug.
func (a *Article) GetSlug() string { return a.Slug }

// GetArticle gives write access to the editorial fields.
func (a *Article) GetArticle() *Article { return a }

// SearchText implements query.Searchable.
func (a *Article) SearchText() []string {
	return append([]string{a.Title, a.Excerpt}, a.Tags...)
}

// publishedOrCreated is the date an article is listed under.
func (a *Article) publishedOrCreated(b *Base) string {
	if a.PublishedAt != "" {
		return a.PublishedAt
	}
	return b.CreatedAt
}

func (a *Article) filterValues(b *Base, field string) ([]string, bool) {
	switch field {
	case "status":
		return one(string(a.Status)), true
	case "category":
		return one(a.Category), true
	case "tag":
		return a.Tags, true
	case "slug":
		return one(a.Slug), true
	case "year":
		return one(query.Year(a.publishedOrCreated(b))), true
	}
	return b.filterValues(field)
}

func (a *Article) sortKey(b *Base, field string) (query.Key, bool) {
	switch field {
	case "title":
		return query.Text(a.Title), true
	case "publishedAt":
		return query.Date(a.publishedOrCreated(b)), true
	}
	return b.sortKey(field)
}

// Post is a blog post.
type Post struct {
	Base
	Article
	AuthorID string `json:"authorId,omitempty"`
}

// FilterValues implements query.Filterable.
func (p *Post) FilterValues(field string) ([]string, bool) {
	if field == "author" {
		return one(p.AuthorID), true
	}
	return p.Article.filterValues(&p.Base, field)
}

// SortKey implements query.Sortable.
func (p *Post) SortKey(field string) (query.Key, bool) {
	return p.Article.sortKey(&p.Base, field)
}

// News is a news article, typically relayed from an outside source.
type News struct {
	Base
	Article
	Source    string `json:"source,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// FilterValues implements query.Filterable.
func (n *News) FilterValues(field string) ([]string, bool) {
	if field == "source" {
		return one(n.Source), true
	}
	return n.Article.filterValues(&n.Base, field)
}

// SortKey implements query.Sortable.
func (n *News) SortKey(field string) (query.Key, bool) {
	return n.Article.sortKey(&n.Base, field)
}
