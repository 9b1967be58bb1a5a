package storage

import (
	"context"

	"github.com/lumina-fans/idolcms/internal/htmltext"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Article is a post or a news item.
type Article interface {
	Record
	Slugged
	GetArticle() *entity.Article
}

// Announcer broadcasts newly published content.
type Announcer interface {
	Announce(ctx context.Context, title, url string)
}

// ArticleService manages editorial content. Writes require the editor role.
type ArticleService[T Article] struct {
	coll      *Collection[T]
	urlPrefix string
	announcer Announcer
}

// NewArticleService serves coll. Published items are announced under
// urlPrefix + slug; announcer may be nil.
func NewArticleService[T Article](coll *Collection[T], urlPrefix string, announcer Announcer) *ArticleService[T] {
	return &ArticleService[T]{coll: coll, urlPrefix: urlPrefix, announcer: announcer}
}

// Collection returns the underlying collection.
func (s *ArticleService[T]) Collection() *Collection[T] {
	return s.coll
}

// Create stores a new article. An empty slug is derived from the title and an
// empty excerpt from the content. Status defaults to DRAFT.
func (s *ArticleService[T]) Create(actor entity.Actor, rec T) (T, error) {
	fill(rec.GetArticle())
	return s.coll.Create(rec, RoleCheck[T](actor, entity.RoleEditor))
}

// Replace overwrites the article with the given ID. Defaults are applied as
// in Create.
func (s *ArticleService[T]) Replace(actor entity.Actor, id string, rec T) (T, error) {
	fill(rec.GetArticle())
	return s.coll.Replace(id, rec, RoleGuard[T](actor, entity.RoleEditor))
}

// Delete removes the article with the given ID.
func (s *ArticleService[T]) Delete(actor entity.Actor, id string) error {
	return s.coll.Delete(id, RoleGuard[T](actor, entity.RoleEditor))
}

// Publish marks the article PUBLISHED, stamps publishedAt if unset and
// announces it.
func (s *ArticleService[T]) Publish(ctx context.Context, actor entity.Actor, id string) (T, error) {
	rec, err := s.coll.Update(id, func(rec T) error {
		if err := Authorize(actor, entity.RoleEditor); err != nil {
			return err
		}
		a := rec.GetArticle()
		a.Status = entity.StatusPublished
		if a.PublishedAt == "" {
			a.PublishedAt = entity.FormatTime(s.coll.env.Clock.Now())
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	if s.announcer != nil {
		a := rec.GetArticle()
		s.announcer.Announce(ctx, a.Title, s.urlPrefix+a.Slug)
	}
	return rec, nil
}

func fill(a *entity.Article) {
	if a.Slug == "" {
		a.Slug = htmltext.Slug(a.Title)
	}
	if a.Excerpt == "" && a.Content != "" {
		a.Excerpt = htmltext.Excerpt(a.Content, htmltext.ExcerptLength)
	}
	if a.Status == "" {
		a.Status = entity.StatusDraft
	}
}
