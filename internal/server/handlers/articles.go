package handlers

import (
	"context"

	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// ArticleHandler serves posts or news: the generic resource plus publishing.
type ArticleHandler[E any, P interface {
	*E
	storage.Article
}] struct {
	*Resource[E, P]
	svc *storage.ArticleService[P]
}

// NewArticleHandler serves svc's collection.
func NewArticleHandler[E any, P interface {
	*E
	storage.Article
}](svc *storage.ArticleService[P]) *ArticleHandler[E, P] {
	return &ArticleHandler[E, P]{
		Resource: NewResource[E, P](svc.Collection(), svc),
		svc:      svc,
	}
}

// Publish marks an article published and announces it to push subscribers.
func (h *ArticleHandler[E, P]) Publish(ctx context.Context, actor entity.Actor, req *dto.IDRequest) (*E, error) {
	rec, err := h.svc.Publish(ctx, actor, req.ID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
