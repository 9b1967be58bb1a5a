// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/lumina-fans/idolcms/internal/ratelimit"
	"github.com/lumina-fans/idolcms/internal/server/handlers"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// NewRouter creates and configures the HTTP router.
// API endpoints are served at /api/* and media files at /media/{id}. limiter
// may be nil to disable rate limiting.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, limiter *ratelimit.Limiter, tiers *ratelimit.Config) http.Handler {
	mux := &http.ServeMux{}

	// Health check
	hh := handlers.NewHealthHandler(cfg.Version, svc.Store, cfg.VAPIDPublicKey != "")
	mux.Handle("GET /api/health", Wrap(hh.Health, cfg))

	// Articles
	posts := handlers.NewArticleHandler[entity.Post](svc.Posts)
	handleResource(mux, "/api/posts", posts.Resource, cfg)
	mux.Handle("GET /api/posts/slug/{slug}", Wrap(posts.GetBySlug, cfg))
	mux.Handle("POST /api/posts/{id}/publish", WrapActor(posts.Publish, cfg))

	news := handlers.NewArticleHandler[entity.News](svc.News)
	handleResource(mux, "/api/news", news.Resource, cfg)
	mux.Handle("GET /api/news/slug/{slug}", Wrap(news.GetBySlug, cfg))
	mux.Handle("POST /api/news/{id}/publish", WrapActor(news.Publish, cfg))

	// Music catalog
	ch := handlers.NewCatalogHandler(svc.Catalog)
	tracks := handlers.NewResource[entity.Track](svc.Tracks.Collection(), svc.Tracks)
	handleResource(mux, "/api/tracks", tracks, cfg)
	mux.Handle("GET /api/tracks/{id}/similar", Wrap(ch.Similar, cfg))
	mux.Handle("GET /api/tracks/{id}/lyrics", Wrap(ch.Lyrics, cfg))
	mux.Handle("GET /api/tracks/{id}/credits", Wrap(ch.Credits, cfg))

	albums := handlers.NewResource[entity.Album](svc.Albums.Collection(), svc.Albums)
	handleResource(mux, "/api/albums", albums, cfg)
	mux.Handle("GET /api/albums/{id}/tracks", Wrap(ch.AlbumTracks, cfg))

	handleResource(mux, "/api/lyrics", handlers.NewResource[entity.Lyrics](svc.Lyrics.Collection(), svc.Lyrics), cfg)
	handleResource(mux, "/api/credits", handlers.NewResource[entity.Credits](svc.Credits.Collection(), svc.Credits), cfg)
	handleResource(mux, "/api/playlists", handlers.NewResource[entity.Playlist](svc.Playlists.Collection(), svc.Playlists), cfg)

	// Group
	handleResource(mux, "/api/members", handlers.NewResource[entity.Member](svc.Members.Collection(), svc.Members), cfg)
	handleResource(mux, "/api/videos", handlers.NewResource[entity.Video](svc.Videos.Collection(), svc.Videos), cfg)
	handleResource(mux, "/api/gallery", handlers.NewResource[entity.GalleryImage](svc.Gallery.Collection(), svc.Gallery), cfg)

	// Taxonomy
	handleResource(mux, "/api/categories", handlers.NewResource[entity.Category](svc.Categories.Collection(), svc.Categories), cfg)
	handleResource(mux, "/api/tags", handlers.NewResource[entity.Tag](svc.Tags.Collection(), svc.Tags), cfg)

	// Users
	uh := handlers.NewUserHandler(svc.Users)
	mux.Handle("POST /api/auth/login", Wrap(uh.Login, cfg))
	mux.Handle("POST /api/users", WrapActor(uh.Register, cfg))
	mux.Handle("GET /api/users", WrapActor(uh.List, cfg))
	mux.Handle("GET /api/users/{id}", Wrap(uh.Get, cfg))
	mux.Handle("PUT /api/users/{id}/role", WrapActor(uh.SetRole, cfg))
	mux.Handle("DELETE /api/users/{id}", WrapActor(uh.Delete, cfg))

	// Media
	mh := handlers.NewMediaHandler(svc.Media, cfg)
	mux.Handle("POST /api/media", WrapRaw(mh.Upload))
	mux.Handle("GET /api/media", Wrap(mh.List, cfg))
	mux.Handle("GET /api/media/{id}", Wrap(mh.Get, cfg))
	mux.Handle("DELETE /api/media/{id}", WrapActor(mh.Delete, cfg))
	mux.Handle("GET /media/{id}", WrapRaw(mh.Serve))

	// Telemetry
	th := handlers.NewTelemetryHandler(svc.Telemetry)
	mux.Handle("POST /api/events", WrapActor(th.Record, cfg))
	mux.Handle("GET /api/events", WrapActor(th.List, cfg))

	// Web Push
	pushh := handlers.NewPushHandler(svc.Push, cfg)
	mux.Handle("GET /api/push/key", Wrap(pushh.Key, cfg))
	mux.Handle("POST /api/push/subscribe", WrapActor(pushh.Subscribe, cfg))
	mux.Handle("POST /api/push/unsubscribe", Wrap(pushh.Unsubscribe, cfg))

	// Schemas
	sh := handlers.NewSchemaHandler(svc.Store)
	mux.Handle("GET /api/schemas", Wrap(sh.List, cfg))
	mux.Handle("GET /api/schemas/{collection}", Wrap(sh.Get, cfg))

	var h http.Handler = mux
	if limiter != nil && tiers != nil {
		h = rateLimitMiddleware(limiter, tiers)(h)
	}
	return requestIDMiddleware(loggingMiddleware(h))
}

// handleResource registers list, get, create, replace and delete under base.
func handleResource[E any, P interface {
	*E
	storage.Record
}](mux *http.ServeMux, base string, res *handlers.Resource[E, P], cfg *handlers.Config) {
	mux.Handle("GET "+base, Wrap(res.List, cfg))
	mux.Handle("GET "+base+"/{id}", Wrap(res.Get, cfg))
	mux.Handle("POST "+base, WrapActor(res.Create, cfg))
	mux.Handle("PUT "+base+"/{id}", WrapActor(res.Replace, cfg))
	mux.Handle("DELETE "+base+"/{id}", WrapActor(res.Delete, cfg))
}
