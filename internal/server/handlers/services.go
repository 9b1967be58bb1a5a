// Defines shared service dependencies for handlers.

package handlers

import (
	"path/filepath"

	"github.com/lumina-fans/idolcms/internal/bandwidth"
	"github.com/lumina-fans/idolcms/internal/config"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Services holds all service dependencies for handlers.
type Services struct {
	Store      *storage.Store
	Posts      *storage.ArticleService[*entity.Post]
	News       *storage.ArticleService[*entity.News]
	Tracks     *storage.EditorialService[*entity.Track]
	Albums     *storage.EditorialService[*entity.Album]
	Lyrics     *storage.EditorialService[*entity.Lyrics]
	Credits    *storage.EditorialService[*entity.Credits]
	Members    *storage.EditorialService[*entity.Member]
	Videos     *storage.EditorialService[*entity.Video]
	Gallery    *storage.EditorialService[*entity.GalleryImage]
	Categories *storage.EditorialService[*entity.Category]
	Tags       *storage.EditorialService[*entity.Tag]
	Playlists  *storage.PlaylistService
	Users      *storage.UserService
	Catalog    *storage.CatalogService
	Telemetry  *storage.TelemetryService
	Push       *storage.PushService
	Media      *storage.MediaService
}

// NewServices builds every service over store. announcer is told about
// published articles and locator resolves telemetry countries; both may be
// nil. bcryptCost 0 selects the bcrypt default.
func NewServices(store *storage.Store, cfg *config.Config, announcer storage.Announcer, locator storage.Locator, bcryptCost int) *Services {
	return &Services{
		Store:      store,
		Posts:      storage.NewArticleService(store.Posts, "/posts/", announcer),
		News:       storage.NewArticleService(store.News, "/news/", announcer),
		Tracks:     storage.NewEditorialService(store.Tracks),
		Albums:     storage.NewEditorialService(store.Albums),
		Lyrics:     storage.NewEditorialService(store.Lyrics),
		Credits:    storage.NewEditorialService(store.Credits),
		Members:    storage.NewEditorialService(store.Members),
		Videos:     storage.NewEditorialService(store.Videos),
		Gallery:    storage.NewEditorialService(store.Gallery),
		Categories: storage.NewEditorialService(store.Categories),
		Tags:       storage.NewEditorialService(store.Tags),
		Playlists:  storage.NewPlaylistService(store.Playlists),
		Users:      storage.NewUserService(store.Users, bcryptCost),
		Catalog:    storage.NewCatalogService(store, cfg.Similar.Weights()),
		Telemetry:  storage.NewTelemetryService(store.Events, locator),
		Push:       storage.NewPushService(store.PushSubscriptions),
		Media:      storage.NewMediaService(store.Media, filepath.Join(store.Dir(), "media"), cfg.Quotas.MaxUploadBytes),
	}
}

// Config holds configuration values needed by handlers.
type Config struct {
	Version string
	// MaxRequestBodyBytes caps JSON request bodies; 0 means unlimited.
	MaxRequestBodyBytes int64
	// MaxUploadBytes caps media uploads; 0 means unlimited.
	MaxUploadBytes int64
	// VAPIDPublicKey is handed to browsers subscribing to push messages.
	VAPIDPublicKey string
	// MediaBandwidth throttles media downloads.
	MediaBandwidth *bandwidth.Limiter
}

// NewConfig derives the handler configuration from the server configuration.
func NewConfig(cfg *config.Config, version string) *Config {
	return &Config{
		Version:             version,
		MaxRequestBodyBytes: cfg.Quotas.MaxRequestBodyBytes,
		MaxUploadBytes:      cfg.Quotas.MaxUploadBytes,
		VAPIDPublicKey:      cfg.VAPID.PublicKey,
		MediaBandwidth:      bandwidth.NewLimiter(cfg.Quotas.MediaBandwidthBps),
	}
}
