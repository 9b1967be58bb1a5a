package storage

import (
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/lumina-fans/idolcms/internal/clock"
	"github.com/lumina-fans/idolcms/internal/rid"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Info is the type-erased part of a Collection.
type Info interface {
	Name() string
	Path() string
	JSONSchema() *jsonschema.Schema
	Count() (int, error)
}

// Options configures Open. Zero values select the real clock and ksid
// identifiers.
type Options struct {
	Clock clock.Clock
	IDs   rid.Generator
}

// Store holds every collection of the site.
type Store struct {
	Posts             *Collection[*entity.Post]
	News              *Collection[*entity.News]
	Tracks            *Collection[*entity.Track]
	Albums            *Collection[*entity.Album]
	Lyrics            *Collection[*entity.Lyrics]
	Credits           *Collection[*entity.Credits]
	Playlists         *Collection[*entity.Playlist]
	Categories        *Collection[*entity.Category]
	Tags              *Collection[*entity.Tag]
	Media             *Collection[*entity.Media]
	Events            *Collection[*entity.Event]
	Users             *Collection[*entity.User]
	Members           *Collection[*entity.Member]
	Videos            *Collection[*entity.Video]
	Gallery           *Collection[*entity.GalleryImage]
	PushSubscriptions *Collection[*entity.PushSubscription]

	env *Env
}

// Open binds every collection to its document under dir, creating dir if
// needed. Documents themselves are created on first write.
func Open(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: data directories are world readable
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.IDs == nil {
		opts.IDs = rid.KSID{}
	}
	env := &Env{Dir: dir, Clock: opts.Clock, IDs: opts.IDs, Locks: NewLocks()}
	return &Store{
		Posts:             NewCollection[*entity.Post](env, "posts", "post"),
		News:              NewCollection[*entity.News](env, "news", "news"),
		Tracks:            NewCollection[*entity.Track](env, "tracks", "trk"),
		Albums:            NewCollection[*entity.Album](env, "albums", "alb"),
		Lyrics:            NewCollection[*entity.Lyrics](env, "lyrics", "lyr"),
		Credits:           NewCollection[*entity.Credits](env, "credits", "crd"),
		Playlists:         NewCollection[*entity.Playlist](env, "playlists", "pl"),
		Categories:        NewCollection[*entity.Category](env, "categories", "cat"),
		Tags:              NewCollection[*entity.Tag](env, "tags", "tag"),
		Media:             NewCollection[*entity.Media](env, "media", "med"),
		Events:            NewCollection[*entity.Event](env, "events", "evt"),
		Users:             NewCollection[*entity.User](env, "users", "usr"),
		Members:           NewCollection[*entity.Member](env, "members", "mbr"),
		Videos:            NewCollection[*entity.Video](env, "videos", "vid"),
		Gallery:           NewCollection[*entity.GalleryImage](env, "gallery", "img"),
		PushSubscriptions: NewCollection[*entity.PushSubscription](env, "push_subscriptions", "sub"),
		env:               env,
	}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.env.Dir
}

// Clock returns the store's time source.
func (s *Store) Clock() clock.Clock {
	return s.env.Clock
}

// Collections lists every collection in a fixed order.
func (s *Store) Collections() []Info {
	return []Info{
		s.Posts, s.News, s.Tracks, s.Albums, s.Lyrics, s.Credits, s.Playlists,
		s.Categories, s.Tags, s.Media, s.Events, s.Users, s.Members, s.Videos,
		s.Gallery, s.PushSubscriptions,
	}
}

// Collection looks a collection up by name.
func (s *Store) Collection(name string) (Info, bool) {
	for _, c := range s.Collections() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
