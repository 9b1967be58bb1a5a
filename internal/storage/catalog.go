package storage

import (
	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// CatalogService resolves the relations between tracks, albums, lyrics and
// credits. Relations are ID lists; IDs that point nowhere are skipped.
type CatalogService struct {
	store   *Store
	weights query.Weights
}

// NewCatalogService ranks similar tracks with w.
func NewCatalogService(store *Store, w query.Weights) *CatalogService {
	return &CatalogService{store: store, weights: w}
}

// AlbumTracks returns the album's tracks in album order.
func (c *CatalogService) AlbumTracks(albumID string) ([]*entity.Track, error) {
	album, err := c.store.Albums.Get(albumID)
	if err != nil {
		return nil, err
	}
	tracks, err := c.store.Tracks.List()
	if err != nil {
		return nil, err
	}
	return resolve(tracks, album.TrackIDs), nil
}

// TrackLyrics returns the lyrics listed on the track, followed by any other
// lyrics pointing back at it.
func (c *CatalogService) TrackLyrics(trackID string) ([]*entity.Lyrics, error) {
	track, err := c.store.Tracks.Get(trackID)
	if err != nil {
		return nil, err
	}
	all, err := c.store.Lyrics.List()
	if err != nil {
		return nil, err
	}
	out := resolve(all, track.LyricsIDs)
	for _, l := range all {
		if l.TrackID == trackID && !containsID(out, l.ID) {
			out = append(out, l)
		}
	}
	return out, nil
}

// TrackCredits returns the track's credits, or nil when it has none.
func (c *CatalogService) TrackCredits(trackID string) (*entity.Credits, error) {
	track, err := c.store.Tracks.Get(trackID)
	if err != nil {
		return nil, err
	}
	all, err := c.store.Credits.List()
	if err != nil {
		return nil, err
	}
	for _, cr := range all {
		if track.CreditsID != "" && cr.ID == track.CreditsID {
			return cr, nil
		}
	}
	for _, cr := range all {
		if cr.TrackID == trackID {
			return cr, nil
		}
	}
	return nil, nil
}

// SimilarTracks ranks the other tracks against trackID. n overrides the
// configured result count when positive.
func (c *CatalogService) SimilarTracks(trackID string, n int) ([]query.Scored[*entity.Track], error) {
	tracks, err := c.store.Tracks.List()
	if err != nil {
		return nil, err
	}
	var ref *entity.Track
	for _, t := range tracks {
		if t.ID == trackID {
			ref = t
			break
		}
	}
	if ref == nil {
		return nil, c.store.Tracks.notFound(trackID)
	}
	w := c.weights
	if n > 0 {
		w.Limit = n
	}
	return query.Similar(ref, tracks, w), nil
}

func resolve[T Record](items []T, ids []string) []T {
	byID := make(map[string]T, len(items))
	for _, item := range items {
		byID[item.GetID()] = item
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

func containsID[T Record](items []T, id string) bool {
	for _, item := range items {
		if item.GetID() == id {
			return true
		}
	}
	return false
}
