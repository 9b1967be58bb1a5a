package storage

import (
	"fmt"

	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// PlaylistService scopes playlists to their owner. Administrators may change
// any playlist.
type PlaylistService struct {
	coll *Collection[*entity.Playlist]
}

// NewPlaylistService serves coll.
func NewPlaylistService(coll *Collection[*entity.Playlist]) *PlaylistService {
	return &PlaylistService{coll: coll}
}

// Collection returns the underlying collection.
func (s *PlaylistService) Collection() *Collection[*entity.Playlist] {
	return s.coll
}

// Create stores a playlist owned by actor. Only administrators may create one
// on behalf of somebody else.
func (s *PlaylistService) Create(actor entity.Actor, p *entity.Playlist) (*entity.Playlist, error) {
	if p.OwnerID == "" {
		p.OwnerID = actor.UserID
	}
	if p.TrackIDs == nil {
		p.TrackIDs = []string{}
	}
	return s.coll.Create(p, func(_ []*entity.Playlist, p *entity.Playlist) error {
		return ownerOrAdmin(actor, p)
	})
}

// Replace overwrites a playlist. The owner cannot be changed by a non-admin.
func (s *PlaylistService) Replace(actor entity.Actor, id string, p *entity.Playlist) (*entity.Playlist, error) {
	if p.TrackIDs == nil {
		p.TrackIDs = []string{}
	}
	return s.coll.Replace(id, p, func(existing *entity.Playlist) error {
		if err := ownerOrAdmin(actor, existing); err != nil {
			return err
		}
		if p.OwnerID == "" {
			p.OwnerID = existing.OwnerID
		}
		return ownerOrAdmin(actor, p)
	})
}

// Delete removes a playlist.
func (s *PlaylistService) Delete(actor entity.Actor, id string) error {
	return s.coll.Delete(id, func(existing *entity.Playlist) error {
		return ownerOrAdmin(actor, existing)
	})
}

func ownerOrAdmin(actor entity.Actor, p *entity.Playlist) error {
	if actor.IsAdmin() || (actor.UserID != "" && actor.UserID == p.OwnerID) {
		return nil
	}
	return fmt.Errorf("playlist %q is owned by another user: %w", p.ID, ErrPermissionDenied)
}
