package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumina-fans/idolcms/internal/lyrics"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// CatalogHandler serves the relations between tracks, albums, lyrics and
// credits.
type CatalogHandler struct {
	svc *storage.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(svc *storage.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// AlbumTracks lists an album's tracks in album order.
func (h *CatalogHandler) AlbumTracks(ctx context.Context, req *dto.IDRequest) (*dto.ItemsResponse[*entity.Track], error) {
	tracks, err := h.svc.AlbumTracks(req.ID)
	if err != nil {
		return nil, err
	}
	return dto.Items(tracks), nil
}

// Similar ranks the tracks closest to one track.
func (h *CatalogHandler) Similar(ctx context.Context, req *dto.SimilarRequest) (*dto.SimilarResponse, error) {
	scored, err := h.svc.SimilarTracks(req.ID, req.N)
	if err != nil {
		return nil, err
	}
	return dto.Items(scored), nil
}

// Lyrics returns a track's lyrics. With a playback position, it also returns
// the timeline of the first synced version and the active line.
func (h *CatalogHandler) Lyrics(ctx context.Context, req *dto.LyricsRequest) (*dto.LyricsResponse, error) {
	all, err := h.svc.TrackLyrics(req.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.LyricsResponse{Lyrics: []*entity.Lyrics{}}
	for _, l := range all {
		if req.Language == "" || strings.EqualFold(l.Language, req.Language) {
			resp.Lyrics = append(resp.Lyrics, l)
		}
	}
	pos, ok, _ := req.Position()
	if !ok {
		return resp, nil
	}
	for _, l := range resp.Lyrics {
		if !l.Synced {
			continue
		}
		if lines := lyrics.Parse(l.Content); len(lines) != 0 {
			active := lyrics.At(lines, pos)
			resp.Lines = lines
			resp.Active = &active
			break
		}
	}
	return resp, nil
}

// Credits returns a track's credits.
func (h *CatalogHandler) Credits(ctx context.Context, req *dto.IDRequest) (*entity.Credits, error) {
	c, err := h.svc.TrackCredits(req.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("credits of track %q: %w", req.ID, storage.ErrNotFound)
	}
	return c, nil
}
