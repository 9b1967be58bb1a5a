// Handles media upload, listing and throttled download.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/server/reqctx"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// maxMemory is how much of a multipart form is kept in memory; the rest
// spills to temporary files.
const maxMemory = 8 << 20

// multipartOverhead is the room left above the upload quota for the form's
// boundaries, headers and other fields.
const multipartOverhead = 1 << 20

func init() {
	// Register MIME types not in the standard library.
	for _, pair := range [][2]string{
		{".aac", "audio/aac"},
		{".flac", "audio/flac"},
		{".lrc", "text/plain"},
		{".m4a", "audio/mp4"},
		{".webp", "image/webp"},
	} {
		if err := mime.AddExtensionType(pair[0], pair[1]); err != nil {
			panic(err)
		}
	}
}

// MediaHandler handles the media library.
type MediaHandler struct {
	svc *storage.MediaService
	cfg *Config
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(svc *storage.MediaService, cfg *Config) *MediaHandler {
	return &MediaHandler{svc: svc, cfg: cfg}
}

// Upload stores a multipart upload: the file in field "file" and an optional
// alternative text in field "alt".
// This is a raw http.HandlerFunc because it handles multipart forms.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := storage.Authorize(reqctx.Actor(r.Context()), entity.RoleEditor); err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	if h.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, r, dto.PayloadTooLarge(h.cfg.MaxUploadBytes))
			return
		}
		writeErrorResponse(w, r, dto.BadRequest("invalid multipart form"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.WarnContext(r.Context(), "Failed to remove multipart files", "err", err)
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, r, dto.MissingField("file"))
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.ErrorContext(r.Context(), "Failed to close uploaded file", "err", err)
		}
	}()

	m, err := h.svc.Save(reqctx.Actor(r.Context()), storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Alt:         r.FormValue("alt"),
		Body:        file,
	})
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Media uploaded", "id", m.ID, "size", m.Size, "type", m.ContentType)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(m); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write media response", "err", err)
	}
}

// List searches, filters, sorts and paginates the media library.
func (h *MediaHandler) List(ctx context.Context, req *dto.ListRequest) (*query.Page[*entity.Media], error) {
	items, err := h.svc.Collection().List()
	if err != nil {
		return nil, err
	}
	page, err := query.Run(items, req.Options())
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one media record.
func (h *MediaHandler) Get(ctx context.Context, req *dto.IDRequest) (*entity.Media, error) {
	return h.svc.Collection().Get(req.ID)
}

// Delete removes a media record and its file.
func (h *MediaHandler) Delete(ctx context.Context, actor entity.Actor, req *dto.IDRequest) (*dto.OkResponse, error) {
	if err := h.svc.Delete(actor, req.ID); err != nil {
		return nil, err
	}
	return &dto.OkResponse{Ok: true}, nil
}

// Serve streams a media file, throttled by the shared bandwidth limiter.
// Range requests are honored.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	m, f, err := h.svc.Open(r.PathValue("id"))
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.WarnContext(r.Context(), "Failed to close media file", "err", err, "id", m.ID)
		}
	}()
	st, err := f.Stat()
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if inlineType(m.ContentType) {
		w.Header().Set("Content-Type", m.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": m.Filename}))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if h.cfg.MediaBandwidth != nil && !h.cfg.MediaBandwidth.Unlimited() {
		w = h.cfg.MediaBandwidth.ResponseWriter(r, w)
	}
	http.ServeContent(w, r, m.Filename, st.ModTime(), f)
}

// inlineType reports whether a stored content type is rendered in the
// browser. Everything else, markup and scripts included, is downloaded.
func inlineType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case mt == "image/svg+xml":
		return false
	case strings.HasPrefix(mt, "image/"), strings.HasPrefix(mt, "audio/"), strings.HasPrefix(mt, "video/"):
		return true
	}
	return false
}
