package storage

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Upload is a file being added to the media library.
type Upload struct {
	Filename    string
	ContentType string
	Alt         string
	Body        io.Reader
}

// MediaService keeps uploaded files under <data-dir>/media, indexed by the
// media collection.
type MediaService struct {
	coll     *Collection[*entity.Media]
	dir      string
	maxBytes int64
}

// NewMediaService stores files under dir. Uploads larger than maxBytes are
// rejected; 0 means unlimited.
func NewMediaService(coll *Collection[*entity.Media], dir string, maxBytes int64) *MediaService {
	return &MediaService{coll: coll, dir: dir, maxBytes: maxBytes}
}

// Collection returns the underlying collection.
func (s *MediaService) Collection() *Collection[*entity.Media] {
	return s.coll
}

// Save writes the upload to disk and records it. Editors and above only.
func (s *MediaService) Save(actor entity.Actor, up Upload) (*entity.Media, error) {
	if err := Authorize(actor, entity.RoleEditor); err != nil {
		return nil, err
	}
	name := filepath.Base(strings.TrimSpace(up.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, &FieldError{Field: "filename", Reason: "is required"}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil { //nolint:gosec // G301: media is public
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(name))
	contentType := up.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if t := mime.TypeByExtension(ext); t != "" {
			contentType = t
		}
	}
	stored := uuid.NewString() + ext
	path := filepath.Join(s.dir, stored)
	size, err := s.write(path, up.Body)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	m := &entity.Media{
		Filename:    name,
		StoredName:  stored,
		ContentType: contentType,
		Size:        size,
		Alt:         up.Alt,
		UploaderID:  actor.UserID,
		UploadedAt:  entity.FormatTime(s.coll.env.Clock.Now()),
	}
	m, err = s.coll.Create(m)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return m, nil
}

func (s *MediaService) write(path string, body io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec // G302: media is public
	if err != nil {
		return 0, fmt.Errorf("failed to create media file: %w", err)
	}
	r := body
	if s.maxBytes > 0 {
		r = io.LimitReader(body, s.maxBytes+1)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write media file: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return 0, fmt.Errorf("upload exceeds %d bytes: %w", s.maxBytes, ErrTooLarge)
	}
	return n, nil
}

// Open returns the media record and its file.
func (s *MediaService) Open(id string) (*entity.Media, *os.File, error) {
	m, err := s.coll.Get(id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(m.StoredName)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("media file %q: %w", m.StoredName, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to open media file: %w", err)
	}
	return m, f, nil
}

// Delete removes the record, then its file. Editors and above only.
func (s *MediaService) Delete(actor entity.Actor, id string) error {
	var stored string
	err := s.coll.Delete(id, func(m *entity.Media) error {
		if err := Authorize(actor, entity.RoleEditor); err != nil {
			return err
		}
		stored = m.StoredName
		return nil
	})
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(stored))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}
