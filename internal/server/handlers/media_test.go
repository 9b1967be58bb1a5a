package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/lumina-fans/idolcms/internal/rid"
	"github.com/lumina-fans/idolcms/internal/server/reqctx"
	"github.com/lumina-fans/idolcms/internal/storage"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// countingReader records how much of a request body was consumed.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func newMediaHandler(t *testing.T, maxUpload int64) (*MediaHandler, *storage.Store) {
	t.Helper()
	store, err := storage.Open(t.TempDir(), storage.Options{IDs: &rid.Sequence{}})
	if err != nil {
		t.Fatal(err)
	}
	svc := storage.NewMediaService(store.Media, filepath.Join(store.Dir(), "media"), maxUpload)
	return NewMediaHandler(svc, &Config{MaxUploadBytes: maxUpload}), store
}

func multipartBody(t *testing.T, filename string, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte{'x'}, size)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestMediaUpload_Limits(t *testing.T) {
	const limit = 1024
	tests := []struct {
		name     string
		actor    entity.Actor
		size     int
		want     int
		unread   bool
		wantSize int
	}{
		{"anonymous oversized", entity.Actor{}, 2 << 20, http.StatusForbidden, true, 0},
		{"fan oversized", entity.Actor{UserID: "usr_fan", Role: entity.RoleUser}, 2 << 20, http.StatusForbidden, true, 0},
		{"editor oversized", entity.Actor{UserID: "usr_ed", Role: entity.RoleEditor}, 2 << 20, http.StatusRequestEntityTooLarge, false, 0},
		{"editor within quota", entity.Actor{UserID: "usr_ed", Role: entity.RoleEditor}, limit, http.StatusCreated, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newMediaHandler(t, limit)
			body, contentType := multipartBody(t, "clip.mp3", tt.size)
			cr := &countingReader{r: body}
			req := httptest.NewRequest(http.MethodPost, "/api/media", cr)
			req.Header.Set("Content-Type", contentType)
			req = req.WithContext(reqctx.WithActor(req.Context(), tt.actor))
			w := httptest.NewRecorder()
			h.Upload(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.unread && cr.n != 0 {
				t.Errorf("read %d body bytes before rejecting", cr.n)
			}
			if n, err := store.Media.Count(); err != nil || n != tt.wantSize {
				t.Errorf("media records = %d, %v", n, err)
			}
		})
	}
}

func TestMediaServe_Headers(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		disposition string
	}{
		{"cover.png", "image/png", ""},
		{"intro.flac", "audio/flac", ""},
		{"page.html", "application/octet-stream", `attachment; filename=page.html`},
		{"logo.svg", "application/octet-stream", `attachment; filename=logo.svg`},
		{"intro.lrc", "application/octet-stream", `attachment; filename=intro.lrc`},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			h, _ := newMediaHandler(t, 0)
			m, err := h.svc.Save(entity.Actor{UserID: "usr_ed", Role: entity.RoleEditor}, storage.Upload{
				Filename: tt.filename,
				Body:     bytes.NewReader([]byte("<script>alert(1)</script>")),
			})
			if err != nil {
				t.Fatal(err)
			}
			req := httptest.NewRequest(http.MethodGet, "/media/"+m.ID, nil)
			req.SetPathValue("id", m.ID)
			w := httptest.NewRecorder()
			h.Serve(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := w.Header().Get("Content-Disposition"); got != tt.disposition {
				t.Errorf("Content-Disposition = %q, want %q", got, tt.disposition)
			}
		})
	}
}

func TestInlineType(t *testing.T) {
	for ct, want := range map[string]bool{
		"image/webp":               true,
		"video/mp4":                true,
		"audio/flac":               true,
		"image/svg+xml":            false,
		"text/html; charset=utf-8": false,
		"text/plain":               false,
		"":                         false,
	} {
		if got := inlineType(ct); got != want {
			t.Errorf("inlineType(%q) = %v", ct, got)
		}
	}
}
