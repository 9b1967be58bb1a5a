package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumina-fans/idolcms/internal/jsondoc"
	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
)

func TestToAPIError(t *testing.T) {
	malformed := &jsondoc.MalformedError{
		Path:  "/srv/data/tracks.json",
		Index: 3,
		Err:   &storage.FieldError{Field: "title", Reason: "is required"},
	}
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", fmt.Errorf("tracks %q: %w", "trk_9", storage.ErrNotFound), http.StatusNotFound, dto.ErrorCodeNotFound},
		{"conflict", fmt.Errorf("slug: %w", storage.ErrConflict), http.StatusConflict, dto.ErrorCodeConflict},
		{"permission", storage.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodePermissionDenied},
		{"credentials", storage.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"too large", fmt.Errorf("upload: %w", storage.ErrTooLarge), http.StatusRequestEntityTooLarge, dto.ErrorCodePayloadTooLarge},
		{"field", &storage.FieldError{Field: "duration", Reason: "must be at least 0"}, http.StatusBadRequest, dto.ErrorCodeInvalidFormat},
		{"invalid", fmt.Errorf("record: %w", storage.ErrInvalid), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"sort", fmt.Errorf("sort by %q: %w", "color", query.ErrUnknownField), http.StatusBadRequest, dto.ErrorCodeInvalidFormat},
		{"malformed before invalid", malformed, http.StatusInternalServerError, dto.ErrorCodeMalformedDocument},
		{"api error kept", dto.MissingField("id"), http.StatusBadRequest, dto.ErrorCodeMissingField},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrorCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ews dto.ErrorWithStatus
			if !errors.As(ToAPIError(tt.err), &ews) {
				t.Fatalf("ToAPIError(%v) has no status", tt.err)
			}
			if ews.StatusCode() != tt.status || ews.Code() != tt.code {
				t.Errorf("ToAPIError(%v) = %d %s, want %d %s", tt.err, ews.StatusCode(), ews.Code(), tt.status, tt.code)
			}
		})
	}

	t.Run("malformed names the document", func(t *testing.T) {
		var apiErr *dto.APIError
		if !errors.As(ToAPIError(malformed), &apiErr) || apiErr.Details()["document"] != "tracks" {
			t.Errorf("details = %v", apiErr.Details())
		}
	})
	t.Run("unknown hides the cause", func(t *testing.T) {
		if got := ToAPIError(errors.New("disk on fire")).Error(); got != "internal error" {
			t.Errorf("message = %q", got)
		}
	})
	if ToAPIError(nil) != nil {
		t.Error("ToAPIError(nil) != nil")
	}
}

func TestWriteErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/media/med_1", nil)
	writeErrorResponse(w, r, fmt.Errorf("media %q: %w", "med_1", storage.ErrNotFound))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Code != dto.ErrorCodeNotFound || resp.Error.Message != `media "med_1": not found` {
		t.Errorf("response = %+v", resp)
	}
}
