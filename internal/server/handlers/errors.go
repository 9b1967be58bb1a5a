// Maps storage errors to API errors and writes error responses.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/lumina-fans/idolcms/internal/jsondoc"
	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/storage"
)

// ToAPIError classifies err for the client. Errors that already carry a
// status are returned as is; unknown errors become a bare internal error so
// their text never reaches the client.
func ToAPIError(err error) error {
	if err == nil {
		return nil
	}
	var ews dto.ErrorWithStatus
	if errors.As(err, &ews) {
		return err
	}
	// Malformed documents wrap schema violations, so they are checked before
	// ErrInvalid.
	var mal *jsondoc.MalformedError
	if errors.As(err, &mal) {
		return dto.MalformedDocument(strings.TrimSuffix(filepath.Base(mal.Path), ".json"), err)
	}
	var fe *storage.FieldError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return dto.NewAPIError(http.StatusNotFound, dto.ErrorCodeNotFound, err.Error())
	case errors.Is(err, storage.ErrConflict):
		return dto.Conflict(err.Error())
	case errors.Is(err, storage.ErrPermissionDenied):
		return dto.PermissionDenied(err.Error())
	case errors.Is(err, storage.ErrInvalidCredentials):
		return dto.Unauthorized("invalid username or password")
	case errors.Is(err, storage.ErrTooLarge):
		return dto.NewAPIError(http.StatusRequestEntityTooLarge, dto.ErrorCodePayloadTooLarge, err.Error())
	case errors.As(err, &fe) && fe.Field != "":
		return dto.InvalidField(fe.Field, fe.Reason).Wrap(err)
	case errors.Is(err, storage.ErrInvalid):
		return dto.BadRequest(err.Error())
	case errors.Is(err, query.ErrUnknownField):
		return dto.InvalidField("sort", err.Error())
	}
	return dto.Internal("internal error")
}

// writeErrorResponse writes err as a JSON response.
// Use this in raw http.HandlerFunc handlers that don't use server.Wrap.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := ToAPIError(err)
	statusCode := http.StatusInternalServerError
	errorCode := dto.ErrorCodeInternal
	var details map[string]any

	var ewsErr dto.ErrorWithStatus
	if errors.As(apiErr, &ewsErr) {
		statusCode = ewsErr.StatusCode()
		errorCode = ewsErr.Code()
		details = ewsErr.Details()
	}
	if statusCode >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Handler error", "err", err, "path", r.URL.Path)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := dto.ErrorResponse{
		Error: dto.ErrorDetails{
			Code:    errorCode,
			Message: apiErr.Error(),
		},
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode error response", "err", err)
	}
}
