// Provides middleware for standardizing HTTP handlers.

package server

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/lumina-fans/idolcms/internal/ratelimit"
	"github.com/lumina-fans/idolcms/internal/server/dto"
	"github.com/lumina-fans/idolcms/internal/server/handlers"
	"github.com/lumina-fans/idolcms/internal/server/reqctx"
	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// addRequestMetadataToContext adds client IP, User-Agent and the caller's
// identity to the context.
func addRequestMetadataToContext(ctx context.Context, r *http.Request) context.Context {
	ctx = reqctx.WithClientIP(ctx, reqctx.GetClientIP(r))
	ctx = reqctx.WithUserAgent(ctx, r.Header.Get("User-Agent"))
	ctx = reqctx.WithActor(ctx, reqctx.GetActor(r))
	return ctx
}

// readAndDecodeBody reads the request body with size limit and decodes JSON into input.
// Returns false if an error occurred and was written to the response.
func readAndDecodeBody[In any](ctx context.Context, w http.ResponseWriter, r *http.Request, input *In, cfg *handlers.Config) bool {
	if cfg != nil && cfg.MaxRequestBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBodyBytes)
	}

	body, err := io.ReadAll(r.Body)
	if err2 := r.Body.Close(); err == nil {
		err = err2
	}
	if err != nil {
		if maxBytesErr := checkMaxBytesError(err); maxBytesErr != nil {
			writeAPIError(w, dto.PayloadTooLarge(maxBytesErr.Limit))
			return false
		}
		slog.ErrorContext(ctx, "Failed to read request body", "err", err)
		writeBadRequestError(w, "Failed to read request body")
		return false
	}

	if len(bytes.TrimSpace(body)) > 0 {
		d := json.NewDecoder(bytes.NewReader(body))
		d.DisallowUnknownFields()
		if err := d.Decode(input); err != nil {
			slog.WarnContext(ctx, "Failed to decode request body", "err", err)
			writeErrorResponseWithCode(w, http.StatusBadRequest, dto.ErrorCodeInvalidFormat, "Invalid request body: "+err.Error(), nil)
			return false
		}
	}
	return true
}

// writeJSONResponse writes a JSON response or error response.
func writeJSONResponse[Out any](ctx context.Context, w http.ResponseWriter, output *Out, err error) {
	if err != nil {
		apiErr := handlers.ToAPIError(err)
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
			slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", statusCode, "code", errorCode)
		} else {
			slog.InfoContext(ctx, "Request rejected", "err", err, "statusCode", statusCode, "code", errorCode)
		}
		writeErrorResponseWithCode(w, statusCode, errorCode, apiErr.Error(), details)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(output); err != nil {
		slog.ErrorContext(ctx, "Failed to encode response", "err", err)
	}
}

// decodeRequest builds the handler input from the body, the path and the
// query string, then validates it. Returns false if an error was written.
func decodeRequest[In any, PtrIn interface {
	*In
	dto.Validatable
}](ctx context.Context, w http.ResponseWriter, r *http.Request, cfg *handlers.Config) (PtrIn, bool) {
	input := new(In)
	if !readAndDecodeBody(ctx, w, r, input, cfg) {
		return nil, false
	}

	populatePathParams(r, input)
	if err := populateQueryParams(r, input); err != nil {
		handleValidationError(ctx, w, err)
		return nil, false
	}

	if err := PtrIn(input).Validate(); err != nil {
		handleValidationError(ctx, w, err)
		return nil, false
	}
	return PtrIn(input), true
}

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, *In) (*Out, error)
// where In can be unmarshalled from JSON and Out is a struct.
// Path parameters can be extracted by tagging struct fields with `path:"name"`
// and query parameters with `query:"name"`.
// *In must implement dto.Validatable.
//
// Example:
//
//	type GetTrackRequest struct {
//	    ID string `path:"id"`
//	}
//
//	func (h *Handler) GetTrack(ctx context.Context, req *GetTrackRequest) (*Response, error)
func Wrap[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, PtrIn) (*Out, error), cfg *handlers.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := addRequestMetadataToContext(r.Context(), r)
		input, ok := decodeRequest[In, PtrIn](ctx, w, r, cfg)
		if !ok {
			return
		}
		output, err := fn(ctx, input)
		writeJSONResponse(ctx, w, output, err)
	})
}

// WrapActor wraps a handler that acts on behalf of the caller.
// The function must have signature: func(context.Context, entity.Actor, *In) (*Out, error)
// The actor may be anonymous; the handler decides what it is allowed to do.
func WrapActor[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, entity.Actor, PtrIn) (*Out, error), cfg *handlers.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := addRequestMetadataToContext(r.Context(), r)
		input, ok := decodeRequest[In, PtrIn](ctx, w, r, cfg)
		if !ok {
			return
		}
		output, err := fn(ctx, reqctx.Actor(ctx), input)
		writeJSONResponse(ctx, w, output, err)
	})
}

// WrapRaw wraps a raw http.HandlerFunc, for handlers that need to handle
// requests directly (multipart forms, file downloads). The request context
// carries the same metadata as with Wrap.
func WrapRaw(fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := addRequestMetadataToContext(r.Context(), r)
		fn(w, r.WithContext(ctx))
	})
}

// checkMaxBytesError checks if an error is a MaxBytesError and returns it, or nil.
func checkMaxBytesError(err error) *http.MaxBytesError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return maxBytesErr
	}
	return nil
}

// populatePathParams extracts path parameters from the request and populates
// struct fields tagged with `path:"paramName"`.
func populatePathParams(r *http.Request, input any) {
	elem, ok := structElem(input)
	if !ok {
		return
	}
	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("path")
		if tag == "" {
			continue
		}
		paramValue := r.PathValue(tag)
		if paramValue == "" {
			continue
		}
		if field.Type.Kind() == reflect.String {
			elem.Field(i).SetString(paramValue)
		}
	}
}

// populateQueryParams extracts query parameters from the request and populates
// struct fields tagged with `query:"paramName"`. A map[string]string field
// tagged `query:"*"` receives every parameter no other field claims.
func populateQueryParams(r *http.Request, input any) error {
	elem, ok := structElem(input)
	if !ok {
		return nil
	}

	values := r.URL.Query()
	typ := elem.Type()
	claimed := make(map[string]bool)
	rest := -1
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("query")
		if tag == "" {
			continue
		}
		if tag == "*" {
			rest = i
			continue
		}
		claimed[tag] = true

		paramValue := values.Get(tag)
		if paramValue == "" {
			continue
		}

		fieldVal := elem.Field(i)
		switch field.Type.Kind() {
		case reflect.String:
			fieldVal.SetString(paramValue)
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(paramValue, 10, 64)
			if err != nil {
				return dto.InvalidField(tag, "must be an integer")
			}
			fieldVal.SetInt(intVal)
		case reflect.Bool:
			b, err := strconv.ParseBool(paramValue)
			if err != nil {
				return dto.InvalidField(tag, "must be true or false")
			}
			fieldVal.SetBool(b)
		default:
			if fieldVal.CanAddr() {
				if unmarshaler, ok := fieldVal.Addr().Interface().(encoding.TextUnmarshaler); ok {
					if err := unmarshaler.UnmarshalText([]byte(paramValue)); err != nil {
						return dto.InvalidField(tag, err.Error())
					}
				}
			}
		}
	}

	if rest >= 0 && typ.Field(rest).Type == reflect.TypeFor[map[string]string]() {
		m := make(map[string]string)
		for k, v := range values {
			if claimed[k] || len(v) == 0 {
				continue
			}
			m[k] = v[0]
		}
		if len(m) > 0 {
			elem.Field(rest).Set(reflect.ValueOf(m))
		}
	}
	return nil
}

// structElem returns the struct input points to.
func structElem(input any) (reflect.Value, bool) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Pointer {
		return reflect.Value{}, false
	}
	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return elem, true
}

// handleValidationError handles a validation error from a request's Validate method.
func handleValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	statusCode := http.StatusBadRequest
	errorCode := dto.ErrorCodeValidationFailed
	var details map[string]any

	var ewsErr dto.ErrorWithStatus
	if errors.As(err, &ewsErr) {
		statusCode = ewsErr.StatusCode()
		errorCode = ewsErr.Code()
		details = ewsErr.Details()
	}

	slog.InfoContext(ctx, "Validation error", "err", err, "statusCode", statusCode, "code", errorCode)
	writeErrorResponseWithCode(w, statusCode, errorCode, err.Error(), details)
}

// writeBadRequestError writes a 400 Bad Request error response as JSON (internal use).
func writeBadRequestError(w http.ResponseWriter, message string) {
	writeErrorResponseWithCode(w, http.StatusBadRequest, dto.ErrorCodeValidationFailed, message, nil)
}

// writeAPIError writes a typed API error.
func writeAPIError(w http.ResponseWriter, apiErr *dto.APIError) {
	writeErrorResponseWithCode(w, apiErr.StatusCode(), apiErr.Code(), apiErr.Error(), apiErr.Details())
}

// writeErrorResponseWithCode writes a detailed error response as JSON with code and details.
func writeErrorResponseWithCode(w http.ResponseWriter, statusCode int, code dto.ErrorCode, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := dto.ErrorResponse{
		Error: dto.ErrorDetails{
			Code:    code,
			Message: message,
		},
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// writeRateLimitError writes a 429 rate limit error response.
func writeRateLimitError(w http.ResponseWriter, r *http.Request, result ratelimit.Result) {
	slog.InfoContext(r.Context(), "Rate limited", "ip", reqctx.GetClientIP(r), "path", r.URL.Path)
	writeAPIError(w, dto.RateLimitExceeded(ratelimit.RetryAfterSeconds(result)))
}
