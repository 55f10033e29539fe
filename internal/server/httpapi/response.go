// Package httpapi exposes the vidtube services over HTTP using chi.
//
// Every response body is an envelope:
//
//	{"statusCode": 200, "data": {...}, "message": "ok", "success": true}
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
)

// Envelope is the JSON body of every response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// fieldError is the data of a 400 response caused by a ValidationError.
type fieldError struct {
	Field string `json:"field"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// statusFor maps a service error onto an HTTP status and client message.
// Causes behind unauthorized and internal errors are never exposed.
func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "validation error"
	case errors.Is(err, common.ErrorTooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	status, msg := statusFor(err)

	var data any
	var ve *common.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		data = fieldError{Field: ve.Field}
	}

	switch {
	case status >= http.StatusInternalServerError:
		log.Error(ctx, "request failed", "error", err)
	case status == http.StatusUnauthorized:
		log.Debug(ctx, "request rejected", "error", err)
	}

	writeJSON(w, status, data, msg)
}

// decodeJSON reads a JSON object from r into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case isTooLarge(err):
		return common.ErrorTooLarge
	default:
		return common.NewValidationError("", "invalid request body")
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
