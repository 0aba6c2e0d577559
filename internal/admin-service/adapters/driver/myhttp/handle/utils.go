package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"shop-admin/internal/admin-service/core/myerrors"
)

const (
	WaitTime = 10
)

var (
	errUnavailable = errors.New("service temporarily unavailable, please try again later")
	errInternal    = errors.New("internal error")
)

// jsonResponse writes the given data as a JSON-encoded HTTP response.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// JsonError writes an error response as JSON with the specified HTTP status code.
func JsonError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, myerrors.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, myerrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, myerrors.ErrInvalidPoints), errors.Is(err, myerrors.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, myerrors.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError hides infrastructure details behind a generic message.
func writeServiceError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	switch code {
	case http.StatusServiceUnavailable:
		JsonError(w, code, errUnavailable)
	case http.StatusInternalServerError:
		JsonError(w, code, errInternal)
	default:
		JsonError(w, code, err)
	}
}
