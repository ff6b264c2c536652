package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/feirinha/internal/categories"
	"github.com/dukerupert/feirinha/internal/lists"
	"github.com/dukerupert/feirinha/internal/markets"
	"github.com/dukerupert/feirinha/internal/places"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func urlParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// statusFor maps store and service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lists.ErrListNotFound),
		errors.Is(err, lists.ErrItemNotFound),
		errors.Is(err, categories.ErrCategoryNotFound),
		errors.Is(err, markets.ErrMarketNotFound),
		errors.Is(err, places.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lists.ErrNameRequired),
		errors.Is(err, lists.ErrInvalidStatus),
		errors.Is(err, categories.ErrNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, categories.ErrDefaultCategory):
		return http.StatusForbidden
	case errors.Is(err, categories.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, places.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeErr writes err with the status from statusFor. Unexpected errors are
// reported without their details.
func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}
