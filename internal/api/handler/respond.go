package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ricirt/healthcheck/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Error())
	case errors.Is(err, domain.ErrNoFilterRegistered):
		respondError(w, http.StatusForbidden, domain.ErrNoFilterRegistered.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", `Bearer realm="health"`)
		respondError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
	case errors.Is(err, domain.ErrInvalidPayload):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUpdatesNotSupported):
		respondError(w, http.StatusMethodNotAllowed, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
