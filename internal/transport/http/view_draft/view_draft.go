package viewdraft

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	"github.com/trandev/salesdesk/internal/transport/http/converters"
)

// service is an interface for the service layer.
type service interface {
	Get(sessionID uuid.UUID) (composersvc.Snapshot, error)
	Discard(sessionID uuid.UUID) error
}

// SessionID parses the session identifier from the URL.
func SessionID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "sessionID"))
}

// Get returns the current view of a composition session.
func Get(w http.ResponseWriter, r *http.Request, service service) {
	sessionID, err := SessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	snapshot, err := service.Get(sessionID)
	if err != nil {
		if errors.Is(err, composersvc.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)

			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting composition session", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(converters.ToSessionResponse(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending session response", "error", err)
	}
}

// Discard drops a composition session and its draft.
func Discard(w http.ResponseWriter, r *http.Request, service service) {
	sessionID, err := SessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if err := service.Discard(sessionID); err != nil {
		if errors.Is(err, composersvc.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)

			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error discarding composition session", "error", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
