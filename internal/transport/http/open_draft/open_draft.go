package opendraft

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	"github.com/trandev/salesdesk/internal/transport/http/converters"
)

// service is an interface for the service layer.
type service interface {
	Open(ctx context.Context) (composersvc.Snapshot, error)
}

// Open handles the start of a new composition session.
func Open(w http.ResponseWriter, r *http.Request, service service) {
	snapshot, err := service.Open(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error opening composition session", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(converters.ToSessionResponse(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response for open session", "error", err)
	}
}
