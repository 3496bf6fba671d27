package editline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/models/draft"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	"github.com/trandev/salesdesk/internal/transport/http/converters"
	viewdraft "github.com/trandev/salesdesk/internal/transport/http/view_draft"
)

// service is an interface for the service layer.
type service interface {
	AddLine(sessionID uuid.UUID) (composersvc.Snapshot, error)
	RemoveLine(sessionID, lineID uuid.UUID) (composersvc.Snapshot, error)
	SetQty(sessionID, lineID uuid.UUID, qty int) (composersvc.Snapshot, error)
	SelectVariant(ctx context.Context, sessionID, lineID uuid.UUID, variantID int64) (composersvc.Snapshot, error)
}

// updateLineRequest carries a single line mutation: a variant selection, a
// quantity change, or both. Unit price and stock are derived server-side and
// cannot be set here.
type updateLineRequest struct {
	ProductVariant *int64 `json:"product_variant"`
	Qty            *int   `json:"qty"`
}

func lineID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "lineID"))
}

// Add appends a blank line to the draft.
func Add(w http.ResponseWriter, r *http.Request, service service) {
	sessionID, err := viewdraft.SessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	snapshot, err := service.AddLine(sessionID)
	if err != nil {
		writeServiceError(w, err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	encodeSnapshot(w, snapshot)
}

// Remove deletes a line. The last remaining line cannot be removed.
func Remove(w http.ResponseWriter, r *http.Request, service service) {
	sessionID, err := viewdraft.SessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	id, err := lineID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	snapshot, err := service.RemoveLine(sessionID, id)
	if err != nil {
		writeServiceError(w, err)

		return
	}

	encodeSnapshot(w, snapshot)
}

// Update applies a line mutation. Selecting a variant snapshots its catalog
// price and triggers a fresh stock lookup.
func Update(w http.ResponseWriter, r *http.Request, service service) {
	sessionID, err := viewdraft.SessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	id, err := lineID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := updateLineRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for line update", "error", err)

		return
	}

	var snapshot composersvc.Snapshot
	if req.ProductVariant != nil {
		snapshot, err = service.SelectVariant(r.Context(), sessionID, id, *req.ProductVariant)
		if err != nil {
			writeServiceError(w, err)

			return
		}
	}
	if req.Qty != nil {
		snapshot, err = service.SetQty(sessionID, id, *req.Qty)
		if err != nil {
			writeServiceError(w, err)

			return
		}
	}

	if req.ProductVariant == nil && req.Qty == nil {
		http.Error(w, "product_variant or qty is required", http.StatusBadRequest)

		return
	}

	encodeSnapshot(w, snapshot)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, composersvc.ErrSessionNotFound), errors.Is(err, draft.ErrLineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, draft.ErrLastLine), errors.Is(err, composersvc.ErrSubmitInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, composersvc.ErrUnknownVariant):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error editing draft line", "error", err)
	}
}

func encodeSnapshot(w http.ResponseWriter, snapshot composersvc.Snapshot) {
	if err := json.NewEncoder(w).Encode(converters.ToSessionResponse(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending line edit response", "error", err)
	}
}
