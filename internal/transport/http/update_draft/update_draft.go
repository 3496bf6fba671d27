package updatedraft

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/trandev/salesdesk/internal/service/models/draft"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	"github.com/trandev/salesdesk/internal/transport/http/converters"
	viewdraft "github.com/trandev/salesdesk/internal/transport/http/view_draft"
)

// service is an interface for the service layer.
type service interface {
	UpdateOrder(sessionID uuid.UUID, upd composersvc.OrderUpdate) (composersvc.Snapshot, error)
}

// updateDraftRequest carries the editable order-level fields. Absent fields
// are left untouched; an explicit null customer clears the attachment
// (walk-in sale).
type updateDraftRequest struct {
	Code     *string          `json:"code"     validate:"omitempty,min=1"`
	Customer *json.RawMessage `json:"customer"`
	Status   *string          `json:"status"   validate:"omitempty,oneof=pending paid"`
	Note     *string          `json:"note"`
}

// Validate validates the update request.
func (r *updateDraftRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *updateDraftRequest) toModel() (composersvc.OrderUpdate, error) {
	upd := composersvc.OrderUpdate{
		Code: r.Code,
		Note: r.Note,
	}

	if r.Status != nil {
		status, err := draft.ParseStatus(*r.Status)
		if err != nil {
			return composersvc.OrderUpdate{}, err
		}
		upd.Status = &status
	}

	if r.Customer != nil {
		if string(*r.Customer) == "null" {
			upd.ClearCustomer = true
		} else {
			var customerID int64
			if err := json.Unmarshal(*r.Customer, &customerID); err != nil {
				return composersvc.OrderUpdate{}, err
			}
			upd.CustomerID = &customerID
		}
	}

	return upd, nil
}

// Update handles order-level field changes of a draft.
func Update(w http.ResponseWriter, r *http.Request, service service) {
	sessionID, err := viewdraft.SessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	req := updateDraftRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for draft update", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for draft update", "error", err)

		return
	}

	upd, err := req.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	snapshot, err := service.UpdateOrder(sessionID, upd)
	if err != nil {
		switch {
		case errors.Is(err, composersvc.ErrSessionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, composersvc.ErrSubmitInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error updating draft", "error", err)
		}

		return
	}

	if err := json.NewEncoder(w).Encode(converters.ToSessionResponse(snapshot)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending draft update response", "error", err)
	}
}
