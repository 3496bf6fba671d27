package submitdraft

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	orderrepo "github.com/trandev/salesdesk/internal/dal/repositories/order/rest"
	"github.com/trandev/salesdesk/internal/service/models/draft"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	viewdraft "github.com/trandev/salesdesk/internal/transport/http/view_draft"
)

// service is an interface for the service layer.
type service interface {
	Submit(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

// submitDraftResponse carries the identifier of the created order.
type submitDraftResponse struct {
	ID int64 `json:"id"`
}

// Submit validates the draft and forwards it to the order-creation endpoint.
// Validation and backend rejections keep the session alive so the user can
// correct and resubmit.
func Submit(w http.ResponseWriter, r *http.Request, service service) {
	sessionID, err := viewdraft.SessionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	orderID, err := service.Submit(r.Context(), sessionID)
	if err != nil {
		var validationErr *draft.ValidationError
		var submissionErr *orderrepo.SubmissionError

		switch {
		case errors.Is(err, composersvc.ErrSessionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, composersvc.ErrSubmitInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.As(err, &validationErr):
			http.Error(w, validationErr.Message, http.StatusUnprocessableEntity)
		case errors.As(err, &submissionErr):
			http.Error(w, submissionErr.Message, http.StatusBadGateway)
			slog.Error("Order submission rejected by backend",
				"status", submissionErr.StatusCode, "message", submissionErr.Message)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error submitting order", "error", err)
		}

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(submitDraftResponse{ID: orderID}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending submit response", "error", err)
	}
}
