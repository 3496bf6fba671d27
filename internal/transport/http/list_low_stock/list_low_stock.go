package listlowstock

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/trandev/salesdesk/internal/service/services/lowstocksvc"
)

// service is an interface for the service layer.
type service interface {
	ListLowStock(ctx context.Context, threshold int) ([]lowstocksvc.Alert, error)
}

type listLowStockRequest struct {
	Threshold int `schema:"threshold,omitempty"`
}

// ListLowStock returns the inventory records running low, with suggested
// stock-in quantities.
func ListLowStock(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &listLowStockRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding low-stock request", "error", err)

		return
	}

	alerts, err := service.ListLowStock(r.Context(), query.Threshold)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error listing low-stock variants", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(alerts); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending low-stock response", "error", err)
	}
}
