package lowstock

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/trandev/salesdesk/internal/service/services/lowstocksvc"
)

type eventPublisher interface {
	PublishLowStock(alerts []lowstocksvc.Alert) error
}

// Worker periodically scans inventory for low-stock variants and publishes a
// notification batch for the dashboard.
type Worker struct {
	lowStockSvc  *lowstocksvc.LowStockService
	events       eventPublisher
	pollInterval time.Duration
	stopCh       chan struct{}
}

// NewWorker creates a new low-stock worker.
func NewWorker(
	lowStockSvc *lowstocksvc.LowStockService,
	events eventPublisher,
) *Worker {
	pollIntervalSeconds := viper.GetInt("lowstock.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 300
	}

	return &Worker{
		lowStockSvc:  lowStockSvc,
		events:       events,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		stopCh:       make(chan struct{}),
	}
}

// Start begins scanning inventory.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Low-stock worker started", "poll_interval", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Low-stock worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Low-stock worker stopped")

			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// scan fetches the current low-stock alerts and publishes them if any exist.
func (w *Worker) scan(ctx context.Context) {
	alerts, err := w.lowStockSvc.ListLowStock(ctx, 0)
	if err != nil {
		slog.Error("Failed to scan inventory for low stock", "error", err)

		return
	}

	if len(alerts) == 0 {
		return
	}

	slog.Info("Low-stock variants found", "count", len(alerts))

	if err := w.events.PublishLowStock(alerts); err != nil {
		slog.Error("Failed to publish low-stock notification", "error", err)
	}
}
