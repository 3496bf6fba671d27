package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"github.com/trandev/salesdesk/internal/dal/rabbitmq"
	"github.com/trandev/salesdesk/internal/dal/redisx"
	"github.com/trandev/salesdesk/internal/dal/rest"
	catalogrepo "github.com/trandev/salesdesk/internal/dal/repositories/catalog/rest"
	customerrepo "github.com/trandev/salesdesk/internal/dal/repositories/customer/rest"
	inventoryrepo "github.com/trandev/salesdesk/internal/dal/repositories/inventory/rest"
	orderrepo "github.com/trandev/salesdesk/internal/dal/repositories/order/rest"
	"github.com/trandev/salesdesk/internal/otel"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	"github.com/trandev/salesdesk/internal/service/services/lowstocksvc"
	httptransport "github.com/trandev/salesdesk/internal/transport/http"
	lowstockworker "github.com/trandev/salesdesk/internal/worker/lowstock"
)

// App represents the application.
type App struct {
	composerSvc    *composersvc.ComposerService
	lowStockSvc    *lowstocksvc.LowStockService
	transport      *httptransport.HTTPTransport
	worker         *lowstockworker.Worker
	rabbitClient   *rabbitmq.Client
	cache          *redisx.Cache
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	restClient := rest.MustNewClient()
	cache := redisx.MustNewCache()
	rabbitClient := rabbitmq.MustNewClient()
	publisher := rabbitmq.MustNewPublisher(rabbitClient)

	pageSize := viper.GetInt("backend.listing_page_size")

	composerSvc := composersvc.MustNewComposerService(
		composersvc.WithStockRepository(inventoryrepo.NewRestInventoryRepository(restClient)),
		composersvc.WithCatalogRepository(catalogrepo.NewRestCatalogRepository(restClient, pageSize)),
		composersvc.WithCustomerRepository(customerrepo.NewRestCustomerRepository(restClient, pageSize)),
		composersvc.WithOrderRepository(orderrepo.NewRestOrderRepository(restClient)),
		composersvc.WithEventPublisher(publisher),
		composersvc.WithListingCache(cache, viper.GetDuration("redis.listing_ttl")),
	)

	lowStockSvc := lowstocksvc.MustNewLowStockService(
		lowstocksvc.WithInventoryRepository(inventoryrepo.NewRestInventoryRepository(restClient)),
		lowstocksvc.WithThresholds(
			viper.GetInt("lowstock.threshold"),
			viper.GetInt("lowstock.restock_target"),
			viper.GetInt("lowstock.min_order_qty"),
		),
	)

	worker := lowstockworker.NewWorker(lowStockSvc, publisher)

	transport := httptransport.NewHTTPTransport(composerSvc, lowStockSvc)
	transport.RegisterRoutes()

	return &App{
		composerSvc:    composerSvc,
		lowStockSvc:    lowStockSvc,
		transport:      transport,
		worker:         worker,
		rabbitClient:   rabbitClient,
		cache:          cache,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.worker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	a.composerSvc.WaitForLookups()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if err := a.cache.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	} else {
		slog.Info("Redis connection closed gracefully")
	}

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
