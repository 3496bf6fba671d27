package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/trandev/salesdesk/internal/service/services/composersvc"
	"github.com/trandev/salesdesk/internal/service/services/lowstocksvc"
	editline "github.com/trandev/salesdesk/internal/transport/http/edit_line"
	listlowstock "github.com/trandev/salesdesk/internal/transport/http/list_low_stock"
	opendraft "github.com/trandev/salesdesk/internal/transport/http/open_draft"
	submitdraft "github.com/trandev/salesdesk/internal/transport/http/submit_draft"
	updatedraft "github.com/trandev/salesdesk/internal/transport/http/update_draft"
	viewdraft "github.com/trandev/salesdesk/internal/transport/http/view_draft"
	"github.com/trandev/salesdesk/pkg/http/middleware/trace"
	"github.com/trandev/salesdesk/pkg/logger"
)

// composerService is the composition-session surface used by the transport.
type composerService interface {
	Open(ctx context.Context) (composersvc.Snapshot, error)
	Get(sessionID uuid.UUID) (composersvc.Snapshot, error)
	Discard(sessionID uuid.UUID) error
	UpdateOrder(sessionID uuid.UUID, upd composersvc.OrderUpdate) (composersvc.Snapshot, error)
	AddLine(sessionID uuid.UUID) (composersvc.Snapshot, error)
	RemoveLine(sessionID, lineID uuid.UUID) (composersvc.Snapshot, error)
	SetQty(sessionID, lineID uuid.UUID, qty int) (composersvc.Snapshot, error)
	SelectVariant(ctx context.Context, sessionID, lineID uuid.UUID, variantID int64) (composersvc.Snapshot, error)
	Submit(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

type lowStockService interface {
	ListLowStock(ctx context.Context, threshold int) ([]lowstocksvc.Alert, error)
}

type HTTPTransport struct {
	server      *http.Server
	router      *chi.Mux
	composer    composerService
	lowStockSvc lowStockService
}

func NewHTTPTransport(composer composerService, lowStockSvc lowStockService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:      server,
		router:      router,
		composer:    composer,
		lowStockSvc: lowStockSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/drafts", h.openDraft)
		r.Route("/drafts/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getDraft)
			r.Patch("/", h.updateDraft)
			r.Delete("/", h.discardDraft)
			r.Post("/submit", h.submitDraft)
			r.Post("/lines", h.addLine)
			r.Patch("/lines/{lineID}", h.updateLine)
			r.Delete("/lines/{lineID}", h.removeLine)
		})
		r.Get("/low-stock", h.listLowStock)
	})
}

func (h *HTTPTransport) openDraft(w http.ResponseWriter, r *http.Request) {
	opendraft.Open(w, r, h.composer)
}

func (h *HTTPTransport) getDraft(w http.ResponseWriter, r *http.Request) {
	viewdraft.Get(w, r, h.composer)
}

func (h *HTTPTransport) updateDraft(w http.ResponseWriter, r *http.Request) {
	updatedraft.Update(w, r, h.composer)
}

func (h *HTTPTransport) discardDraft(w http.ResponseWriter, r *http.Request) {
	viewdraft.Discard(w, r, h.composer)
}

func (h *HTTPTransport) submitDraft(w http.ResponseWriter, r *http.Request) {
	submitdraft.Submit(w, r, h.composer)
}

func (h *HTTPTransport) addLine(w http.ResponseWriter, r *http.Request) {
	editline.Add(w, r, h.composer)
}

func (h *HTTPTransport) updateLine(w http.ResponseWriter, r *http.Request) {
	editline.Update(w, r, h.composer)
}

func (h *HTTPTransport) removeLine(w http.ResponseWriter, r *http.Request) {
	editline.Remove(w, r, h.composer)
}

func (h *HTTPTransport) listLowStock(w http.ResponseWriter, r *http.Request) {
	listlowstock.ListLowStock(w, r, h.lowStockSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
