// Package api provides the HTTP handlers exposing the sync engine as a
// service. Batch endpoints always answer with a summary and a per-item
// error list rather than failing the whole call for individual bad entries.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"radsync/internal/config"
	"radsync/internal/domain"
	"radsync/internal/middleware"
	syncengine "radsync/internal/sync"
)

// Handler wires the engine components behind the HTTP surface.
type Handler struct {
	projector *syncengine.Projector
	binder    *syncengine.MacBinder
	deleter   *syncengine.Deleter
	toggler   *syncengine.Toggler
	store     domain.Store
	logger    *slog.Logger
}

// NewHandler creates a Handler over the engine components.
func NewHandler(projector *syncengine.Projector, binder *syncengine.MacBinder, deleter *syncengine.Deleter, toggler *syncengine.Toggler, store domain.Store, logger *slog.Logger) *Handler {
	return &Handler{
		projector: projector,
		binder:    binder,
		deleter:   deleter,
		toggler:   toggler,
		store:     store,
		logger:    logger,
	}
}

// endpoints is the route listing returned on unknown paths.
var endpoints = []string{
	"POST /sync/vouchers",
	"POST /sync-mac-bindings",
	"DELETE /delete/voucher",
	"POST /toggle/voucher-status",
	"GET /stats",
	"GET /health",
}

// Router builds the chi router with the standard middleware stack. /health
// is public; everything else requires bearer auth.
func (h *Handler) Router(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			APIToken:  cfg.APIToken,
			JWTSecret: []byte(cfg.JWTSecret),
		}))

		r.Post("/sync/vouchers", h.syncVouchers)
		r.Post("/sync-mac-bindings", h.syncMacBindings)
		r.Delete("/delete/voucher", h.deleteVoucher)
		r.Post("/toggle/voucher-status", h.toggleStatus)
		r.Get("/stats", h.stats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"code":      http.StatusNotFound,
			"message":   "unknown endpoint",
			"endpoints": endpoints,
		})
	})

	return r
}
