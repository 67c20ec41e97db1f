package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wildfiresync/gendersync/internal/api/handler"
	"github.com/wildfiresync/gendersync/internal/api/middleware"
	"github.com/wildfiresync/gendersync/internal/services/auth"
	syncsvc "github.com/wildfiresync/gendersync/internal/services/sync"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	Coordinator       *syncsvc.Coordinator
	SilenceAccessLogs bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	syncHandler := handler.NewSyncHandler(cfg.Coordinator)
	queryHandler := handler.NewQueryHandler(cfg.Coordinator)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v2").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	if !cfg.SilenceAccessLogs {
		api.Use(middleware.Logging(cfg.Logger))
	}

	// Token issuance and read-only routes (no bearer token required)
	api.HandleFunc("/auth", authHandler.Issue).Methods(http.MethodGet)
	api.HandleFunc("/bulk-query", queryHandler.Bulk).Methods(http.MethodPost)
	api.HandleFunc("/stats", queryHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/health", queryHandler.Health).Methods(http.MethodGet)

	// Sync routes require a bearer credential
	syncRoutes := api.PathPrefix("/sync").Subrouter()
	syncRoutes.Use(middleware.RequireBearer)
	syncRoutes.HandleFunc("/{uuid}", syncHandler.Get).Methods(http.MethodGet)
	syncRoutes.HandleFunc("/{uuid}", syncHandler.Push).Methods(http.MethodPost)

	return r
}
