// cmd/server/server.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mandrade85ma-cloud/site/internal/api"
	"github.com/mandrade85ma-cloud/site/internal/api/teams"
	"github.com/mandrade85ma-cloud/site/internal/config"
	"github.com/mandrade85ma-cloud/site/internal/db"
	"github.com/mandrade85ma-cloud/site/internal/metrics"
)

const healthCheckTimeout = 2 * time.Second

func newServer(cfg *config.Config, database *db.DB) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router, cfg, database)

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, database *db.DB) {
	mux.HandleFunc("GET /health", healthHandler(database))

	if cfg.Features.EnableMetrics {
		metrics.Register(mux)
	}

	// Balanced teams
	mux.HandleFunc("GET /api/v1/events/{id}/roster", teams.HandleRoster)
	mux.HandleFunc("PUT /api/v1/events/{id}/ratings", teams.HandleSaveRatings)
	mux.HandleFunc("POST /api/v1/events/{id}/teams", teams.HandleGenerateTeams)
	mux.HandleFunc("GET /api/v1/events/{id}/teams", teams.HandleTeamsResult)
}

func healthHandler(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := database.PingContext(ctx); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
