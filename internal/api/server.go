// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package api serves the read-side views and Prometheus metrics over
// HTTP. The surface is read-only; configuration goes through the vty.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/mplsd/internal/lib"
	"grimm.is/mplsd/internal/logging"
	"grimm.is/mplsd/internal/metrics"
)

// Server handles API requests.
type Server struct {
	engine   *lib.Engine
	logger   *logging.Logger
	registry *prometheus.Registry
}

// NewServer creates a server over the engine and registers its metrics
// collector.
func NewServer(engine *lib.Engine, logger *logging.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(engine))

	return &Server{
		engine:   engine,
		logger:   logger,
		registry: registry,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/forwarding", s.handleForwarding).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/bindings", s.handleBindings).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/static", s.handleStatic).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/crossconnects", s.handleCrossConnects).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// ListenAndServe runs the HTTP server with hardened timeouts.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	s.logger.Info("API listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Response encode failed", "error", err)
	}
}

func (s *Server) handleForwarding(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.ForwardingTable())
}

func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.BindingTable())
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.StaticBindings())
}

func (s *Server) handleCrossConnects(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.CrossConnects())
}
