// Package admin provides a lightweight HTTP API for runtime inspection of a
// running cache daemon, served on a separate port from the wire protocol.
//
// Endpoints:
//
//	GET /status   - daemon health, configuration summary
//	GET /metrics  - metrics.Metrics snapshot
package admin

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"netcache/internal/config"
	"netcache/internal/engine"
	"netcache/internal/logger"
	"netcache/internal/metrics"
)

// Server is the admin API server.
type Server struct {
	cfg       *config.Config
	engine    *engine.Engine
	metrics   *metrics.Metrics
	log       *logger.Logger
	startTime time.Time
	token     string // bearer token for auth; empty = no auth
}

// New creates an admin server. cfg.AdminToken, if non-empty, is required as
// a Bearer credential on every request.
func New(cfg *config.Config, e *engine.Engine, m *metrics.Metrics, log *logger.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    e,
		metrics:   m,
		log:       log,
		startTime: time.Now(),
		token:     cfg.AdminToken,
	}
	if s.token != "" && log != nil {
		log.Info("admin", "bearer token authentication enabled")
	}
	return s
}

// Handler returns the HTTP handler for the admin API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return s.authMiddleware(mux)
}

// authMiddleware checks for a valid Bearer token if one is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(auth[len(prefix):])), []byte(s.token)) != 1 {
			if s.log != nil {
				s.log.Warnf("admin", "unauthorized access attempt from %s to %s", r.RemoteAddr, r.URL.Path)
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	type response struct {
		Status    string `json:"status"`
		Uptime    string `json:"uptime"`
		Port      int    `json:"port"`
		Policy    string `json:"policy"`
		MaxMem    int    `json:"maxMemBytes"`
		SpaceUsed int    `json:"spaceUsedBytes"`
		LogLevel  string `json:"logLevel"`
		Threads   int    `json:"threads"`
		AdminAuth bool   `json:"adminAuthEnabled"`
	}

	resp := response{
		Status:    "running",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Port:      s.cfg.Port,
		Policy:    s.cfg.Policy,
		MaxMem:    s.cfg.MaxMemBytes,
		SpaceUsed: s.engine.SpaceUsed(),
		LogLevel:  s.cfg.LogLevel,
		Threads:   s.cfg.Threads,
		AdminAuth: s.token != "",
	}
	writeJSON(w, s.log, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		http.Error(w, "metrics not enabled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, s.log, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && log != nil {
		log.Errorf("admin", "JSON encode error: %v", err)
	}
}

// ListenAndServe starts the admin HTTP server on 127.0.0.1:port. It is the
// caller's responsibility to only invoke this when cfg.AdminPort != 0.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.AdminPort)
	if s.log != nil {
		s.log.Infof("admin", "listening on %s", addr)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
