// Package server implements the cache daemon's HTTP/1.1 wire protocol: the
// URI grammar in wire.SplitPutTarget/SplitKeyTarget dispatched against an
// engine.Engine, with the header and body conventions each reply carries.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"netcache/internal/engine"
	"netcache/internal/logger"
	"netcache/internal/metrics"
	"netcache/internal/wire"
)

// Server is the cache daemon's HTTP handler. It holds no state of its own
// beyond the engine it dispatches to; every request is independent.
type Server struct {
	engine  *engine.Engine
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New creates a Server backed by the given engine.
func New(e *engine.Engine, log *logger.Logger, m *metrics.Metrics) *Server {
	return &Server{engine: e, log: log, metrics: m}
}

// ServeHTTP dispatches one request by method, per the wire protocol:
//
//	PUT    /{key}/{value}  SET
//	GET    /{key}          GET
//	DELETE /{key}          DEL
//	POST   /reset          RESET  (any other POST path: 404)
//	HEAD   /               SPACE
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordRequestLatency(time.Since(start))
		}
	}()

	switch r.Method {
	case http.MethodPut:
		s.handleSet(w, r)
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodDelete:
		s.handleDel(w, r)
	case http.MethodPost:
		s.handleReset(w, r)
	case http.MethodHead:
		s.handleSpace(w, r)
	default:
		if s.metrics != nil {
			s.metrics.ErrorsBadRequest.Add(1)
		}
		http.Error(w, "unknown HTTP method", http.StatusBadRequest)
	}
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.SetTotal.Add(1)
	}
	key, value, ok := wire.SplitPutTarget(r.URL.Path)
	if !ok {
		if s.metrics != nil {
			s.metrics.ErrorsBadRequest.Add(1)
		}
		http.Error(w, "PUT requires /{key}/{value}", http.StatusBadRequest)
		return
	}

	buf := wire.EncodeValue(value)
	accepted, evicted := s.engine.Set(key, buf, len(buf))
	if s.metrics != nil {
		if !accepted {
			s.metrics.SetRejected.Add(1)
		}
		if evicted > 0 {
			s.metrics.Evictions.Add(int64(evicted))
		}
	}

	if s.log != nil {
		s.log.Debugf("set", "key=%q size=%d accepted=%t evicted=%d", key, len(buf), accepted, evicted)
	}
	w.Header().Set(wire.HeaderSpaceUsed, fmt.Sprint(s.engine.SpaceUsed()))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.GetTotal.Add(1)
	}
	key, ok := wire.SplitKeyTarget(r.URL.Path)
	if !ok {
		if s.metrics != nil {
			s.metrics.ErrorsBadRequest.Add(1)
		}
		http.Error(w, "GET requires /{key}", http.StatusBadRequest)
		return
	}

	value, _, hit := s.engine.Get(key)
	if !hit {
		if s.metrics != nil {
			s.metrics.GetMisses.Add(1)
		}
		w.Header().Set(wire.HeaderSpaceUsed, fmt.Sprint(s.engine.SpaceUsed()))
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, wire.KeyNotFoundBody)
		return
	}

	if s.metrics != nil {
		s.metrics.GetHits.Add(1)
	}
	resp := wire.GetResponse{Key: key, Value: wire.DecodeValue(value)}
	w.Header().Set(wire.HeaderContentType, wire.ContentTypeJSON)
	w.Header().Set(wire.HeaderSpaceUsed, fmt.Sprint(s.engine.SpaceUsed()))
	w.WriteHeader(http.StatusOK)
	writeJSON(w, s.log, resp)
}

func (s *Server) handleDel(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.DelTotal.Add(1)
	}
	key, ok := wire.SplitKeyTarget(r.URL.Path)
	if !ok {
		if s.metrics != nil {
			s.metrics.ErrorsBadRequest.Add(1)
		}
		http.Error(w, "DELETE requires /{key}", http.StatusBadRequest)
		return
	}

	deleted := s.engine.Del(key)
	if deleted && s.metrics != nil {
		s.metrics.DelHits.Add(1)
	}
	w.Header().Set(wire.HeaderSpaceUsed, fmt.Sprint(s.engine.SpaceUsed()))
	w.Header().Set(wire.HeaderDeleteBool, fmt.Sprint(deleted))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != wire.ResetPath {
		if s.metrics != nil {
			s.metrics.ErrorsBadRequest.Add(1)
		}
		http.NotFound(w, r)
		return
	}
	if s.metrics != nil {
		s.metrics.ResetTotal.Add(1)
	}
	s.engine.Reset()
	if s.log != nil {
		s.log.Info("reset", "cache cleared")
	}
	w.Header().Set(wire.HeaderSpaceUsed, "0")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSpace(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		if s.metrics != nil {
			s.metrics.ErrorsBadRequest.Add(1)
		}
		http.NotFound(w, r)
		return
	}
	if s.metrics != nil {
		s.metrics.SpaceTotal.Add(1)
	}
	w.Header().Set(wire.HeaderSpaceUsed, fmt.Sprint(s.engine.SpaceUsed()))
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil && log != nil {
		log.Errorf("encode", "JSON encode error: %v", err)
	}
}
