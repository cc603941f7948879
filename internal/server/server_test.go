package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"netcache/internal/engine"
	"netcache/internal/eviction"
	"netcache/internal/wire"
)

func newTestServer(maxmem int, policy eviction.Policy) *Server {
	return New(engine.New(maxmem, 0.75, policy), nil, nil)
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestSetThenGet(t *testing.T) {
	s := newTestServer(64, nil)

	rec := doRequest(t, s, http.MethodPut, "/Item1/314159")
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(wire.HeaderSpaceUsed) == "" {
		t.Fatal("PUT response missing Space-Used header")
	}

	rec = doRequest(t, s, http.MethodGet, "/Item1")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get(wire.HeaderContentType); ct != wire.ContentTypeJSON {
		t.Fatalf("GET Content-Type = %q, want %q", ct, wire.ContentTypeJSON)
	}
	var body wire.GetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Key != "Item1" || body.Value != "314159" {
		t.Fatalf("body = %+v, want key=Item1 value=314159", body)
	}
}

func TestGetMiss(t *testing.T) {
	s := newTestServer(64, nil)

	rec := doRequest(t, s, http.MethodGet, "/missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET status = %d, want 404", rec.Code)
	}
	if rec.Body.String() != wire.KeyNotFoundBody {
		t.Fatalf("GET miss body = %q, want %q", rec.Body.String(), wire.KeyNotFoundBody)
	}
	if ct := rec.Header().Get(wire.HeaderContentType); ct != "" {
		t.Fatalf("GET miss Content-Type = %q, want empty", ct)
	}
}

func TestDeleteReportsPresence(t *testing.T) {
	s := newTestServer(64, nil)
	doRequest(t, s, http.MethodPut, "/k/v")

	rec := doRequest(t, s, http.MethodDelete, "/k")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get(wire.HeaderDeleteBool); got != "true" {
		t.Fatalf("Delete-Bool = %q, want true", got)
	}

	rec = doRequest(t, s, http.MethodDelete, "/k")
	if got := rec.Header().Get(wire.HeaderDeleteBool); got != "false" {
		t.Fatalf("Delete-Bool = %q, want false (already gone)", got)
	}
}

func TestResetPath(t *testing.T) {
	s := newTestServer(64, nil)
	doRequest(t, s, http.MethodPut, "/k/v")

	rec := doRequest(t, s, http.MethodPost, wire.ResetPath)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /reset status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get(wire.HeaderSpaceUsed); got != "0" {
		t.Fatalf("Space-Used after reset = %q, want 0", got)
	}

	rec = doRequest(t, s, http.MethodGet, "/k")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET after reset status = %d, want 404", rec.Code)
	}
}

func TestPostToUnknownPathIs404(t *testing.T) {
	s := newTestServer(64, nil)
	rec := doRequest(t, s, http.MethodPost, "/not-reset")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("POST /not-reset status = %d, want 404", rec.Code)
	}
}

func TestHeadReportsSpaceUsed(t *testing.T) {
	s := newTestServer(64, nil)
	doRequest(t, s, http.MethodPut, "/k/hello")

	rec := doRequest(t, s, http.MethodHead, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("HEAD status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(wire.HeaderSpaceUsed) != "6" {
		t.Fatalf("Space-Used = %q, want 6 (len(hello)+1 sentinel)", rec.Header().Get(wire.HeaderSpaceUsed))
	}
}

func TestPutMissingValueSegmentIsBadRequest(t *testing.T) {
	s := newTestServer(64, nil)
	rec := doRequest(t, s, http.MethodPut, "/k")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PUT /k status = %d, want 400", rec.Code)
	}
}

func TestUnsupportedMethodRejected(t *testing.T) {
	s := newTestServer(64, nil)
	rec := doRequest(t, s, http.MethodPatch, "/k")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PATCH status = %d, want 400", rec.Code)
	}
}

func TestFifoEvictionThroughServer(t *testing.T) {
	s := newTestServer(10, eviction.NewFifoPolicy())
	doRequest(t, s, http.MethodPut, "/k1/aaaa") // size 5
	doRequest(t, s, http.MethodPut, "/k2/bbbb") // size 5
	doRequest(t, s, http.MethodPut, "/k3/cccc") // size 5, evicts k1

	rec := doRequest(t, s, http.MethodGet, "/k1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("k1 should have been evicted, got status %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodGet, "/k3")
	if rec.Code != http.StatusOK {
		t.Fatalf("k3 should be present, got status %d", rec.Code)
	}
}
