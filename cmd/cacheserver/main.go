// Command cacheserver is the networked in-memory cache daemon.
//
// It serves the cache wire protocol (PUT/GET/DELETE/POST/HEAD) on its main
// port, and — when -admin-port is non-zero — a separate admin API exposing
// /status and /metrics.
//
// Usage:
//
//	./cacheserver -m 1048576 -p 65413 -policy lru
//
//	# Bound concurrent connections, as the original -t flag did
//	./cacheserver -t 8
//
//	# Expose metrics on a second port, bearer-token protected
//	./cacheserver -admin-port 65414 -admin-token secret
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"netcache/internal/admin"
	"netcache/internal/config"
	"netcache/internal/engine"
	"netcache/internal/eviction"
	"netcache/internal/logger"
	"netcache/internal/metrics"
	"netcache/internal/server"
)

func main() {
	cfg := config.Load(os.Args[1:])
	log := logger.New("CACHESERVER", cfg.LogLevel)

	printBanner(cfg)

	policy, err := newPolicy(cfg.Policy)
	if err != nil {
		log.Fatalf("startup", "%v", err)
	}

	const loadFactorHint = 0.75
	e := engine.New(cfg.MaxMemBytes, loadFactorHint, policy)
	m := metrics.New()

	if cfg.AdminPort != 0 {
		adminSrv := admin.New(cfg, e, m, log)
		go func() {
			if err := adminSrv.ListenAndServe(); err != nil {
				log.Fatalf("admin", "fatal: %v", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen", "%v", err)
	}
	// -t bounds concurrent connections, the idiomatic Go equivalent of the
	// original's fixed-size io_context thread pool: each accepted connection
	// is served by its own goroutine, and LimitListener blocks new Accepts
	// once cfg.Threads connections are outstanding.
	listener = netutil.LimitListener(listener, cfg.Threads)

	cacheSrv := server.New(e, log, m)
	httpSrv := &http.Server{
		Handler:           cacheSrv,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("listen", "listening on %s (policy=%s maxmem=%d threads=%d)",
		addr, cfg.Policy, cfg.MaxMemBytes, cfg.Threads)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutdown", "shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Errorf("shutdown", "%v", err)
		}
	}()

	if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve", "%v", err)
	}
}

// newPolicy constructs the eviction.Policy named by kind. "none" returns a
// nil Policy, which disables eviction entirely (SETs that don't fit once
// the cache is full fail permanently).
func newPolicy(kind string) (eviction.Policy, error) {
	switch kind {
	case "none":
		return nil, nil
	case "fifo":
		return eviction.NewFifoPolicy(), nil
	case "lru":
		return eviction.NewLruPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown eviction policy %q (want none, fifo, or lru)", kind)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf(`
╔══════════════════════════════════════════════════════╗
║              netcache daemon  (Go)                   ║
╚══════════════════════════════════════════════════════╝
  Bind address : %s
  Port         : %d
  Max memory   : %d bytes
  Threads      : %d
  Policy       : %s
  Admin port   : %s

  Try it:
    curl -X PUT http://%s:%d/Item1/314159
    curl http://%s:%d/Item1
`, cfg.BindAddress, cfg.Port, cfg.MaxMemBytes, cfg.Threads, cfg.Policy,
		adminPortLabel(cfg.AdminPort),
		cfg.BindAddress, cfg.Port,
		cfg.BindAddress, cfg.Port)
}

func adminPortLabel(port int) string {
	if port == 0 {
		return "(disabled)"
	}
	return fmt.Sprint(port)
}
