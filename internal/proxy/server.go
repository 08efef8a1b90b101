package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jammie-jelly/Roadmap.sh-009/internal/cache"
	"github.com/jammie-jelly/Roadmap.sh-009/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the caching proxy server.
type Server struct {
	config *config.Config
	engine *Engine
}

// New creates a new proxy server around the given store.
func New(cfg *config.Config, store cache.Store) (*Server, error) {
	base, err := url.Parse(cfg.Server.Backend)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	forwarder := NewForwarder(base, DefaultForwardTimeout)

	return &Server{
		config: cfg,
		engine: NewEngine(store, forwarder),
	}, nil
}

// Engine exposes the request handler, mainly for tests.
func (s *Server) Engine() *Engine {
	return s.engine
}

// ListenAndServe runs the proxy until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.Port),
		Handler: s.engine,
	}

	if s.config.Server.MetricsPort > 0 {
		go s.serveMetrics()
	}

	logrus.Infof("Starting caching proxy on port %d", s.config.Server.Port)
	logrus.Infof("Backend: %s", s.config.Server.Backend)
	logrus.Infof("Cache backend: %s, TTL: %s", s.config.Cache.Backend, s.config.TTL())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logrus.Info("Shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// serveMetrics runs the admin listener on its own port so backend paths
// are never shadowed by /metrics or /healthz.
func (s *Server) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	addr := fmt.Sprintf(":%d", s.config.Server.MetricsPort)
	logrus.Infof("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.Errorf("Metrics server failed: %v", err)
	}
}
