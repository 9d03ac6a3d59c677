package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/logfields"
	"git.home.luguber.info/inful/pivot/internal/metrics"
)

// MetricsServer serves the Prometheus registry and a health probe.
type MetricsServer struct {
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
	done     chan struct{}
	started  bool
}

// NewMetricsServer binds the configured address.
func NewMetricsServer(cfg config.MetricsConfig, reg *prom.Registry, logger *slog.Logger) (*MetricsServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path := cfg.Path
	if path == "" {
		path = config.DefaultMetricsPath
	}
	addr := cfg.Address
	if addr == "" {
		addr = config.DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle(path, metrics.HTTPHandler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &MetricsServer{
		server:   &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: ln,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Addr returns the bound address.
func (s *MetricsServer) Addr() string { return s.listener.Addr().String() }

// Start serves in the background.
func (s *MetricsServer) Start() {
	s.logger.Info("Serving metrics", slog.String("address", s.Addr()))
	s.started = true
	go func() {
		defer close(s.done)
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *MetricsServer) Stop(ctx context.Context) error {
	if !s.started {
		return s.listener.Close()
	}
	err := s.server.Shutdown(ctx)
	<-s.done
	return err
}
