// Package server exposes the worker protocol over a websocket, the batch
// format over plain HTTP, and Prometheus metrics.
//
// Routes:
//
//	GET  /v1/ws     worker protocol, JSON messages both ways
//	POST /v1/batch  batch text in, LCS text out
//	GET  /metrics   Prometheus exposition
//	GET  /healthz   liveness
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/lcsall/batch"
	"github.com/katalvlaran/lcsall/worker"
)

// Config configures a Server.
type Config struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBatchBytes caps the body of a batch submission.
	MaxBatchBytes int64 `yaml:"max_batch_bytes"`
}

// DefaultConfig listens on localhost:8080.
func DefaultConfig() Config {
	return Config{
		Addr:            "localhost:8080",
		ShutdownTimeout: 5 * time.Second,
		MaxBatchBytes:   1 << 20,
	}
}

// Server serves a Worker over HTTP.
type Server struct {
	cfg       Config
	worker    *worker.Worker
	batchOpts []batch.Option
	logger    *slog.Logger
}

// New returns a Server. A nil logger discards logs.
func New(cfg Config, w *worker.Worker, logger *slog.Logger, batchOpts ...batch.Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		cfg:       cfg,
		worker:    w,
		batchOpts: batchOpts,
		logger:    logger.With("component", "server"),
	}
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/ws", s.handleWS)
	mux.HandleFunc("POST /v1/batch", s.handleBatch)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})

	return mux
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}

	return nil
}

// handleBatch answers a batch submission. On failure the response is 400
// and carries the output of the datasets that succeeded, followed by an
// "error:" line.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBatchBytes)
	var out bytes.Buffer
	err := batch.Process(r.Context(), body, &out, s.batchOpts...)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		batchTotal.WithLabelValues("rejected").Inc()
		s.logger.Info("batch rejected", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = out.WriteTo(w)
		_, _ = fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	batchTotal.WithLabelValues("ok").Inc()
	_, _ = out.WriteTo(w)
}
