package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"wavecast/internal/api"
	"wavecast/internal/config"
	"wavecast/internal/logging"
	"wavecast/internal/taskstore"
)

// Submitter accepts a registered task for background execution.
type Submitter interface {
	Submit(task *taskstore.Task) error
}

// Versioner reports the encoder's availability and version banner.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// Server serves the HTTP API in front of the task store and worker pool.
type Server struct {
	cfg       *config.Config
	store     *taskstore.Store
	pool      Submitter
	versioner Versioner
	logger    *slog.Logger

	mux      *http.ServeMux
	listener net.Listener
	server   *http.Server
}

// New wires the HTTP surface. The server does not listen until Start.
func New(cfg *config.Config, store *taskstore.Store, pool Submitter, versioner Versioner, logger *slog.Logger) *Server {
	srv := &Server{
		cfg:       cfg,
		store:     store,
		pool:      pool,
		versioner: versioner,
		logger:    logging.NewComponentLogger(logger, "api-server"),
		mux:       http.NewServeMux(),
	}

	srv.mux.HandleFunc("/api/upload", srv.handleUpload)
	srv.mux.HandleFunc("/api/status/", srv.handleStatus)
	srv.mux.HandleFunc("/api/download/", srv.handleDownload)
	srv.mux.HandleFunc("/api/tasks", srv.handleTasks)
	srv.mux.HandleFunc("/api/check-ffmpeg", srv.handleCheckFFmpeg)

	return srv
}

// Handler exposes the routing table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start binds the configured address and serves until the context or Stop
// ends it.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	// A shut-down http.Server never serves again, so each Start gets a
	// fresh one.
	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	httpServer := s.server

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.server = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
