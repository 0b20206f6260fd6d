package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/fundlens/backend/pkg/config"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// Timeouts for the snapshot API
const (
	readHeaderTimeout = 10 * time.Second
	uploadReadTimeout = 60 * time.Second // 32MB 월간 파일 업로드
	writeGrace        = 15 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server represents the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates a new API server. Uploads block until the worker replies,
// so the write deadline follows WORKER_TIMEOUT.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       uploadReadTimeout,
			WriteTimeout:      cfg.Worker.Timeout + writeGrace,
			IdleTimeout:       idleTimeout,
		},
		logger: log,
		config: cfg,
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"addr":           s.httpServer.Addr,
		"env":            s.config.Env,
		"store":          s.config.StoreDriver,
		"worker":         s.config.Worker.Mode,
		"write_deadline": s.httpServer.WriteTimeout.String(),
	}).Info("Starting snapshot API server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown drains in-flight uploads before returning
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down snapshot API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
