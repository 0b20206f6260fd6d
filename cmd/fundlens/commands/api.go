package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/internal/api"
	"github.com/wonny/fundlens/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET    /health                       - Health check
  GET    /metrics                      - Prometheus metrics
  GET    /api/snapshots                - 스냅샷 목록
  POST   /api/snapshots                - 월간 파일 업로드 (multipart: file, period, note, activate)
  GET    /api/snapshots/active         - 활성 스냅샷
  GET    /api/snapshots/{id}           - 스냅샷 조회
  POST   /api/snapshots/{id}/activate  - 스냅샷 활성화
  DELETE /api/snapshots/{id}           - 스냅샷 삭제 (soft)
  GET    /api/trends/{symbol}?limit=6  - 점수 추이
  GET    /api/trends/movers            - 최근 두 스냅샷 간 점수 변화
  GET    /api/review                   - 리뷰 대상 펀드

Example:
  go run ./cmd/fundlens api
  go run ./cmd/fundlens api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FundLens API Server ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	if err := a.loadFunds(); err != nil {
		return err
	}

	// Upload limiter: Redis (공유) → in-process fallback
	var limiter handlers.UploadLimiter = handlers.NewLocalUploadLimiter(a.cfg.Ingest.UploadRateLimit)
	if a.redis.Enabled() {
		limiter = handlers.NewRedisUploadLimiter(a.redis, a.cfg.Ingest.UploadRateLimit)
	}

	h := api.Handlers{
		Snapshots: handlers.NewSnapshotHandler(a.store, a.ingestor(), limiter, a.log),
		Trends:    handlers.NewTrendHandler(a.analyzer(), a.store, a.log),
	}
	if a.cfg.MetricsEnabled {
		h.Metrics = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	}

	server := api.New(a.cfg, a.log, api.NewRouter(h, a.log))

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost%s\n", server.Addr())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
