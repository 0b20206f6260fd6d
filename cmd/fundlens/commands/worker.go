package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/internal/worker"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "분석 워커",
	Long: `Redis 큐(WORKER_QUEUE)에서 분석 작업을 받아 처리하는 워커입니다.

API/ingest 프로세스가 WORKER_MODE=redis 이면 파싱과 스코어링을 이 워커에 맡깁니다.

Example:
  go run ./cmd/fundlens worker start
  go run ./cmd/fundlens worker start --concurrency 4`,
}

// workerStartCmd represents the start subcommand
var workerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "워커 시작",
	RunE:  runWorkerStart,
}

var (
	// Worker flags
	workerConcurrency int
)

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.AddCommand(workerStartCmd)

	workerStartCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "동시 처리 작업 수 (기본: WORKER_CONCURRENCY)")
}

func runWorkerStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.redis.Enabled() {
		return fmt.Errorf("worker requires REDIS_ENABLED=true")
	}
	// 작업마다 설정이 함께 오므로 fund config는 class lookup만 필요
	if err := a.loadFunds(); err != nil {
		return err
	}

	concurrency := workerConcurrency
	if concurrency <= 0 {
		concurrency = a.cfg.Worker.Concurrency
	}

	fmt.Println("=== FundLens Worker ===")
	fmt.Printf("Concurrency: %d\n", concurrency)
	fmt.Printf("Queue: %s\n\n", a.cfg.Worker.Queue)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		consumer := worker.NewConsumer(a.redis, a.cfg.Worker.Queue, a.handler(), a.log.WithField("consumer", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = consumer.Run(ctx)
		}()
	}

	fmt.Println("🚀 Worker started")
	fmt.Println("   Press Ctrl+C to stop gracefully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\n⚠️  Shutdown signal received")
	fmt.Println("   Waiting for in-flight tasks to complete...")
	cancel()
	wg.Wait()
	PrintSuccess("Worker stopped gracefully")
	return nil
}
