package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wonny/fundlens/backend/internal/scheduler"
	"github.com/wonny/fundlens/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 즉시 실행합니다.

등록되는 작업:
- inbox_scan: INBOX_SCHEDULE (기본 매일 오전 6시) INBOX_DIR의 YYYY-MM*.csv 수집

Subcommands:
  start   - 스케줄러 시작
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/fundlens scheduler start
  go run ./cmd/fundlens scheduler run inbox_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run <job_name>",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	inboxActivate bool
	metricsAddr   string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().BoolVar(&inboxActivate, "activate", true, "가장 최근 수집 파일을 활성화")
	schedulerStartCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "Prometheus /metrics 주소 (빈 값이면 비활성)")
}

// newMetricsServer serves the ingest metrics collected by scheduled jobs
func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// initScheduler registers all jobs on a new scheduler
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	if err := a.loadFunds(); err != nil {
		return nil, err
	}

	sched := scheduler.New(a.log)
	inbox := jobs.NewInboxJob(a.ingestor(), a.cfg.Ingest.InboxDir, a.cfg.Ingest.InboxSchedule, inboxActivate, a.log)
	if err := sched.AddJob(inbox); err != nil {
		return nil, err
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FundLens Scheduler ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	var metrics *http.Server
	if a.cfg.MetricsEnabled && metricsAddr != "" {
		metrics = newMetricsServer(metricsAddr, a.registry)
		go func() {
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.WithError(err).Error("Metrics server stopped")
			}
		}()
		a.log.WithField("addr", metricsAddr).Info("Metrics server started")
	}

	sched.Start()

	PrintSuccess("Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for name, stat := range sched.GetJobStats() {
		fmt.Printf("  - %s (%s)\n", name, stat.Schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metrics.Shutdown(ctx)
	}
	fmt.Println("Scheduler stopped")

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	// 단발 실행은 수집 대상이 아님
	a.cfg.MetricsEnabled = false

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", args[0])
	result, err := sched.RunJobSync(args[0])
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", result.JobName, result.Attempts, result.Error)
	}
	PrintSuccess(fmt.Sprintf("Job %s completed in %s", result.JobName, result.Duration))
	for _, id := range result.Snapshots {
		fmt.Printf("  - snapshot %s\n", id)
	}
	return nil
}
