package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/internal/pipeline"
	"github.com/wonny/fundlens/backend/internal/s0_ingest"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/internal/trend"
	"github.com/wonny/fundlens/backend/internal/worker"
	"github.com/wonny/fundlens/backend/pkg/config"
	"github.com/wonny/fundlens/backend/pkg/logger"
	"github.com/wonny/fundlens/backend/pkg/redis"
)

// app holds the dependencies shared by commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	store    snapshot.Store
	funds    *fundconfig.Config
	lookup   *s0_ingest.ClassLookup
	registry *prometheus.Registry

	closers []func() error
}

// newApp loads configuration and opens the snapshot store
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}

	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, a.redis.Close)

	store, closeStore, err := snapshot.Open(ctx, cfg, a.redis, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, closeStore)

	return a, nil
}

// loadFunds reads the fund config and the optional class lookup
func (a *app) loadFunds() error {
	funds, _, err := fundconfig.Load(a.cfg.Ingest.FundConfigPath)
	if err != nil {
		return fmt.Errorf("load fund config: %w", err)
	}
	for _, w := range fundconfig.Warnings(funds) {
		a.log.WithField("code", w.Code).Warn(w.Message)
	}
	a.funds = funds

	a.lookup = s0_ingest.NewClassLookup()
	if path := a.cfg.Ingest.ClassMapPath; path != "" {
		if err := a.lookup.LoadFile(path); err != nil {
			return fmt.Errorf("load class map: %w", err)
		}
		a.log.WithField("symbols", a.lookup.Len()).Info("Class lookup loaded")
	}
	return nil
}

// handler returns the analysis handler used by local and remote workers
func (a *app) handler() worker.Handler {
	return pipeline.NewHandler(a.lookup, a.log)
}

// submitter selects where analysis runs (WORKER_MODE)
func (a *app) submitter() worker.Submitter {
	if a.cfg.Worker.Mode == config.WorkerRedis {
		return worker.NewRedisQueue(a.redis, a.cfg.Worker.Queue, a.cfg.Worker.Timeout, a.log)
	}
	if a.cfg.Worker.Concurrency > 1 {
		pool := worker.NewPool(a.cfg.Worker.Concurrency, a.handler(), a.log)
		a.closers = append(a.closers, func() error {
			pool.Stop()
			return nil
		})
		return pool
	}
	return worker.NewLocal(a.handler())
}

// ingestor builds the ingestion pipeline (requires loadFunds)
func (a *app) ingestor() *pipeline.Ingestor {
	var reg prometheus.Registerer
	if a.cfg.MetricsEnabled {
		reg = a.registry
	}
	return pipeline.NewIngestor(
		a.submitter(),
		a.store,
		a.funds,
		pipeline.Options{
			StrictColumns:    a.cfg.Ingest.StrictColumns,
			StrictDuplicates: a.cfg.IsStrictDuplicates(),
			HistoryDepth:     a.cfg.Ingest.HistoryDepth,
		},
		pipeline.NewMetrics(reg),
		a.log,
	)
}

func (a *app) analyzer() *trend.Analyzer {
	return trend.NewAnalyzer(a.store, a.log)
}

// Close releases resources in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("Failed to release resource")
		}
	}
	a.closers = nil
}
