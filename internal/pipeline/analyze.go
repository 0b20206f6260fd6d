package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/internal/s0_ingest"
	"github.com/wonny/fundlens/backend/internal/s1_benchmark"
	"github.com/wonny/fundlens/backend/internal/s2_scoring"
	"github.com/wonny/fundlens/backend/internal/s3_tagging"
	"github.com/wonny/fundlens/backend/internal/worker"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// Analyze runs S1 → S2 → S3 (cross-sectional) over normalised rows.
// Pure: no storage access, inputs are not modified.
func Analyze(rows []contracts.NormalisedRow, funds *fundconfig.Config, log *logger.Logger) []contracts.Fund {
	injected := s1_benchmark.NewInjector(funds, log).Inject(rows)
	extracted := s2_scoring.Extract(injected)
	scored := s2_scoring.NewScorer(log).Score(extracted)
	return s3_tagging.NewTagger(log).TagCrossSection(scored)
}

// NewHandler returns the worker handler: parse the uploaded file with the
// task's fund config, then Analyze. lookup may be nil.
func NewHandler(lookup *s0_ingest.ClassLookup, log *logger.Logger) worker.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx context.Context, task worker.Task) ([]contracts.Fund, error) {
		cfg := task.Config

		parser := s0_ingest.NewParser(&cfg, lookup, task.StrictColumns, log)
		rows, err := parser.Parse(bytes.NewReader(task.File))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", task.Filename, err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("no fund rows in %s", task.Filename)
		}

		return Analyze(rows, &cfg, log), nil
	}
}
