package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/internal/s0_ingest"
	"github.com/wonny/fundlens/backend/internal/s3_tagging"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/internal/worker"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// ErrEmptyFile is returned for uploads without content
var ErrEmptyFile = errors.New("uploaded file is empty")

// Options controls ingestion behaviour
type Options struct {
	StrictColumns    bool
	StrictDuplicates bool // 다른 id로 같은 파일 업로드 시 snapshot.ErrDuplicateChecksum
	HistoryDepth     int  // temporal window, current snapshot included
}

// Request is one uploaded monthly file
type Request struct {
	File     []byte
	Filename string
	Period   string // YYYY-MM; derived from the filename or the clock when empty
	Note     string
	Activate bool
}

// IngestResult summarises one ingestion run
type IngestResult struct {
	ID              string                     `json:"id"`
	RequestedID     string                     `json:"requested_id"`
	Checksum        string                     `json:"checksum"`
	Duplicate       bool                       `json:"duplicate"`
	Activated       bool                       `json:"activated"`
	Funds           int                        `json:"funds"`
	Classes         int                        `json:"classes"`
	Tags            map[string]int             `json:"tags"`
	CompletedStages []string                   `json:"completed_stages"`
	Stages          []contracts.PipelineResult `json:"stages"`
	Duration        time.Duration              `json:"duration"`
}

// Ingestor runs the full ingestion pipeline for uploaded files
// ⭐ SSOT: 업로드 → 스냅샷 저장 흐름은 여기서만
type Ingestor struct {
	submitter worker.Submitter
	store     snapshot.Store
	funds     *fundconfig.Config
	opts      Options
	tagger    *s3_tagging.Tagger
	metrics   *Metrics
	logger    *logger.Logger
	now       func() time.Time
}

// NewIngestor creates an ingestor. metrics may be nil.
func NewIngestor(
	submitter worker.Submitter,
	store snapshot.Store,
	funds *fundconfig.Config,
	opts Options,
	metrics *Metrics,
	log *logger.Logger,
) *Ingestor {
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if opts.HistoryDepth <= 0 {
		opts.HistoryDepth = s3_tagging.DefaultHistoryDepth
	}
	if funds == nil {
		funds = &fundconfig.Config{}
	}
	return &Ingestor{
		submitter: submitter,
		store:     store,
		funds:     funds,
		opts:      opts,
		tagger:    s3_tagging.NewTagger(log),
		metrics:   metrics,
		logger:    log,
		now:       time.Now,
	}
}

// Ingest parses, scores and tags a file, applies temporal tags from stored
// history, then persists the snapshot (and optionally activates it).
func (i *Ingestor) Ingest(ctx context.Context, req Request) (*IngestResult, error) {
	start := i.now()

	result, err := i.ingest(ctx, req)

	duration := i.now().Sub(start)
	i.metrics.IngestDuration.Observe(duration.Seconds())

	if err != nil {
		i.metrics.IngestTotal.WithLabelValues(OutcomeFailed).Inc()
		i.logger.WithError(err).WithField("filename", req.Filename).Error("Ingestion failed")
		return result, err
	}

	result.Duration = duration
	if result.Duplicate {
		i.metrics.IngestTotal.WithLabelValues(OutcomeDuplicate).Inc()
	} else {
		i.metrics.IngestTotal.WithLabelValues(OutcomeCreated).Inc()
	}

	i.logger.WithFields(map[string]interface{}{
		"id":        result.ID,
		"duplicate": result.Duplicate,
		"activated": result.Activated,
		"funds":     result.Funds,
		"duration":  duration.Seconds(),
	}).Info("Ingestion completed")

	return result, nil
}

func (i *Ingestor) ingest(ctx context.Context, req Request) (*IngestResult, error) {
	if len(req.File) == 0 {
		return nil, ErrEmptyFile
	}

	period, err := i.resolvePeriod(req)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{
		RequestedID:     period,
		Checksum:        s0_ingest.Checksum(req.File),
		Tags:            make(map[string]int),
		CompletedStages: make([]string, 0, 5),
	}

	i.logger.WithFields(map[string]interface{}{
		"filename": req.Filename,
		"period":   period,
		"bytes":    len(req.File),
		"checksum": result.Checksum[:12],
	}).Info("Starting ingestion")

	// S0~S3: parse + benchmark + score + cross-sectional tags (worker)
	stageStart := time.Now()
	res, err := i.submitter.Submit(ctx, worker.Task{
		ID:            worker.NewTaskID(),
		File:          req.File,
		Filename:      req.Filename,
		Config:        *i.funds,
		StrictColumns: i.opts.StrictColumns,
	})
	if err != nil {
		return result, fmt.Errorf("failed to submit analysis: %w", err)
	}
	if err := res.Err(); err != nil {
		result.Stages = append(result.Stages, stageResult(contracts.StageScoring, 0, 0, stageStart, err))
		return result, err
	}
	funds := res.Funds
	result.Stages = append(result.Stages, stageResult(contracts.StageScoring, len(funds), len(funds), stageStart, nil))
	result.CompletedStages = append(result.CompletedStages,
		contracts.StageIngest.ShortName(), contracts.StageBenchmark.ShortName(), contracts.StageScoring.ShortName())

	// S3: temporal tags from stored history (older periods only)
	stageStart = time.Now()
	history, err := i.history(ctx, period)
	if err != nil {
		return result, err
	}
	funds = i.tagger.TagTemporal(funds, history, i.opts.HistoryDepth)
	result.Stages = append(result.Stages, stageResult(contracts.StageTagging, len(funds), len(funds), stageStart, nil))
	result.CompletedStages = append(result.CompletedStages, contracts.StageTagging.ShortName())

	// S4: persist
	stageStart = time.Now()
	snap := contracts.Snapshot{
		Rows:     funds,
		Source:   req.Filename,
		Checksum: result.Checksum,
		Uploaded: i.now().UTC(),
	}
	note, err := i.noteWithConfig(req.Note)
	if err != nil {
		return result, err
	}

	existed, err := i.storedUnder(ctx, period, result.Checksum)
	if err != nil {
		return result, err
	}

	var id string
	if i.opts.StrictDuplicates {
		id, err = snapshot.AddStrict(ctx, i.store, snap, period, note)
	} else {
		id, err = i.store.Add(ctx, snap, period, note)
	}
	if err != nil {
		result.Stages = append(result.Stages, stageResult(contracts.StageSnapshot, len(funds), 0, stageStart, err))
		return result, fmt.Errorf("failed to store snapshot: %w", err)
	}
	result.ID = id
	result.Duplicate = existed || id != period

	if req.Activate {
		if err := i.store.SetActive(ctx, id); err != nil {
			return result, fmt.Errorf("failed to activate snapshot: %w", err)
		}
		result.Activated = true
	}
	result.Stages = append(result.Stages, stageResult(contracts.StageSnapshot, len(funds), len(funds), stageStart, nil))
	result.CompletedStages = append(result.CompletedStages, contracts.StageSnapshot.ShortName())

	i.summarise(result, funds)
	return result, nil
}

// resolvePeriod: 요청값 → 파일명(YYYY-MM) → 현재 월
func (i *Ingestor) resolvePeriod(req Request) (string, error) {
	period := req.Period
	if period == "" {
		if p, ok := s0_ingest.PeriodFromFilename(req.Filename); ok {
			period = p
		} else {
			period = s0_ingest.PeriodID(i.now())
		}
	}
	if _, err := s0_ingest.ParsePeriodID(period); err != nil {
		return "", err
	}
	return period, nil
}

// history returns stored snapshots older than period
func (i *Ingestor) history(ctx context.Context, period string) ([]contracts.Snapshot, error) {
	all, err := i.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	older := make([]contracts.Snapshot, 0, len(all))
	for _, s := range all {
		if s.ID < period {
			older = append(older, s)
		}
	}
	return older, nil
}

// storedUnder reports whether period already holds this exact file (deleted or not)
func (i *Ingestor) storedUnder(ctx context.Context, period, checksum string) (bool, error) {
	existing, err := i.store.Get(ctx, period)
	if errors.Is(err, snapshot.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existing snapshot: %w", err)
	}
	return existing.Checksum == checksum, nil
}

// noteWithConfig records the fund config version used for scoring
func (i *Ingestor) noteWithConfig(note string) (string, error) {
	hash, err := fundconfig.Hash(i.funds)
	if err != nil {
		return "", fmt.Errorf("failed to hash fund config: %w", err)
	}
	tag := "config " + hash[:12]
	if note == "" {
		return tag, nil
	}
	return fmt.Sprintf("%s (%s)", note, tag), nil
}

func (i *Ingestor) summarise(result *IngestResult, funds []contracts.Fund) {
	classes := make(map[string]bool)
	for _, f := range funds {
		classes[f.AssetClass] = true
		for _, tag := range f.Tags {
			result.Tags[tag]++
		}
	}
	result.Funds = len(funds)
	result.Classes = len(classes)

	i.metrics.FundsScored.Add(float64(len(funds)))

	tags := make([]string, 0, len(result.Tags))
	for tag := range result.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		i.metrics.TagsAssigned.WithLabelValues(tag).Add(float64(result.Tags[tag]))
	}
}

func stageResult(stage contracts.Stage, in, out int, start time.Time, err error) contracts.PipelineResult {
	r := contracts.PipelineResult{
		Stage:       stage,
		Success:     err == nil,
		InputCount:  in,
		OutputCount: out,
		Duration:    time.Since(start).Milliseconds(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
