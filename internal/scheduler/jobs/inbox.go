package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/wonny/fundlens/backend/internal/pipeline"
	"github.com/wonny/fundlens/backend/internal/s0_ingest"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// inboxFile matches monthly drops such as "2024-06.csv" or "2024-06 funds.csv"
var inboxFile = regexp.MustCompile(`(?i)^\d{4}-\d{2}.*\.csv$`)

// Ingester is the part of pipeline.Ingestor the inbox job needs
type Ingester interface {
	Ingest(ctx context.Context, req pipeline.Request) (*pipeline.IngestResult, error)
}

// InboxJob ingests monthly files dropped into a directory
// ⭐ SSOT: 파일 드롭 기반 자동 수집은 이 Job에서만
type InboxJob struct {
	ingester Ingester
	dir      string
	schedule string
	activate bool
	logger   *logger.Logger

	mu   sync.Mutex
	seen map[string]string // filename → checksum
	last []string          // snapshot ids of the latest run
}

// NewInboxJob creates a new inbox job. activate makes the newest ingested file active.
func NewInboxJob(ingester Ingester, dir, schedule string, activate bool, log *logger.Logger) *InboxJob {
	if log == nil {
		log = logger.Nop()
	}
	return &InboxJob{
		ingester: ingester,
		dir:      dir,
		schedule: schedule,
		activate: activate,
		logger:   log,
		seen:     make(map[string]string),
	}
}

// Name returns the job name
func (j *InboxJob) Name() string {
	return "inbox_scan"
}

// Schedule returns the cron schedule
func (j *InboxJob) Schedule() string {
	return j.schedule
}

// LastSnapshots returns the snapshot ids stored or matched by the latest Run
func (j *InboxJob) LastSnapshots() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.last...)
}

// Run ingests unseen YYYY-MM*.csv files in name order.
// A failed file does not stop the scan; the joined error triggers a retry.
func (j *InboxJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.last = nil

	files, err := j.pending()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		j.logger.Debug("Inbox empty")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"dir":   j.dir,
		"files": len(files),
	}).Info("Starting inbox scan")

	var errs []error
	ingested := 0
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := j.ingester.Ingest(ctx, pipeline.Request{
			File:     f.data,
			Filename: f.name,
			Note:     "inbox",
			Activate: j.activate && i == len(files)-1,
		})
		switch {
		case err == nil:
			ingested++
			j.last = append(j.last, res.ID)
			j.logger.WithFields(map[string]interface{}{
				"file":      f.name,
				"id":        res.ID,
				"duplicate": res.Duplicate,
			}).Info("Inbox file ingested")
		case errors.Is(err, snapshot.ErrDuplicateChecksum):
			j.logger.WithField("file", f.name).Warn("Inbox file already stored under another id")
		default:
			errs = append(errs, fmt.Errorf("failed to ingest %s: %w", f.name, err))
			continue
		}
		j.seen[f.name] = f.checksum
	}

	j.logger.WithFields(map[string]interface{}{
		"ingested": ingested,
		"failed":   len(errs),
	}).Info("Inbox scan completed")

	return errors.Join(errs...)
}

type inboxEntry struct {
	name     string
	data     []byte
	checksum string
}

// pending reads inbox files that are new or changed since the last scan
func (j *InboxJob) pending() ([]inboxEntry, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read inbox %s: %w", j.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && inboxFile.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]inboxEntry, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(j.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read inbox file %s: %w", name, err)
		}
		sum := s0_ingest.Checksum(data)
		if j.seen[name] == sum {
			continue
		}
		out = append(out, inboxEntry{name: name, data: data, checksum: sum})
	}
	return out, nil
}
