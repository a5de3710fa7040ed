package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pillars/internal/chart"
	"pillars/internal/reaction"
	"pillars/internal/storage"
	"pillars/internal/symbol"
)

// Progress steps recorded on each job.
const (
	ProgressAnalyzed = 1
	ProgressStored   = 2
)

// Queue is the part of the store the runner needs.
type Queue interface {
	storage.JobQueue
	storage.CaseStore
}

// Stats summarises one Run.
type Stats struct {
	Processed int
	Finished  int
	Failed    int
}

// Runner drains pending jobs of one type, analysing each payload as a chart.
type Runner struct {
	queue     Queue
	reg       *symbol.Registry
	analyzer  *reaction.Analyzer
	logger    *zap.Logger
	workers   int
	batchSize int
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(q Queue, reg *symbol.Registry, a *reaction.Analyzer, opts ...Option) *Runner {
	r := &Runner{
		queue:     q,
		reg:       reg,
		analyzer:  a,
		logger:    zap.NewNop(),
		workers:   4,
		batchSize: 64,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run processes batches until no pending job of jobType remains. Invalid
// charts mark their job failed and do not stop the run; store errors and
// context cancellation do.
func (r *Runner) Run(ctx context.Context, jobType string) (Stats, error) {
	var stats Stats
	var mu sync.Mutex

	for {
		jobs, err := r.queue.Pending(ctx, jobType, r.batchSize)
		if err != nil {
			return stats, fmt.Errorf("failed to load pending jobs: %w", err)
		}
		if len(jobs) == 0 {
			return stats, nil
		}
		r.logger.Debug("Processing batch", zap.String("job_type", jobType), zap.Int("jobs", len(jobs)))

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for _, job := range jobs {
			g.Go(func() error {
				failed, err := r.process(gCtx, job)
				if err != nil {
					return err
				}
				mu.Lock()
				stats.Processed++
				if failed {
					stats.Failed++
				} else {
					stats.Finished++
				}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}
	}
}

// process handles one job. It reports failed=true when the chart was
// rejected and the job marked failed.
func (r *Runner) process(ctx context.Context, job storage.Job) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	log := r.logger.With(zap.Int64("job_id", job.ID))

	c, err := chart.ParseJSON(r.reg, job.Payload)
	if err == nil {
		var report reaction.Report
		report, err = r.analyzer.Analyze(c)
		if err == nil {
			return false, r.finish(ctx, job, c, report)
		}
	}
	if !errors.Is(err, chart.ErrInvalidChart) {
		return false, fmt.Errorf("job %d: %w", job.ID, err)
	}

	log.Warn("Rejected chart", zap.Error(err))
	if err := r.queue.MarkFailed(ctx, job.ID, err.Error()); err != nil {
		return false, fmt.Errorf("job %d: failed to mark failed: %w", job.ID, err)
	}
	return true, nil
}

func (r *Runner) finish(ctx context.Context, job storage.Job, c chart.Chart, report reaction.Report) error {
	if err := r.queue.Advance(ctx, job.ID, ProgressAnalyzed); err != nil {
		return fmt.Errorf("job %d: %w", job.ID, err)
	}
	if err := r.queue.SaveCase(ctx, storage.Case{Key: c.Key(), Chart: c.Input(), Report: report, JobID: job.ID}); err != nil {
		return fmt.Errorf("job %d: failed to save case: %w", job.ID, err)
	}
	if err := r.queue.Advance(ctx, job.ID, ProgressStored); err != nil {
		return fmt.Errorf("job %d: %w", job.ID, err)
	}
	if err := r.queue.MarkFinished(ctx, job.ID); err != nil {
		return fmt.Errorf("job %d: %w", job.ID, err)
	}
	r.logger.Debug("Analysed chart",
		zap.Int64("job_id", job.ID),
		zap.String("chart", c.Key()),
		zap.Int("reactions", len(report.Reactions)),
		zap.Int("active", len(report.Active())))
	return nil
}
