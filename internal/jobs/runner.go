package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"crm/internal/metrics"

	"go.uber.org/zap"
)

// Runner runs each job on its own ticker. A failing job never stops the
// others.
type Runner struct {
	jobs    []Job
	logger  *zap.Logger
	metrics *metrics.Registry
}

func NewRunner(logger *zap.Logger, reg *metrics.Registry, jobs ...Job) *Runner {
	return &Runner{jobs: jobs, logger: logger, metrics: reg}
}

// RunOnce runs every job once, in order, and joins their errors
func (r *Runner) RunOnce(ctx context.Context) error {
	var err error
	for _, job := range r.jobs {
		err = errors.Join(err, r.runJob(ctx, job))
	}
	return err
}

// Run starts one goroutine per job and blocks until ctx is cancelled. Each
// job runs immediately and then once per interval.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range r.jobs {
		if job.Interval <= 0 {
			r.logger.Warn("Job has no interval, skipping", zap.String("job", job.Name))
			continue
		}

		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			r.loop(ctx, job)
		}(job)
	}
	wg.Wait()
}

func (r *Runner) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	r.logger.Info("Job scheduled", zap.String("job", job.Name), zap.Duration("interval", job.Interval))
	for {
		_ = r.runJob(ctx, job)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) runJob(ctx context.Context, job Job) (err error) {
	start := time.Now()
	log := r.logger.With(zap.String("job", job.Name))

	defer func() {
		if p := recover(); p != nil {
			log.Error("Job panicked", zap.Any("panic", p))
			err = errors.New("job panicked")
		}
		r.metrics.ObserveJob(job.Name, time.Since(start), err)
	}()

	if err = job.Run(ctx); err != nil {
		log.Warn("Job failed", zap.Error(err))
		return err
	}

	log.Debug("Job finished", zap.Duration("duration", time.Since(start)))
	return nil
}
