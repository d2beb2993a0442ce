package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Worker runs reports for a set of periods.
type Worker struct {
	run    ReportFunc
	config Config
}

// NewWorker creates a new period worker
func NewWorker(run ReportFunc, config Config) *Worker {
	return &Worker{run: run, config: config}
}

type periodJob struct {
	index int
	rng   domain.DateRange
}

// ProcessPeriods reports each period using a worker pool.
func (w *Worker) ProcessPeriods(ctx context.Context, periods []domain.DateRange) ([]PeriodResult, error) {
	workerCount := w.config.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(periods) {
		workerCount = len(periods)
	}

	results := make([]PeriodResult, len(periods))
	jobChan := make(chan periodJob, len(periods))
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				results[job.index] = w.processPeriod(ctx, workerID, job.rng)
			}
		}(i)
	}

	// Enqueue jobs
	for i, rng := range periods {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- periodJob{index: i, rng: rng}:
		}
	}
	close(jobChan)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (w *Worker) processPeriod(ctx context.Context, workerID int, rng domain.DateRange) PeriodResult {
	startTime := time.Now()

	report, err := w.run(ctx, rng)
	if err != nil {
		log.Warn().
			Err(err).
			Int("worker", workerID).
			Str("period", rng.String()).
			Msg("pipeline: period failed")
		return PeriodResult{Range: rng, Err: fmt.Errorf("period %s: %w", rng, err)}
	}

	log.Debug().
		Int("worker", workerID).
		Str("period", rng.String()).
		Dur("took", time.Since(startTime)).
		Msg("pipeline: period completed")
	return PeriodResult{Range: rng, Report: report}
}
