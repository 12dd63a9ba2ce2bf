package scorerunner

import (
	"context"
	"log"
	"sync"
	"time"

	"riskmatch/internal/ports"
	"riskmatch/internal/scoring"
)

// JobProcessor performs the work of one scoring job.
type JobProcessor interface {
	Process(ctx context.Context, job ports.ScoreJob) error
}

// AssessmentScorer is the part of the compliance service the runner needs.
type AssessmentScorer interface {
	ScoreAssessment(ctx context.Context, assessmentID string) (scoring.OverallScore, error)
}

// ScoreProcessor scores the job's assessment; the service persists the
// result.
type ScoreProcessor struct{ Scorer AssessmentScorer }

func (p ScoreProcessor) Process(ctx context.Context, job ports.ScoreJob) error {
	_, err := p.Scorer.ScoreAssessment(ctx, job.AssessmentID)
	return err
}

// Run starts worker goroutines that claim jobs and process them. It returns
// once ctx is cancelled and every worker has finished its current job.
func Run(ctx context.Context, repo ports.JobRepository, processor JobProcessor, concurrency int, pollInterval time.Duration) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.ScoreJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		defer close(jobsCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						if ctx.Err() == nil {
							log.Printf("job claim error: %v", err)
						}
						break
					}
					if !found {
						break
					}
					select {
					case jobsCh <- job:
					case <-ctx.Done():
						_ = repo.MarkFailed(context.WithoutCancel(ctx), job.ID, "shutdown before processing")
						return
					}
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for job := range jobsCh {
				finish(ctx, repo, processor, job, idx)
			}
		}(i)
	}
	wg.Wait()
}

func finish(ctx context.Context, repo ports.JobRepository, processor JobProcessor, job ports.ScoreJob, idx int) {
	// state transitions must land even when shutdown cancelled ctx
	done := context.WithoutCancel(ctx)
	if err := processor.Process(ctx, job); err != nil {
		_ = repo.MarkFailed(done, job.ID, err.Error())
		log.Printf("worker %d: job %s failed: %v", idx, job.ID, err)
		return
	}
	if err := repo.MarkCompleted(done, job.ID); err != nil {
		log.Printf("worker %d: complete err: %v", idx, err)
		return
	}
	log.Printf("worker %d: job %s completed (assessment %s)", idx, job.ID, job.AssessmentID)
}

// ProcessInline records a running job for assessmentID and processes it
// synchronously with the same processor as the background workers. The job
// never enters the queue, so no worker can claim it.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor JobProcessor, assessmentID string) (ports.ScoreJob, error) {
	job, err := repo.StartNew(ctx, assessmentID)
	if err != nil {
		return ports.ScoreJob{}, err
	}
	done := context.WithoutCancel(ctx)
	if err := processor.Process(ctx, job); err != nil {
		_ = repo.MarkFailed(done, job.ID, err.Error())
		return job, err
	}
	if err := repo.MarkCompleted(done, job.ID); err != nil {
		return job, err
	}
	return repo.Get(done, job.ID)
}
