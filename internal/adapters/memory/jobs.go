package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"riskmatch/internal/domain"
	"riskmatch/internal/ports"
)

// Jobs is an in-process scoring job queue with the same transitions as the
// Postgres queue.
type Jobs struct {
	mu    sync.Mutex
	jobs  map[string]*ports.ScoreJob
	order []string
	now   func() time.Time
}

func NewJobs() *Jobs {
	return &Jobs{jobs: map[string]*ports.ScoreJob{}, now: time.Now}
}

func (j *Jobs) Enqueue(_ context.Context, assessmentID string) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	id := uuid.NewString()
	j.jobs[id] = &ports.ScoreJob{ID: id, AssessmentID: assessmentID, Status: ports.JobQueued, QueuedAt: j.now()}
	j.order = append(j.order, id)
	return id, nil
}

func (j *Jobs) Get(_ context.Context, jobID string) (ports.ScoreJob, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.jobs[jobID]
	if !ok {
		return ports.ScoreJob{}, fmt.Errorf("score job %s: %w", jobID, domain.ErrNotFound)
	}
	return *job, nil
}

func (j *Jobs) ClaimNext(_ context.Context) (ports.ScoreJob, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, id := range j.order {
		if job := j.jobs[id]; job.Status == ports.JobQueued {
			j.start(job)
			return *job, true, nil
		}
	}
	return ports.ScoreJob{}, false, nil
}

func (j *Jobs) StartNew(_ context.Context, assessmentID string) (ports.ScoreJob, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job := &ports.ScoreJob{ID: uuid.NewString(), AssessmentID: assessmentID, QueuedAt: j.now()}
	j.start(job)
	j.jobs[job.ID] = job
	j.order = append(j.order, job.ID)
	return *job, nil
}

func (j *Jobs) start(job *ports.ScoreJob) {
	now := j.now()
	job.Status = ports.JobRunning
	job.Attempts++
	job.StartedAt = &now
}

func (j *Jobs) MarkCompleted(_ context.Context, jobID string) error {
	return j.finish(jobID, ports.JobCompleted, "")
}

func (j *Jobs) MarkFailed(_ context.Context, jobID string, reason string) error {
	return j.finish(jobID, ports.JobFailed, reason)
}

func (j *Jobs) finish(jobID string, status ports.JobStatus, reason string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.jobs[jobID]
	if !ok {
		return fmt.Errorf("score job %s: %w", jobID, domain.ErrNotFound)
	}
	now := j.now()
	job.Status = status
	job.Error = reason
	job.FinishedAt = &now
	return nil
}
