package ports

import (
	"context"
	"time"
)

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

type ScoreJob struct {
	ID           string     `json:"id"`
	AssessmentID string     `json:"assessmentId"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	Error        string     `json:"error,omitempty"`
	QueuedAt     time.Time  `json:"queuedAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

// JobRepository supports enqueueing, claiming and updating scoring jobs.
type JobRepository interface {
	Enqueue(ctx context.Context, assessmentID string) (jobID string, err error)
	Get(ctx context.Context, jobID string) (ScoreJob, error)
	ClaimNext(ctx context.Context) (job ScoreJob, found bool, err error)
	// StartNew records a job that is already running, for inline processing.
	// ClaimNext never returns it.
	StartNew(ctx context.Context, assessmentID string) (ScoreJob, error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
}
