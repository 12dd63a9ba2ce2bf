package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"riskmatch/internal/domain"
	"riskmatch/internal/ports"
)

const jobColumns = `id::text, assessment_id, status, attempts, error, queued_at, started_at, finished_at`

func scanJob(row pgx.Row) (ports.ScoreJob, error) {
	var j ports.ScoreJob
	var status string
	err := row.Scan(&j.ID, &j.AssessmentID, &status, &j.Attempts, &j.Error, &j.QueuedAt, &j.StartedAt, &j.FinishedAt)
	j.Status = ports.JobStatus(status)
	return j, err
}

func (db *DB) Enqueue(ctx context.Context, assessmentID string) (string, error) {
	var jobID string
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO score_jobs (assessment_id) VALUES ($1) RETURNING id::text
    `, assessmentID).Scan(&jobID)
	if err != nil {
		return "", unknownAssessment(assessmentID, err)
	}
	return jobID, nil
}

func (db *DB) Get(ctx context.Context, jobID string) (ports.ScoreJob, error) {
	job, err := scanJob(db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM score_jobs WHERE id::text = $1`, jobID))
	if err != nil {
		return ports.ScoreJob{}, notFound("score job", jobID, err)
	}
	return job, nil
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.ScoreJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if err = tx.Commit(ctx); err != nil {
			job, found = ports.ScoreJob{}, false
		}
	}()

	var jobID string
	err = tx.QueryRow(ctx, `
        SELECT id::text FROM score_jobs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}
	job, err = scanJob(tx.QueryRow(ctx, `
        UPDATE score_jobs SET status='running', started_at=now(), attempts=attempts+1
        WHERE id::text = $1
        RETURNING `+jobColumns, jobID))
	if err != nil {
		return job, false, err
	}
	return job, true, nil
}

// StartNew inserts a job already marked running, so ClaimNext never sees it.
func (db *DB) StartNew(ctx context.Context, assessmentID string) (ports.ScoreJob, error) {
	job, err := scanJob(db.Pool.QueryRow(ctx, `
        INSERT INTO score_jobs (assessment_id, status, attempts, started_at)
        VALUES ($1, 'running', 1, now())
        RETURNING `+jobColumns, assessmentID))
	if err != nil {
		return ports.ScoreJob{}, unknownAssessment(assessmentID, err)
	}
	return job, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	return db.finish(ctx, jobID, ports.JobCompleted, "")
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	return db.finish(ctx, jobID, ports.JobFailed, reason)
}

func (db *DB) finish(ctx context.Context, jobID string, status ports.JobStatus, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tag, err := db.Pool.Exec(ctx, `
        UPDATE score_jobs SET status=$2, error=$3, finished_at=now() WHERE id::text = $1
    `, jobID, string(status), reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("score job %s: %w", jobID, domain.ErrNotFound)
	}
	return nil
}

// unknownAssessment maps a score_jobs foreign key violation to ErrNotFound.
func unknownAssessment(assessmentID string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("assessment %s: %w", assessmentID, domain.ErrNotFound)
	}
	return err
}
