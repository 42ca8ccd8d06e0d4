package repositories

import (
	"context"

	"classroom-api/internal/jobs"
	"classroom-api/pkg/errors"
	"classroom-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobRepository is the postgres-backed job ledger. One row per identifier,
// inserted once and never deleted; the unique constraint on identifier is the
// concurrency gate for the dispatch guard.
type JobRepository struct {
	db *postgres.DB
}

func NewJobRepository(db *postgres.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ jobs.Ledger = (*JobRepository)(nil)

func (r *JobRepository) Claim(ctx context.Context, identifier string) (jobs.ClaimResult, error) {
	jobID := uuid.New()

	query := `
		INSERT INTO job (job_id, identifier, in_progress, created_at)
		VALUES ($1, $2, true, NOW())
		ON CONFLICT (identifier) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, jobID, identifier)
	if err != nil {
		return jobs.ClaimResult{}, errors.WrapError(err, "INTERNAL_ERROR", "Failed to claim job", errors.ErrInternalServer.Status)
	}

	if tag.RowsAffected() == 1 {
		return jobs.ClaimResult{Claimed: true, JobID: jobID}, nil
	}

	// Lost the race (or the identifier ran before). Read back the winner.
	inProgress, err := r.StatusOf(ctx, identifier)
	if err != nil {
		return jobs.ClaimResult{}, err
	}
	return jobs.ClaimResult{Claimed: false, InProgress: inProgress}, nil
}

func (r *JobRepository) Release(ctx context.Context, jobID uuid.UUID) error {
	query := `
		UPDATE job SET in_progress = false
		WHERE job_id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, jobID)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to release job", errors.ErrInternalServer.Status)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *JobRepository) StatusOf(ctx context.Context, identifier string) (bool, error) {
	query := `
		SELECT in_progress
		FROM job
		WHERE identifier = $1
	`

	var inProgress bool
	err := r.db.Pool.QueryRow(ctx, query, identifier).Scan(&inProgress)

	if err == pgx.ErrNoRows {
		return false, errors.ErrNotFound
	}
	if err != nil {
		return false, errors.WrapError(err, "INTERNAL_ERROR", "Failed to get job status", errors.ErrInternalServer.Status)
	}

	return inProgress, nil
}
