package jobs

import (
	"context"

	"github.com/google/uuid"
)

// ClaimResult is the typed outcome of a claim attempt. A duplicate identifier
// is an expected result, not an error: Claimed=false carries the current
// in-progress flag of the existing record.
type ClaimResult struct {
	Claimed    bool
	JobID      uuid.UUID
	InProgress bool
}

// Ledger is the durable job record store behind the dispatch guard. The
// atomicity of "insert new row with unique identifier" is the only
// synchronization primitive the guard relies on.
type Ledger interface {
	// Claim atomically inserts an in-progress record for identifier. On a
	// duplicate it reads back the existing record's status instead of
	// failing; a duplicate with no readable record is an invariant
	// violation and returns an error.
	Claim(ctx context.Context, identifier string) (ClaimResult, error)

	// Release flips in_progress to false for jobID. Idempotent.
	Release(ctx context.Context, jobID uuid.UUID) error

	// StatusOf reports the in-progress flag for identifier.
	StatusOf(ctx context.Context, identifier string) (bool, error)
}
