package jobs

import (
	"context"

	"github.com/sirupsen/logrus"
)

// KeyFunc derives the job identifier from a typed argument struct. It must be
// a pure function of the logical unit of work so racing duplicate requests
// collide on the same key.
type KeyFunc[A any] func(args A) (string, error)

// WorkerFunc is the payload a dispatcher guards: one long-running, expensive
// unit of work.
type WorkerFunc[A any] func(ctx context.Context, args A) error

// Dispatcher guards worker functions with the job ledger: at most one
// concurrent execution per identifier, released on every exit path.
type Dispatcher struct {
	ledger Ledger
	runner TaskRunner
	log    *logrus.Entry
}

func NewDispatcher(ledger Ledger, runner TaskRunner, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		ledger: ledger,
		runner: runner,
		log:    log,
	}
}

// Schedule claims the identifier derived from args and, on success, hands the
// worker to the task runner without waiting for it. The returned bool is the
// in-progress status: true when a run was just started or is still executing,
// false when a previous run under this identifier already finished.
//
// Key derivation errors and unexpected ledger errors surface synchronously;
// worker errors never do. A failed worker is logged and released, and callers
// learn about it only through the absence of the expected downstream result.
func Schedule[A any](ctx context.Context, d *Dispatcher, keyFn KeyFunc[A], worker WorkerFunc[A], args A) (bool, error) {
	identifier, err := keyFn(args)
	if err != nil {
		return false, err
	}

	claim, err := d.ledger.Claim(ctx, identifier)
	if err != nil {
		return false, err
	}

	if !claim.Claimed {
		return claim.InProgress, nil
	}

	log := d.log.WithFields(logrus.Fields{
		"job_id":     claim.JobID,
		"identifier": identifier,
	})

	// The worker outlives the request; detach its context from the
	// caller's cancellation.
	workerCtx := context.WithoutCancel(ctx)

	err = d.runner.Submit(func() {
		runAndRelease(workerCtx, d, log, claim, worker, args)
	})
	if err != nil {
		// Could not hand the job off; release so the identifier is not
		// wedged in-progress forever.
		if relErr := d.ledger.Release(workerCtx, claim.JobID); relErr != nil {
			log.WithError(relErr).Error("Failed to release unsubmitted job")
		}
		return false, err
	}

	return true, nil
}

// runAndRelease executes the worker and always releases the ledger row,
// whatever the worker does: error, panic, or clean return.
func runAndRelease[A any](ctx context.Context, d *Dispatcher, log *logrus.Entry, claim ClaimResult, worker WorkerFunc[A], args A) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Background job panicked: %v", r)
		}
		if err := d.ledger.Release(ctx, claim.JobID); err != nil {
			log.WithError(err).Error("Failed to release job")
		}
	}()

	log.Info("Background job started")
	if err := worker(ctx, args); err != nil {
		log.WithError(err).Error("Background job failed")
		return
	}
	log.Info("Background job completed")
}
