package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"classroom-api/internal/logger"

	"github.com/google/uuid"
)

// memoryLedger mimics the postgres ledger: insert-if-absent on a map guarded
// by a mutex stands in for the unique-constraint insert.
type memoryLedger struct {
	mu       sync.Mutex
	rows     map[string]*memoryRow
	released map[uuid.UUID]int
}

type memoryRow struct {
	id         uuid.UUID
	inProgress bool
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		rows:     make(map[string]*memoryRow),
		released: make(map[uuid.UUID]int),
	}
}

func (l *memoryLedger) Claim(_ context.Context, identifier string) (ClaimResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if row, ok := l.rows[identifier]; ok {
		return ClaimResult{Claimed: false, JobID: row.id, InProgress: row.inProgress}, nil
	}
	row := &memoryRow{id: uuid.New(), inProgress: true}
	l.rows[identifier] = row
	return ClaimResult{Claimed: true, JobID: row.id, InProgress: true}, nil
}

func (l *memoryLedger) Release(_ context.Context, jobID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.released[jobID]++
	for _, row := range l.rows {
		if row.id == jobID {
			row.inProgress = false
		}
	}
	return nil
}

func (l *memoryLedger) StatusOf(_ context.Context, identifier string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[identifier]
	if !ok {
		return false, errors.New("not found")
	}
	return row.inProgress, nil
}

// syncRunner executes tasks inline so tests observe worker side effects
// without sleeping.
type syncRunner struct{}

func (syncRunner) Submit(task func()) error {
	task()
	return nil
}

type failingRunner struct{}

func (failingRunner) Submit(func()) error {
	return errors.New("task queue is full")
}

func staticKey(args string) (string, error) {
	return args, nil
}

func newTestDispatcher(ledger Ledger, runner TaskRunner) *Dispatcher {
	return NewDispatcher(ledger, runner, logger.Discard().Entry)
}

func TestScheduleRunsWorkerOnce(t *testing.T) {
	ledger := newMemoryLedger()
	pool := NewWorkerPool(&WorkerPoolConfig{WorkerCount: 4, QueueSize: 16}, logger.Discard().Entry)
	pool.Start()
	defer pool.Stop()

	d := newTestDispatcher(ledger, pool)

	var mu sync.Mutex
	runs := 0
	done := make(chan struct{})

	worker := func(ctx context.Context, args string) error {
		mu.Lock()
		runs++
		mu.Unlock()
		close(done)
		return nil
	}

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Schedule(context.Background(), d, staticKey, worker, "transcribe-abc"); err != nil {
				t.Errorf("Schedule returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("worker ran %d times, want 1", runs)
	}
}

func TestScheduleReleasesAfterWorkerError(t *testing.T) {
	ledger := newMemoryLedger()
	d := newTestDispatcher(ledger, syncRunner{})

	worker := func(ctx context.Context, args string) error {
		return errors.New("transcription service down")
	}

	inProgress, err := Schedule(context.Background(), d, staticKey, worker, "transcribe-err")
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if !inProgress {
		t.Fatal("Schedule should report the job as started")
	}

	// Inline runner, so the row is already released and a retry claims anew.
	status, err := ledger.StatusOf(context.Background(), "transcribe-err")
	if err != nil {
		t.Fatalf("StatusOf: %v", err)
	}
	if status {
		t.Fatal("job still in progress after worker error")
	}
}

func TestScheduleReleasesAfterWorkerPanic(t *testing.T) {
	ledger := newMemoryLedger()
	d := newTestDispatcher(ledger, syncRunner{})

	worker := func(ctx context.Context, args string) error {
		panic("ffmpeg exploded")
	}

	if _, err := Schedule(context.Background(), d, staticKey, worker, "transcribe-panic"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	status, err := ledger.StatusOf(context.Background(), "transcribe-panic")
	if err != nil {
		t.Fatalf("StatusOf: %v", err)
	}
	if status {
		t.Fatal("job still in progress after worker panic")
	}
}

func TestScheduleDuplicateReportsStatus(t *testing.T) {
	ledger := newMemoryLedger()
	d := newTestDispatcher(ledger, syncRunner{})

	ran := 0
	worker := func(ctx context.Context, args string) error {
		ran++
		return nil
	}

	if _, err := Schedule(context.Background(), d, staticKey, worker, "grade-1"); err != nil {
		t.Fatalf("first Schedule: %v", err)
	}

	// Completed run: the duplicate reports false and the worker stays at
	// one execution.
	inProgress, err := Schedule(context.Background(), d, staticKey, worker, "grade-1")
	if err != nil {
		t.Fatalf("second Schedule: %v", err)
	}
	if inProgress {
		t.Fatal("finished job reported as in progress")
	}
	if ran != 1 {
		t.Fatalf("worker ran %d times, want 1", ran)
	}
}

func TestScheduleDuplicateWhileRunning(t *testing.T) {
	ledger := newMemoryLedger()
	pool := NewWorkerPool(&WorkerPoolConfig{WorkerCount: 1, QueueSize: 4}, logger.Discard().Entry)
	pool.Start()
	defer pool.Stop()

	d := newTestDispatcher(ledger, pool)

	started := make(chan struct{})
	release := make(chan struct{})
	worker := func(ctx context.Context, args string) error {
		close(started)
		<-release
		return nil
	}

	if _, err := Schedule(context.Background(), d, staticKey, worker, "grade-2"); err != nil {
		t.Fatalf("first Schedule: %v", err)
	}
	<-started

	inProgress, err := Schedule(context.Background(), d, staticKey, worker, "grade-2")
	if err != nil {
		t.Fatalf("second Schedule: %v", err)
	}
	if !inProgress {
		t.Fatal("running job reported as finished")
	}
	close(release)
}

func TestScheduleKeyErrorIsSynchronous(t *testing.T) {
	ledger := newMemoryLedger()
	d := newTestDispatcher(ledger, syncRunner{})

	keyErr := errors.New("lecture id is required")
	badKey := func(args string) (string, error) {
		return "", keyErr
	}
	worker := func(ctx context.Context, args string) error {
		t.Fatal("worker must not run when key derivation fails")
		return nil
	}

	if _, err := Schedule(context.Background(), d, badKey, worker, ""); !errors.Is(err, keyErr) {
		t.Fatalf("Schedule error = %v, want %v", err, keyErr)
	}
	if len(ledger.rows) != 0 {
		t.Fatal("no claim should be attempted when key derivation fails")
	}
}

func TestScheduleReleasesWhenSubmitFails(t *testing.T) {
	ledger := newMemoryLedger()
	d := newTestDispatcher(ledger, failingRunner{})

	worker := func(ctx context.Context, args string) error { return nil }

	if _, err := Schedule(context.Background(), d, staticKey, worker, "transcribe-full"); err == nil {
		t.Fatal("expected submit error to surface")
	}

	status, err := ledger.StatusOf(context.Background(), "transcribe-full")
	if err != nil {
		t.Fatalf("StatusOf: %v", err)
	}
	if status {
		t.Fatal("unsubmitted job left in progress")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	ledger := newMemoryLedger()

	claim, err := ledger.Claim(context.Background(), "transcribe-idem")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := ledger.Release(context.Background(), claim.JobID); err != nil {
			t.Fatalf("Release #%d: %v", i+1, err)
		}
	}

	status, err := ledger.StatusOf(context.Background(), "transcribe-idem")
	if err != nil {
		t.Fatalf("StatusOf: %v", err)
	}
	if status {
		t.Fatal("row still in progress after release")
	}
}
