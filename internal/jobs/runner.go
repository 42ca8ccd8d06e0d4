package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TaskRunner accepts a zero-argument unit of work to run outside the current
// request cycle. Submit must not block on task completion.
type TaskRunner interface {
	Submit(task func()) error
}

// WorkerPoolConfig holds configuration for the worker pool
type WorkerPoolConfig struct {
	WorkerCount int
	QueueSize   int
}

// DefaultWorkerPoolConfig returns sensible defaults
func DefaultWorkerPoolConfig() *WorkerPoolConfig {
	return &WorkerPoolConfig{
		WorkerCount: 3,
		QueueSize:   100,
	}
}

// WorkerPool runs submitted tasks on a fixed set of goroutines. It is the
// in-process task runner behind the dispatch guard; delivery does not survive
// a restart, the job ledger is what keeps duplicate work out.
type WorkerPool struct {
	taskQueue   chan func()
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	log         *logrus.Entry
}

func NewWorkerPool(config *WorkerPoolConfig, log *logrus.Entry) *WorkerPool {
	if config == nil {
		config = DefaultWorkerPoolConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   make(chan func(), config.QueueSize),
		workerCount: config.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		log:         log,
	}
}

// Start initializes and starts all workers
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Infof("Started %d background workers", p.workerCount)
}

// Stop gracefully shuts down all workers, letting queued tasks drain.
func (p *WorkerPool) Stop() {
	p.cancel()
	close(p.taskQueue)
	p.wg.Wait()
	p.log.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for task := range p.taskQueue {
		p.log.Debugf("Worker %d picked up a task", id)
		task()
	}
}

// Submit adds a task to the queue. Non-blocking with a short timeout; a full
// queue is reported to the caller rather than waited out.
func (p *WorkerPool) Submit(task func()) error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	default:
	}

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	case p.taskQueue <- task:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("task queue is full, please try again later")
	}
}
