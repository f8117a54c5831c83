// Package job provides a bounded in-memory queue that executes submitted
// work on a fixed pool of workers and tracks per-job status so callers can
// poll for results.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a submitted job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// terminal reports whether a job in this status will never change again.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var (
	// ErrQueueFull is returned by Submit when the buffered queue has no room.
	ErrQueueFull = errors.New("job queue is full, try again later")

	// ErrQueueClosed is returned by Submit after Stop has been called.
	ErrQueueClosed = errors.New("job queue is shut down")
)

// Func is the unit of work a job executes. The returned value is exposed to
// callers through Lookup once the job completes.
type Func func(ctx context.Context) (any, error)

// Job is a point-in-time snapshot of a submitted job's state. StartedAt is
// set when a worker picks the job up, CompletedAt when it reaches a terminal
// status; both stay nil until then.
type Job struct {
	ID          uuid.UUID
	Status      Status
	Result      any
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// QueueConfig holds configuration for the job queue
type QueueConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int
}

// DefaultQueueConfig returns a QueueConfig with reasonable defaults
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

type queued struct {
	id uuid.UUID
	fn Func
}

// Queue manages background job processing
type Queue struct {
	mu       sync.Mutex
	jobs     map[uuid.UUID]*Job
	jobChan  chan queued
	wg       sync.WaitGroup
	closed   bool
	config   QueueConfig
	logger   *slog.Logger
	timeFunc func() time.Time // Injectable for testing
}

// NewQueue creates a new Queue. Start must be called before jobs execute.
func NewQueue(config QueueConfig, logger *slog.Logger) *Queue {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultQueueConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueConfig().QueueSize
	}

	return &Queue{
		jobs:     make(map[uuid.UUID]*Job),
		jobChan:  make(chan queued, config.QueueSize),
		config:   config,
		logger:   logger,
		timeFunc: time.Now,
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	for i := 0; i < q.config.WorkerCount; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Submit registers fn as a pending job and enqueues it for execution.
// It returns the job ID immediately; callers poll Lookup for the outcome.
func (q *Queue) Submit(fn Func) (uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return uuid.Nil, ErrQueueClosed
	}

	now := q.timeFunc()
	id := uuid.New()
	q.jobs[id] = &Job{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	select {
	case q.jobChan <- queued{id: id, fn: fn}:
		return id, nil
	default:
		// Queue is full, roll back the record
		delete(q.jobs, id)
		return uuid.Nil, ErrQueueFull
	}
}

// Lookup returns a snapshot of the job's current state. The second return
// value is false when the ID is unknown or already cleaned up.
func (q *Queue) Lookup(id uuid.UUID) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Stop gracefully shuts down the queue. New submissions are rejected, already
// queued jobs are drained, and Stop returns once every worker has exited.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.jobChan)
	q.wg.Wait()
}

// Cleanup removes completed and failed jobs whose last update is older than
// maxAge, and returns how many were removed. Pending and processing jobs are
// never touched.
func (q *Queue) Cleanup(maxAge time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := q.timeFunc().Add(-maxAge)
	removed := 0
	for id, j := range q.jobs {
		if j.Status.terminal() && j.UpdatedAt.Before(cutoff) {
			delete(q.jobs, id)
			removed++
		}
	}
	return removed
}

// worker processes jobs from the queue until the channel is closed.
func (q *Queue) worker(id int) {
	defer q.wg.Done()

	q.logger.Debug("starting job worker", "worker_id", id)

	for item := range q.jobChan {
		q.execute(item)
	}

	q.logger.Debug("stopping job worker", "worker_id", id)
}

// execute runs a single job, converting panics into job failures so one bad
// job cannot take down the worker.
func (q *Queue) execute(item queued) {
	q.setStatus(item.id, StatusProcessing, nil, "")

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("job panicked", "job_id", item.id, "panic", r)
			q.setStatus(item.id, StatusFailed, nil, fmt.Sprintf("panic: %v", r))
		}
	}()

	result, err := item.fn(context.Background())
	if err != nil {
		q.logger.Error("job execution failed", "job_id", item.id, "error", err)
		q.setStatus(item.id, StatusFailed, nil, err.Error())
		return
	}

	q.setStatus(item.id, StatusCompleted, result, "")
}

func (q *Queue) setStatus(id uuid.UUID, status Status, result any, errMsg string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, ok := q.jobs[id]
	if !ok {
		return
	}
	now := q.timeFunc()
	j.Status = status
	j.Result = result
	j.Error = errMsg
	j.UpdatedAt = now
	if status == StatusProcessing {
		j.StartedAt = &now
	}
	if status.terminal() {
		j.CompletedAt = &now
	}
}
