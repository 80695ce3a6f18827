package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// Task is a self-contained unit of work carried as a job payload.
type Task func(context.Context)

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	// MaxRetries is the number of re-deliveries after a handler error. Zero disables retries.
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
	seq     uint64
	active  int64
}

// NewQueue builds a new queue with the provided handler. A nil handler yields a
// queue that only runs Task payloads submitted through Go.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit. Tasks still running see their context
// cancelled; tasks still buffered run once with the cancelled context so they can release
// whatever they hold. Buffered handler jobs are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.drain()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

func (q *Queue) drain() {
	for {
		select {
		case job := <-q.jobs:
			if _, ok := job.Payload.(Task); ok {
				_ = q.run(job)
				continue
			}
			q.logger.Sugar().Warnw("dropping queued job", "queue", q.name, "job_id", job.ID, "type", job.Type)
		default:
			return
		}
	}
}

// Enqueue pushes a job onto the queue without blocking; a full buffer is an error.
func (q *Queue) Enqueue(job Job) error {
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	if job.ID == "" {
		job.ID = fmt.Sprintf("%s-%d", q.name, atomic.AddUint64(&q.seq, 1))
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if q.stopped {
		return fmt.Errorf("queue %s stopped: %w", q.name, context.Canceled)
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s is full", q.name)
	}
}

// Go schedules a task. The task receives the queue's context, not the caller's,
// so it outlives the request that scheduled it.
func (q *Queue) Go(name string, task Task) error {
	if task == nil {
		return fmt.Errorf("queue %s: nil task", q.name)
	}
	return q.Enqueue(Job{Type: name, Payload: task})
}

// Active reports how many jobs are currently executing.
func (q *Queue) Active() int {
	return int(atomic.LoadInt64(&q.active))
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			if err := q.run(job); err != nil {
				q.handleFailure(job, err)
			}
		}
	}
}

func (q *Queue) run(job Job) (err error) {
	atomic.AddInt64(&q.active, 1)
	defer atomic.AddInt64(&q.active, -1)
	defer func() {
		if r := recover(); r != nil {
			q.logger.Sugar().Errorw("job panicked", "queue", q.name, "job_id", job.ID, "type", job.Type, "panic", r)
			err = nil
		}
	}()

	if task, ok := job.Payload.(Task); ok {
		task(q.ctx)
		return nil
	}
	if q.handler == nil {
		return fmt.Errorf("queue %s has no handler for job type %s", q.name, job.Type)
	}
	return q.handler(q.ctx, job)
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	if job.Attempt > q.maxRetries {
		q.logger.Sugar().Errorw("job failed", "queue", q.name, "job_id", job.ID, "type", job.Type, "attempts", job.Attempt, "error", err)
		return
	}
	q.logger.Sugar().Warnw("job failed, retrying", "queue", q.name, "job_id", job.ID, "type", job.Type, "attempt", job.Attempt, "error", err)

	go func(j Job) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
			if err := q.Enqueue(j); err != nil {
				q.logger.Sugar().Errorw("failed to requeue job", "queue", q.name, "job_id", j.ID, "error", err)
			}
		}
	}(job)
}

// Inline runs tasks synchronously on the caller's goroutine. It satisfies the same
// Go contract as Queue and is used in tests.
type Inline struct {
	Ctx context.Context
}

// Go runs the task immediately.
func (i Inline) Go(_ string, task Task) error {
	if task == nil {
		return fmt.Errorf("inline: nil task")
	}
	ctx := i.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	task(ctx)
	return nil
}
