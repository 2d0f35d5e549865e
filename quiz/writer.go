package quiz

import (
	"context"
	"time"

	"quiz_app_backend/logger"
	"quiz_app_backend/metrics"
)

// ProgressStore is the external persistence collaborator.
type ProgressStore interface {
	GetProgress(ctx context.Context, userID int) (Progress, error)
	SaveProgress(ctx context.Context, userID int, p Progress) error
	AppendAttempt(ctx context.Context, a Attempt) error
}

// WriteJob is one fire-and-forget persistence call.
type WriteJob struct {
	Op      string
	UserID  int
	Run     func(ctx context.Context) error
	OnError func(err error)
}

// Dispatcher accepts write jobs without blocking the caller.
type Dispatcher interface {
	Enqueue(job WriteJob) bool
}

// AsyncWriter drains write jobs on a single goroutine started by Run.
type AsyncWriter struct {
	jobs    chan WriteJob
	timeout time.Duration
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewAsyncWriter(size int, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *AsyncWriter {
	if size <= 0 {
		size = 64
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AsyncWriter{
		jobs:    make(chan WriteJob, size),
		timeout: timeout,
		log:     log,
		metrics: m,
	}
}

// Enqueue never blocks; a full queue drops the job and reports false.
func (w *AsyncWriter) Enqueue(job WriteJob) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		w.log.Warn("Persistence queue full, dropping write", "op", job.Op, "user_id", job.UserID)
		w.metrics.WriteDropped()
		if job.OnError != nil {
			job.OnError(errQueueFull)
		}
		return false
	}
}

// Run processes jobs until ctx is cancelled, then flushes what is already queued.
func (w *AsyncWriter) Run(ctx context.Context) error {
	for {
		select {
		case job := <-w.jobs:
			w.execute(job)
		case <-ctx.Done():
			for {
				select {
				case job := <-w.jobs:
					w.execute(job)
				default:
					return nil
				}
			}
		}
	}
}

func (w *AsyncWriter) execute(job WriteJob) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	runJob(ctx, job, w.log, w.metrics)
}

func runJob(ctx context.Context, job WriteJob, log *logger.Logger, m *metrics.Metrics) {
	if err := job.Run(ctx); err != nil {
		log.Error("Persistence write failed", "op", job.Op, "user_id", job.UserID, "error", err)
		m.PersistFailed(job.Op)
		if job.OnError != nil {
			job.OnError(err)
		}
	}
}

// SyncDispatcher runs each job inline. Used by tests and tools that want
// deterministic persistence.
type SyncDispatcher struct {
	Log     *logger.Logger
	Metrics *metrics.Metrics
}

func (d SyncDispatcher) Enqueue(job WriteJob) bool {
	runJob(context.Background(), job, d.Log, d.Metrics)
	return true
}

type queueError string

func (e queueError) Error() string { return string(e) }

const errQueueFull = queueError("persistence queue full")
