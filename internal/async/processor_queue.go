package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/letterscan/internal/common"
)

type ProcessorQueue struct {
	handler  Handler
	registry *Registry
	notifier *Notifier
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// closing is closed first on shutdown; ch is closed only once every
	// sender holding sendMu for reading has seen it.
	closing   chan struct{}
	closeOnce sync.Once
	sendMu    sync.RWMutex
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithNotifier posts each finished job to its callback URL.
func WithNotifier(n *Notifier) Option {
	return func(q *ProcessorQueue) { q.notifier = n }
}

func NewProcessorQueue(h Handler, reg *Registry, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = NewRegistry(0)
	}
	q := &ProcessorQueue{
		handler:  h,
		registry: reg,
		logger:   logger,
		workers:  4,
		timeout:  3 * time.Minute,
		ch:       make(chan Job, 256),
		closing:  make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

// Registry exposes job status for the API.
func (q *ProcessorQueue) Registry() *Registry { return q.registry }

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("async.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx := common.WithJobID(context.Background(), job.ID.String())
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}
	logger := common.LoggerFromContext(ctx, q.logger)

	q.registry.Start(job.ID)
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, q.timeout)
	results, err := q.handler.Handle(runCtx, job)
	cancel()

	status := q.registry.Finish(job.ID, results, err)
	if err != nil {
		logger.Error("async.job.failed", "worker_id", workerID, "source", job.Source, "elapsed_ms", time.Since(start).Milliseconds(), "error", err)
	} else {
		logger.Info("async.job.done", "worker_id", workerID, "source", job.Source, "documents", len(results), "elapsed_ms", time.Since(start).Milliseconds())
	}

	if q.notifier != nil && job.CallbackURL != "" {
		if err := q.notifier.Notify(ctx, job.CallbackURL, status); err != nil {
			logger.Warn("async.webhook.failed", "callback_url", job.CallbackURL, "error", err)
		}
	}
}

// Enqueue registers job as QUEUED and hands it to the workers. When the
// buffer is full it blocks until a slot frees up, ctx is done or the queue
// shuts down.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.sendMu.RLock()
	defer q.sendMu.RUnlock()
	if q.isClosing() {
		q.logger.Warn("async.enqueue.rejected", "job_id", job.ID, "reason", "shutting down")
		return errQueueClosed()
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	q.registry.Add(job)

	select {
	case q.ch <- job:
		q.logger.Info("async.job.queued", "job_id", job.ID, "source", job.Source)
		return nil
	default:
	}

	q.logger.Warn("async.queue.full", "job_id", job.ID)
	select {
	case q.ch <- job:
		q.logger.Info("async.job.queued", "job_id", job.ID, "source", job.Source)
		return nil
	case <-q.closing:
		err := errQueueClosed()
		q.registry.Finish(job.ID, nil, err)
		return err
	case <-ctx.Done():
		q.registry.Finish(job.ID, nil, ctx.Err())
		return ctx.Err()
	}
}

func (q *ProcessorQueue) isClosing() bool {
	select {
	case <-q.closing:
		return true
	default:
		return false
	}
}

func errQueueClosed() error {
	return common.NewAppError("QUEUE_CLOSED", "queue is shutting down", common.ErrQueueClosed)
}

// Shutdown stops accepting jobs, releases blocked Enqueue callers and waits
// for the workers to drain the buffer until ctx is done.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	first := false
	q.closeOnce.Do(func() {
		first = true
		close(q.closing)
	})
	if !first {
		return
	}

	q.sendMu.Lock()
	close(q.ch)
	q.sendMu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-done:
		q.logger.Info("async.shutdown.drained")
	}
}
