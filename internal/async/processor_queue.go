package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/freightbite/freight-extract/internal/common"
	processor "github.com/freightbite/freight-extract/internal/pipeline"
)

// FileProcessor is the part of processor.Processor the queue needs.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, opts processor.Options) processor.Result
}

// ResultFunc observes every finished job.
type ResultFunc func(job Job, res processor.Result)

type ProcessorQueue struct {
	proc     FileProcessor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult ResultFunc

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// done is closed by Shutdown; ch is closed only after every sender has left.
	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	senders sync.WaitGroup
}

type Option func(*ProcessorQueue)

// WithWorkers sets the number of concurrent workers. The default of one keeps files
// sequential so the geocoder pacing is the only rate control needed.
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

func WithResultFunc(fn ResultFunc) Option {
	return func(q *ProcessorQueue) {
		q.onResult = fn
	}
}

func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 1,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("async.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, job.TraceID)
	if job.UserID != "" {
		ctx = common.WithUserID(ctx, job.UserID)
	}
	log := common.LoggerFromContext(ctx, q.logger)
	ctx = common.WithLogger(ctx, log)

	res := q.proc.ProcessFile(ctx, job.Path, processor.Options{UserID: job.UserID, DocumentType: job.DocumentType})
	if res.Error != nil {
		log.Error("async.job.failed", "worker_id", workerID, "path", job.Path, "error", res.Err())
	} else {
		log.Info("async.job.ok", "worker_id", workerID, "path", job.Path,
			"queued_ms", time.Since(job.SubmittedAt).Milliseconds())
	}
	if q.onResult != nil {
		q.onResult(job, res)
	}
}

// Enqueue blocks while the buffer is full, until ctx is done or the queue shuts down.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("async.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("async.enqueue.ok", "path", job.Path)
		return nil
	default:
	}
	q.logger.Warn("async.enqueue.backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-q.done:
		q.logger.Warn("async.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	drained := make(chan struct{})
	go func() { defer close(drained); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-drained:
		q.logger.Info("async.shutdown.drained")
	}
}
