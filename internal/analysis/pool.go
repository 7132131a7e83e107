package analysis

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mfg-qc/crosscheck/internal/report"
)

// Job is one queued analysis request.
type Job struct {
	SessionID   uuid.UUID
	SubmittedAt time.Time
}

// Runner is what a pool worker drives; satisfied by *Service.
type Runner interface {
	RunAnalysis(ctx context.Context, sessionID uuid.UUID) (*report.ValidationReport, error)
}

// WorkerFactory builds one runner per worker. Tesseract sessions are not safe
// for concurrent use, so each worker gets its own stack; the returned cleanup
// runs when the worker drains.
type WorkerFactory func(workerID int) (Runner, func(), error)

// Pool is a bounded queue of analysis runs.
type Pool struct {
	factory WorkerFactory
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPool(factory WorkerFactory, logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		factory: factory,
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(p)
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()

				runner, cleanup, err := p.factory(workerID)
				if err != nil {
					p.logger.Error("worker failed to start", "worker_id", workerID, "error", err)
					return
				}
				defer cleanup()
				p.logger.Info("worker started", "worker_id", workerID)

				for job := range p.ch {
					ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
					rep, err := runner.RunAnalysis(ctx, job.SessionID)
					cancel()

					if err != nil {
						p.logger.Error("analysis failed", "worker_id", workerID, "session_id", job.SessionID, "error", err)
					} else {
						p.logger.Info("analysis done",
							"worker_id", workerID,
							"session_id", job.SessionID,
							"verdict", rep.OverallVerdict,
							"queued_ms", time.Since(job.SubmittedAt).Milliseconds(),
						)
					}
				}

				p.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue queues a session for analysis, blocking when the queue is full.
// Enqueueing after Shutdown is a no-op.
func (p *Pool) Enqueue(_ context.Context, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("cannot enqueue: pool is shutting down", "session_id", job.SessionID)
		return nil
	}
	select {
	case p.ch <- job:
		p.logger.Info("queued session for analysis", "session_id", job.SessionID)
	default:
		p.logger.Warn("queue full, applying backpressure", "session_id", job.SessionID)
		p.ch <- job
	}
	return nil
}

// Shutdown closes the queue and waits for workers to drain, bounded by ctx.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		p.logger.Warn("shutdown interrupted by context")
	case <-done:
		p.logger.Info("queue drained, shutdown complete")
	}
}
