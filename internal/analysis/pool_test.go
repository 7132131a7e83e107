package analysis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfg-qc/crosscheck/constants"
	"github.com/mfg-qc/crosscheck/internal/report"
)

type recordingRunner struct {
	mu   sync.Mutex
	seen []uuid.UUID
}

func (r *recordingRunner) RunAnalysis(_ context.Context, id uuid.UUID) (*report.ValidationReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, id)
	return &report.ValidationReport{SessionID: id, OverallVerdict: constants.VerdictPass}, nil
}

func TestPool_ProcessesAllJobs(t *testing.T) {
	runner := &recordingRunner{}
	var cleanups sync.WaitGroup
	cleanups.Add(2)

	pool := NewPool(func(int) (Runner, func(), error) {
		return runner, cleanups.Done, nil
	}, nil, WithWorkers(2), WithQueueSize(8))

	want := 5
	for i := 0; i < want; i++ {
		require.NoError(t, pool.Enqueue(context.Background(), Job{SessionID: uuid.New(), SubmittedAt: time.Now()}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)
	cleanups.Wait()

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Len(t, runner.seen, want)
}

func TestPool_EnqueueAfterShutdownIsNoop(t *testing.T) {
	runner := &recordingRunner{}
	pool := NewPool(func(int) (Runner, func(), error) {
		return runner, func() {}, nil
	}, nil, WithWorkers(1))

	pool.Shutdown(context.Background())
	require.NoError(t, pool.Enqueue(context.Background(), Job{SessionID: uuid.New()}))

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Empty(t, runner.seen)
}

func TestPool_WorkerFactoryFailureDoesNotBlockShutdown(t *testing.T) {
	pool := NewPool(func(int) (Runner, func(), error) {
		return nil, nil, fmt.Errorf("no tesseract")
	}, nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pool.Shutdown(ctx)
}

func TestPool_ShutdownIdempotent(t *testing.T) {
	pool := NewPool(func(int) (Runner, func(), error) {
		return &recordingRunner{}, func() {}, nil
	}, nil, WithWorkers(1))

	pool.Shutdown(context.Background())
	pool.Shutdown(context.Background()) // second call must not panic
}
