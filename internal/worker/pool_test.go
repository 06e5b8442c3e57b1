package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/mfreitas/memflash/internal/worker"
)

type countingJob struct {
	name string
	runs *atomic.Int64
	done chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.done != nil {
		close(j.done)
	}
	return nil
}

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 8)
	pool.Start(context.Background())
	defer pool.Stop()

	var runs atomic.Int64
	done := make(chan struct{})
	err := pool.Submit(&countingJob{name: "job", runs: &runs, done: done})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
	assert.Equal(t, int64(1), runs.Load())
}

func TestPoolSubmitDoesNotBlockWhenFull(t *testing.T) {
	// Never started, so nothing drains the buffer.
	pool := worker.NewPool(1, 2)

	var runs atomic.Int64
	require.NoError(t, pool.Submit(&countingJob{name: "a", runs: &runs}))
	require.NoError(t, pool.Submit(&countingJob{name: "b", runs: &runs}))

	err := pool.Submit(&countingJob{name: "c", runs: &runs})
	assert.ErrorIs(t, err, worker.ErrQueueFull)
	assert.Equal(t, 2, pool.QueueSize())
}

func TestPoolStopDrainsPendingJobs(t *testing.T) {
	pool := worker.NewPool(1, 8)

	var runs atomic.Int64
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Submit(&countingJob{name: "pending", runs: &runs}))
	}

	pool.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for runs.Load() < 4 {
		select {
		case <-deadline:
			t.Fatalf("only %d of 4 jobs ran", runs.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
	pool.Stop()
}
