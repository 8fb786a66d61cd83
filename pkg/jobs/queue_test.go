package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0)
	done := make(chan struct{}, 3)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		ok, err := q.Enqueue(Job{ID: id})
		require.NoError(t, err)
		assert.True(t, ok)
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestQueueCoalescesKeyedJobs(t *testing.T) {
	block := make(chan struct{})
	ran := int32(0)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		if job.ID == "blocker" {
			<-block
			return nil
		}
		atomic.AddInt32(&ran, 1)
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "blocker"})
	require.NoError(t, err)

	ok, err := q.Enqueue(Job{ID: "1", Key: "schedule"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = q.Enqueue(Job{ID: "2", Key: "schedule"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Pending())

	close(block)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&ran) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, q.Pending())
}

func TestQueueRetriesFailures(t *testing.T) {
	attempts := int32(0)
	q := NewQueue("test", func(context.Context, Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "flaky", Key: "k"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestQueueRejectsWhenNotStarted(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})

	_, err := q.Enqueue(Job{ID: "x", Key: "k"})
	assert.Error(t, err)
	assert.Equal(t, 0, q.Pending())
}
