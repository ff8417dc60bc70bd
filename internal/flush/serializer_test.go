package flush

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueWritesOnce(t *testing.T) {
	s := New(zerolog.Nop())
	var mu sync.Mutex
	var got []int

	s.Enqueue("a", func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, 1)
		return nil
	})
	s.Wait()

	assert.Equal(t, []int{1}, got)
	assert.NoError(t, s.Err("a"))
}

func TestEnqueueCoalescesWhileInFlight(t *testing.T) {
	s := New(zerolog.Nop())
	release := make(chan struct{})
	var mu sync.Mutex
	var got []int

	s.Enqueue("a", func(context.Context) error {
		<-release
		mu.Lock()
		defer mu.Unlock()
		got = append(got, 1)
		return nil
	})
	// both land while the first write blocks; only the last survives
	s.Enqueue("a", func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, 2)
		return nil
	})
	s.Enqueue("a", func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, 3)
		return nil
	})
	close(release)
	s.Wait()

	assert.Equal(t, []int{1, 3}, got)
}

func TestIndependentAggregatesDoNotSerialize(t *testing.T) {
	s := New(zerolog.Nop())
	releaseA := make(chan struct{})
	ranB := make(chan struct{})

	s.Enqueue("a", func(context.Context) error {
		<-releaseA
		return nil
	})
	s.Enqueue("b", func(context.Context) error {
		close(ranB)
		return nil
	})

	// b finishes while a is still blocked
	<-ranB
	close(releaseA)
	s.Wait()
}

func TestFailedWriteRetainedAndRetried(t *testing.T) {
	s := New(zerolog.Nop())
	boom := errors.New("disk full")
	var mu sync.Mutex
	failing := true
	attempts := 0

	s.Enqueue("a", func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if failing {
			return boom
		}
		return nil
	})
	s.Wait()

	require.ErrorIs(t, s.Err("a"), boom)

	// retry while the fault persists: still dirty
	require.ErrorIs(t, s.Flush(context.Background(), "a"), boom)
	require.ErrorIs(t, s.Err("a"), boom)

	mu.Lock()
	failing = false
	mu.Unlock()

	require.NoError(t, s.Flush(context.Background(), "a"))
	assert.NoError(t, s.Err("a"))
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestFlushSerializesWithNewEnqueues(t *testing.T) {
	s := New(zerolog.Nop())
	boom := errors.New("disk full")
	retryStarted := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	failing := true
	stored := ""

	s.Enqueue("a", func(context.Context) error {
		mu.Lock()
		fail := failing
		mu.Unlock()
		if fail {
			return boom
		}
		close(retryStarted)
		<-release
		mu.Lock()
		stored = "old"
		mu.Unlock()
		return nil
	})
	s.Wait()
	require.ErrorIs(t, s.Err("a"), boom)

	mu.Lock()
	failing = false
	mu.Unlock()

	flushDone := make(chan error, 1)
	go func() { flushDone <- s.Flush(context.Background(), "a") }()
	<-retryStarted

	// lands while the retry blocks; must run after it, not alongside it
	s.Enqueue("a", func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		stored = "new"
		return nil
	})
	close(release)
	require.NoError(t, <-flushDone)
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "new", stored)
}

func TestFlushDropsSupersededWrite(t *testing.T) {
	s := New(zerolog.Nop())
	boom := errors.New("disk full")
	release := make(chan struct{})
	var mu sync.Mutex
	stored := ""

	s.Enqueue("a", func(context.Context) error { return boom })
	s.Wait()
	require.ErrorIs(t, s.Err("a"), boom)

	s.Enqueue("a", func(context.Context) error {
		<-release
		mu.Lock()
		defer mu.Unlock()
		stored = "new"
		return nil
	})

	// the newer in-flight write supersedes the failed one
	require.NoError(t, s.Flush(context.Background(), "a"))
	assert.NoError(t, s.Err("a"))

	close(release)
	s.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "new", stored)
}

func TestFlushWithNothingPending(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.Flush(context.Background(), "unknown"))
}
