package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobradar/internal/cache"
	"jobradar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu      sync.Mutex
	runs    int
	block   chan struct{}
	release chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context) (*model.ScrapeCycleResult, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	if f.block != nil {
		f.block <- struct{}{}
		<-f.release
	}
	return &model.ScrapeCycleResult{CycleID: "test-cycle"}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func TestTriggerPublishesResult(t *testing.T) {
	store := cache.New(nil)
	s := New(&fakeRunner{}, store, time.Hour)

	ran := s.Trigger(context.Background())
	require.True(t, ran)

	cur := store.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "test-cycle", cur.CycleID)
	assert.False(t, s.LastRun().IsZero())
	assert.False(t, s.Running())
}

func TestTriggerDropsOverlappingCycle(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), release: make(chan struct{})}
	s := New(runner, cache.New(nil), time.Hour)

	done := make(chan bool)
	go func() { done <- s.Trigger(context.Background()) }()

	// wait until the first cycle is inside Run
	<-runner.block
	assert.True(t, s.Running())

	// second trigger while the first is in flight is dropped
	assert.False(t, s.Trigger(context.Background()))
	assert.Equal(t, 1, runner.count())

	close(runner.release)
	assert.True(t, <-done)
	assert.False(t, s.Running())
}
