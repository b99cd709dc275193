package cache

import (
	"context"
	"testing"
	"time"

	"jobradar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentNilBeforeFirstPublish(t *testing.T) {
	s := New(nil)
	assert.Nil(t, s.Current())
}

func TestPublishSwapsGeneration(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	first := &model.ScrapeCycleResult{CycleID: "c1", CompletedAt: time.Now()}
	s.Publish(ctx, first)
	require.NotNil(t, s.Current())
	assert.Equal(t, "c1", s.Current().CycleID)

	second := &model.ScrapeCycleResult{CycleID: "c2"}
	s.Publish(ctx, second)
	assert.Equal(t, "c2", s.Current().CycleID)
}

func TestInvalidateClearsWithoutRecompute(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	s.Publish(ctx, &model.ScrapeCycleResult{CycleID: "c1"})
	require.NoError(t, s.Invalidate(ctx))
	assert.Nil(t, s.Current())
}

func TestLoadWithoutRedisIsNoop(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Load(context.Background()))
	assert.Nil(t, s.Current())
}
