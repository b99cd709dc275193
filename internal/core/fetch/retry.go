package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jobradar/internal/model"
)

const maxJitter = 2 * time.Second

// AttemptFunc performs one fetch attempt. A nil outcome with a non-nil error
// is treated as a transient failure; an outcome decides its own retryability.
type AttemptFunc func(ctx context.Context) (*model.FetchOutcome, error)

// Retrier wraps fetch calls with exponential backoff plus bounded random
// jitter so concurrent workers hitting the same portal spread out.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Sleep and Jitter are swappable for tests.
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() time.Duration
}

func NewRetrier(maxRetries int, baseDelay time.Duration) *Retrier {
	return &Retrier{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		Sleep:      sleepCtx,
		Jitter:     func() time.Duration { return time.Duration(rand.Int63n(int64(maxJitter))) },
	}
}

// Do runs fn up to MaxRetries times. Retryable outcomes (rate limited or
// blocked) and transient errors back off with delay = base * 2^attempt plus
// 0-2000ms jitter. Non-retryable outcomes and context cancellation return
// immediately.
func (r *Retrier) Do(ctx context.Context, fn AttemptFunc) (*model.FetchOutcome, error) {
	attempts := r.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastOut *model.FetchOutcome
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// delay = base * 2^(attempt-1), counting the wait before retry N
			delay := r.BaseDelay<<uint(attempt-1) + r.Jitter()
			if err := r.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		out, err := fn(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastOut, lastErr = nil, err
			continue
		}
		if out.Status == model.OutcomeSuccess {
			return out, nil
		}
		lastOut, lastErr = out, nil
		if !out.Retryable() {
			return out, nil
		}
	}

	if lastOut != nil {
		return lastOut, nil
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
