package fetch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces the politeness delay between outbound requests: a token
// bucket guarantees the minimum spacing, and a random jitter on top spreads
// requests out so they do not land on a fixed beat. This is a deliberate
// throttle, not a retry or concurrency mechanism.
type Throttle struct {
	limiter *rate.Limiter
	jitter  time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewThrottle spaces requests at least minDelay apart and adds a uniform
// random extra delay of up to maxDelay-minDelay.
func NewThrottle(minDelay, maxDelay time.Duration) *Throttle {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
		jitter:  maxDelay - minDelay,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   sleepCtx,
	}
}

// Wait blocks for the politeness interval or until the context is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if t.jitter <= 0 {
		return nil
	}
	t.mu.Lock()
	d := time.Duration(t.rnd.Int63n(int64(t.jitter) + 1))
	t.mu.Unlock()
	return t.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
