package bindings

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
)

// gate admits native calls according to the library's thread-safety class.
// A serialized library gets a single slot; a concurrent one gets
// MaxConcurrentCalls slots. Both honor the caller's context while waiting.
type gate struct {
	slots   int64
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

func newGate(class abi.ThreadSafety, cfg Config) (*gate, error) {
	slots := int64(1)
	switch class {
	case abi.Serialized:
	case abi.Concurrent:
		if !cfg.Serialize {
			slots = int64(cfg.MaxConcurrentCalls)
			if slots <= 0 {
				slots = DefaultMaxConcurrentCalls
			}
		}
	default:
		return nil, fmt.Errorf("bindings: unknown thread-safety class %q", class)
	}
	g := &gate{slots: slots, sem: semaphore.NewWeighted(slots)}
	if cfg.CallRate > 0 {
		burst := cfg.CallBurst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.CallRate), burst)
	}
	return g, nil
}

// enter blocks until the call may proceed. The returned func must be called
// exactly once when the native call has returned.
func (g *gate) enter(ctx context.Context) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { g.sem.Release(1) }, nil
}

// serialized reports whether at most one call runs at a time.
func (g *gate) serialized() bool { return g.slots == 1 }
