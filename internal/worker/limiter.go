package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per key. Batch audits share a
// single key; the HTTP server keys by client address, so each client
// fills its own bucket.
type Limiter struct {
	mu     sync.RWMutex
	perKey map[string]*rate.Limiter
	rps    rate.Limit
	burst  int
}

func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		perKey: make(map[string]*rate.Limiter),
		rps:    rate.Limit(requestsPerSecond),
		burst:  burst,
	}
}

// Wait blocks until the key's bucket clears a request or ctx ends.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}

// Allow reports whether a request under the key may proceed right now.
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.RLock()
	b, ok := l.perKey[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.perKey[key]; ok {
		// Another goroutine won the race between the locks
		return b
	}
	b = rate.NewLimiter(l.rps, l.burst)
	l.perKey[key] = b
	return b
}
