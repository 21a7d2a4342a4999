package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/treelint/internal/model"
)

// hookAuditor lets tests observe scheduling through start/end
// callbacks and fail selected roots.
type hookAuditor struct {
	delay   time.Duration
	failIDs map[string]bool
	calls   int32
	start   func()
	end     func()
}

func (a *hookAuditor) RunAudit(ctx context.Context, rootID string, generations int) (*model.AuditReport, error) {
	atomic.AddInt32(&a.calls, 1)
	if a.start != nil {
		a.start()
	}
	if a.end != nil {
		defer a.end()
	}

	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if a.failIDs[rootID] {
		return nil, errors.New("audit failed")
	}
	return &model.AuditReport{
		RunID:       "run-" + rootID,
		RootID:      rootID,
		Generations: generations,
	}, nil
}

func auditJob(a Auditor, rootID string) *AuditJob {
	return &AuditJob{RootID: rootID, Generations: 4, Auditor: a}
}

func TestNewPool_WorkerFloor(t *testing.T) {
	if got := NewPool(5).workers; got != 5 {
		t.Errorf("expected 5 workers, got %d", got)
	}
	if got := NewPool(0).workers; got != 1 {
		t.Errorf("expected 1 worker for 0 input, got %d", got)
	}
	if got := NewPool(-3).workers; got != 1 {
		t.Errorf("expected 1 worker for negative input, got %d", got)
	}
}

func TestPool_RunsEveryAudit(t *testing.T) {
	auditor := &hookAuditor{}
	pool := NewPool(2)
	pool.Start()

	count := 10
	for i := 0; i < count; i++ {
		pool.Submit(auditJob(auditor, fmt.Sprintf("KWRT-%03d", i)))
	}

	results := pool.Wait()

	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	if got := atomic.LoadInt32(&auditor.calls); got != int32(count) {
		t.Errorf("expected %d audits run, got %d", count, got)
	}

	seen := make(map[string]bool, len(results))
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.RootID, res.Error)
		}
		if res.Report == nil || res.Report.RootID != res.RootID {
			t.Errorf("result for %s carries mismatched report", res.RootID)
		}
		seen[res.RootID] = true
	}
	if len(seen) != count {
		t.Errorf("expected %d distinct roots in results, got %d", count, len(seen))
	}
}

func TestPool_ConcurrencyBound(t *testing.T) {
	workers := 4
	totalJobs := 20

	var current, maxSeen int32
	var mu sync.Mutex

	auditor := &hookAuditor{
		delay: 10 * time.Millisecond,
		start: func() {
			curr := atomic.AddInt32(&current, 1)
			mu.Lock()
			if curr > maxSeen {
				maxSeen = curr
			}
			mu.Unlock()
		},
		end: func() {
			atomic.AddInt32(&current, -1)
		},
	}

	pool := NewPool(workers)
	pool.Start()
	for i := 0; i < totalJobs; i++ {
		pool.Submit(auditJob(auditor, fmt.Sprintf("KWRT-%03d", i)))
	}

	results := pool.Wait()
	if len(results) != totalJobs {
		t.Fatalf("expected %d results, got %d", totalJobs, len(results))
	}

	mu.Lock()
	peak := maxSeen
	mu.Unlock()

	if peak > int32(workers) {
		t.Errorf("peak concurrency %d exceeded %d workers", peak, workers)
	}
	if peak <= 1 {
		t.Logf("warning: peak concurrency was %d, expected > 1", peak)
	}
}

func TestPool_ErrorsSurfaceWithRootID(t *testing.T) {
	auditor := &hookAuditor{failIDs: map[string]bool{"KWRT-BAD": true}}
	pool := NewPool(2)
	pool.Start()

	pool.Submit(auditJob(auditor, "KWRT-BAD"))
	pool.Submit(auditJob(auditor, "KWRT-OK"))

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	for _, res := range results {
		switch res.RootID {
		case "KWRT-BAD":
			if res.Error == nil {
				t.Error("expected error for KWRT-BAD")
			}
			if res.Report != nil {
				t.Error("expected nil report for failed audit")
			}
		case "KWRT-OK":
			if res.Error != nil {
				t.Errorf("unexpected error for KWRT-OK: %v", res.Error)
			}
		default:
			t.Errorf("unexpected root id %s", res.RootID)
		}
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	// Must not panic or block
	done := make(chan struct{})
	go func() {
		pool.Submit(auditJob(&hookAuditor{}, "KWRT-001"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ShutdownClosesResults(t *testing.T) {
	started := make(chan struct{})
	auditor := &hookAuditor{
		delay: 200 * time.Millisecond,
		start: func() { close(started) },
	}

	pool := NewPool(2)
	pool.Start()
	pool.Submit(auditJob(auditor, "KWRT-001"))

	<-started
	pool.Shutdown()

	// The results channel must close so drains terminate
	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown left results channel open")
	}
}
