package worker

import (
	"context"
	"sync"
)

// Pool runs audit jobs on a fixed number of goroutines. Results
// surface in completion order, not submission order; callers that care
// match them back up by RootID.
type Pool struct {
	workers int
	jobs    chan *AuditJob
	results chan *AuditResult
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

// NewPool creates a pool with the given number of workers. Fewer than
// one worker is clamped to one.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers: workers,
		jobs:    make(chan *AuditJob, workers*2), // Buffered to keep submitters moving
		results: make(chan *AuditResult, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues one audit. Submissions after Shutdown are dropped.
func (p *Pool) Submit(job *AuditJob) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobs <- job:
	}
}

// Wait closes the queue, lets in-flight audits finish and returns
// everything the workers produced.
func (p *Pool) Wait() []*AuditResult {
	close(p.jobs)

	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []*AuditResult
	for result := range p.results {
		results = append(results, result)
	}

	return results
}

// Shutdown stops the pool immediately, abandoning queued audits.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.once.Do(func() {
		close(p.results)
	})
}
