package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/treelint/internal/model"
)

// batchKey is the shared limiter key for batch audits. Every audit
// reads the same local cache and at most one LLM endpoint, so pacing
// is global rather than per root.
const batchKey = "batch"

// Auditor runs a full quality audit from one root person
type Auditor interface {
	RunAudit(ctx context.Context, rootID string, generations int) (*model.AuditReport, error)
}

// AuditJob audits the tree rooted at one person
type AuditJob struct {
	RootID      string
	Generations int
	Auditor     Auditor
	Limiter     *Limiter
}

// Execute runs the audit job
func (j *AuditJob) Execute(ctx context.Context) *AuditResult {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, batchKey); err != nil {
			return &AuditResult{RootID: j.RootID, Error: err}
		}
	}

	report, err := j.Auditor.RunAudit(ctx, j.RootID, j.Generations)
	if err != nil {
		return &AuditResult{RootID: j.RootID, Error: err}
	}
	return &AuditResult{RootID: j.RootID, Report: report}
}

// AuditResult is the outcome of one audit job
type AuditResult struct {
	RootID string
	Report *model.AuditReport
	Error  error
}

// BatchProcessor audits multiple root persons concurrently
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. A non-positive
// requestsPerSecond disables pacing.
func NewBatchProcessor(auditor Auditor, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}

	return &BatchProcessor{
		auditor:     auditor,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessRoots audits multiple root persons concurrently
func (b *BatchProcessor) ProcessRoots(ctx context.Context, rootIDs []string, generations int) []*AuditResult {
	if len(rootIDs) == 0 {
		return []*AuditResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, rootID := range rootIDs {
		pool.Submit(&AuditJob{
			RootID:      rootID,
			Generations: generations,
			Auditor:     b.auditor,
			Limiter:     b.limiter,
		})
	}

	return pool.Wait()
}

// ProcessFile reads root person ids from a file and audits them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, generations int) ([]*AuditResult, error) {
	rootIDs, err := ReadRootIDsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read roots: %w", err)
	}

	return b.ProcessRoots(ctx, rootIDs, generations), nil
}

// ReadRootIDsFromFile reads person ids from a file (one per line).
// Blank lines and # comments are skipped; duplicate ids collapse.
func ReadRootIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var rootIDs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			rootIDs = append(rootIDs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return rootIDs, nil
}
