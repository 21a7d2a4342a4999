package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/treelint/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative over an audit with strict citation mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the audit report to summarize
	Report model.AuditReport

	// PersonIDs is the STRICT allowlist of person ids the LLM can reference
	// This prevents hallucination - the LLM cannot mention any person not in this list
	PersonIDs []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// CitedIDs are the person ids the LLM actually referenced (for verification)
	CitedIDs []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictCitations enforces the person-id allowlist (should always be true)
	StrictCitations bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:        "", // Disabled by default
		Model:           "",
		Timeout:         30,
		StrictCitations: true, // CRITICAL: Always enforce
		MaxTokens:       1000,
	}
}

// auditSystemPrompt frames every provider request the same way.
const auditSystemPrompt = "You are a helpful assistant that summarizes family tree quality audits with strict adherence to citation constraints."

// summaryTemperature keeps narratives factual rather than creative.
const summaryTemperature = 0.3

// defaultMaxTokens bounds responses when neither the request nor the
// config sets a limit.
const defaultMaxTokens = 1000

// resolvePrompt returns the custom prompt or builds the default one.
func (r SummarizeRequest) resolvePrompt() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	return BuildPrompt(r.Report, r.PersonIDs)
}

// BuildPrompt constructs the default prompt for summarization with strict citation mode
func BuildPrompt(report model.AuditReport, personIDs []string) string {
	prompt := fmt.Sprintf(`You are summarizing a family tree quality audit. The audit evaluates how consistent and well-sourced the recorded data is - it NEVER asserts genealogical truth.

CRITICAL RULES:
1. You MUST ONLY reference person ids from this allowed list:
%s

2. DO NOT infer, speculate, or mention persons beyond this list.
3. If a section of the audit is empty, state that explicitly.
4. Focus on DATA QUALITY, not family history. Use phrases like:
   - "The audit flagged N critical findings..."
   - "Sources are thin for..."
   - "Recorded dates disagree about..."
5. Never assert that a relationship or date is true - only describe findings.

Audit Summary:
- Root person: %s
- Generations: %d
- Critical findings: %d
- Warnings: %d
- Timeline findings: %d
- Relationship findings: %d across %d persons checked
- Likely duplicate pairs: %d
- Research targets: %d

Key findings:
`, joinIDs(personIDs), report.RootID, report.Generations, report.CriticalCount, report.WarningCount,
		len(report.TimelineIssues), len(report.Tree.Issues), report.Tree.PersonsChecked,
		len(report.Duplicates), len(report.Priorities))

	// Add top 3 findings
	for i, issue := range auditFindings(report) {
		if i >= 3 {
			break
		}
		prompt += fmt.Sprintf("- %s: %s\n", issue.Type, issue.Description)
	}

	if len(report.Priorities) > 0 {
		prompt += "\nTop research targets:\n"
		for i, target := range report.Priorities {
			if i >= 3 {
				break
			}
			prompt += fmt.Sprintf("- %s (%s): priority %d, %d sources\n",
				target.PersonName, target.PersonID, target.Score, target.TotalSources)
		}
	}

	prompt += "\nProvide a 3-4 sentence summary of data quality and where new sources would help most."

	return prompt
}

// CollectPersonIDs gathers every person id the audit mentions, in first
// appearance order. The result is the strict allowlist for citations.
func CollectPersonIDs(report model.AuditReport) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	add(report.RootID)
	for _, issue := range report.TimelineIssues {
		add(issue.PersonID)
		add(issue.ParentID)
	}
	for _, issue := range report.Tree.Issues {
		add(issue.PersonID)
		add(issue.ParentID)
		for _, id := range issue.Cycle {
			add(id)
		}
	}
	for _, pair := range report.Duplicates {
		add(pair.Person1.ID)
		add(pair.Person2.ID)
	}
	for _, target := range report.Priorities {
		add(target.PersonID)
	}
	return ids
}

// Helper functions

func auditFindings(report model.AuditReport) []model.Issue {
	findings := make([]model.Issue, 0, len(report.TimelineIssues)+len(report.Tree.Issues))
	findings = append(findings, report.TimelineIssues...)
	findings = append(findings, report.Tree.Issues...)
	return findings
}

func joinIDs(ids []string) string {
	if len(ids) == 0 {
		return "(No person ids available)"
	}
	result := ""
	for i, id := range ids {
		if i >= 40 { // Limit to first 40 to avoid token bloat
			result += fmt.Sprintf("\n... and %d more ids", len(ids)-40)
			break
		}
		result += fmt.Sprintf("\n- %s", id)
	}
	return result
}

var personIDPattern = regexp.MustCompile(`\b[A-Z0-9]+-[A-Z0-9]+\b`)

// extractPersonIDs extracts person-id shaped tokens from text
func extractPersonIDs(text string) []string {
	matches := personIDPattern.FindAllString(text, -1)

	// Deduplicate; all-digit matches are year ranges, not ids
	seen := make(map[string]bool)
	var unique []string
	for _, id := range matches {
		if !strings.ContainsFunc(id, unicode.IsLetter) {
			continue
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	return unique
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// verifyCitations extracts the person ids a summary mentions and, in
// strict mode, rejects any id that was not part of the audit.
func verifyCitations(summary string, allowed []string, strict bool) ([]string, error) {
	citedIDs := extractPersonIDs(summary)
	if !strict {
		return citedIDs, nil
	}
	for _, id := range citedIDs {
		if !contains(allowed, id) {
			return nil, fmt.Errorf("CITATION LEAK: LLM referenced person id outside the audit: %s", id)
		}
	}
	return citedIDs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
