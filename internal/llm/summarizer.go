package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/treelint/internal/model"
)

// Summarizer wraps an optional provider and degrades gracefully: a
// missing or failing provider never fails the audit that asked for a
// narrative.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer builds a summarizer from config. An empty provider name
// yields a disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider's name, or "" when
// disabled.
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary asks the provider for a narrative over the audit.
// Returns (nil, nil) when disabled. Provider failures come back as a
// summary carrying warnings rather than an error, so the audit that
// requested the narrative is never lost.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.AuditReport) (*model.ResearchSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.ResearchSummary{
		Provider:        s.provider.Name(),
		Model:           s.config.Model,
		StrictCitations: s.config.StrictCitations,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("Provider %s is not available - check configuration and credentials", s.provider.Name()))
		return summary, nil
	}
	summary.Enabled = true

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		PersonIDs: CollectPersonIDs(report),
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("Summary generation failed: %v", err))
		return summary, nil
	}

	if resp.Model != "" {
		summary.Model = resp.Model
	}
	summary.SummaryMD = resp.Summary
	summary.Warnings = append(summary.Warnings,
		fmt.Sprintf("Tokens used: %d", resp.TokensUsed),
		fmt.Sprintf("Verified %d person citations against the audit", len(resp.CitedIDs)))
	return summary, nil
}

// RenderSeparateMarkdown renders the summary as a standalone document.
// The caller writes it next to the audit report, never inside it.
func RenderSeparateMarkdown(summary *model.ResearchSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT**: this narrative was written by a language model.\n")
	b.WriteString("> Every finding in the audit report was determined independently of it.\n\n")
	fmt.Fprintf(&b, "- Provider: %s\n", summary.Provider)
	fmt.Fprintf(&b, "- Model: %s\n", summary.Model)
	fmt.Fprintf(&b, "- Strict Citations: %t\n\n", summary.StrictCitations)

	if summary.SummaryMD == "" {
		b.WriteString("No summary generated.\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, warning := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}
	return b.String()
}
