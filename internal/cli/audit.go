package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/llm"
	"github.com/ppiankov/treelint/internal/report"
)

var (
	auditGenerations int
	auditJSON        string
	auditMD          string
	auditTimeout     time.Duration
	outputDir        string
	noFooter         bool
	llmEnabled       bool
	llmProvider      string
	llmModel         string
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit <root-person-id>",
	Short: "Run the full quality audit from one root person",
	Long: `Audit runs every check against the research cache:
- Sweep the connected tree for ancestry cycles and structural issues
- Validate every person's timeline for plausibility
- Rank the root's ancestors by missing source coverage
- Detect likely duplicate person records across the whole cache
- Optionally generate an LLM research narrative (never affects findings)

The report is written as JSON and Markdown into the output directory.

Example:
  treelint audit KWRT-123
  treelint audit KWRT-123 --generations 6 --json audit.json --md audit.md
  treelint audit KWRT-123 --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	// Output flags
	auditCmd.Flags().IntVar(&auditGenerations, "generations", 0, "ancestor generations to prioritize (default: from config)")
	auditCmd.Flags().StringVar(&auditJSON, "json", "", "output JSON path (default: timestamped file in the output dir)")
	auditCmd.Flags().StringVar(&auditMD, "md", "", "output Markdown path (default: timestamped file in the output dir)")
	auditCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default: from config)")
	auditCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 2*time.Minute, "overall audit timeout (matters when the LLM narrative is enabled)")

	// LLM flags
	auditCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative generation")
	auditCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	auditCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAudit(cmd *cobra.Command, args []string) error {
	rootID := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.IncludeFooter = !noFooter
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if llmEnabled {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Auditing: %s\n", rootID)
		fmt.Fprintf(os.Stderr, "Cache: %s\n", cfg.Store.Path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", auditTimeout)
		fmt.Fprintln(os.Stderr)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	a := analyzer.New(st, cfg)
	audit, err := a.RunAudit(ctx, rootID, auditGenerations)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Checked %d persons in the tree sweep\n", audit.Tree.PersonsChecked)
		fmt.Fprintf(os.Stderr, "✓ Validated timelines: %d critical, %d warnings overall\n", audit.CriticalCount, audit.WarningCount)
		fmt.Fprintf(os.Stderr, "✓ Ranked %d research targets\n", len(audit.Priorities))
		fmt.Fprintf(os.Stderr, "✓ Found %d likely duplicate pair(s)\n", len(audit.Duplicates))
		if audit.LLM != nil && audit.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM narrative using %s/%s\n", audit.LLM.Provider, audit.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Resolve output paths
	jsonPath, mdPath := auditJSON, auditMD
	if jsonPath == "" || mdPath == "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		base := report.AuditFilename(sanitizeFilename(rootID), audit.GeneratedAt)
		if jsonPath == "" {
			jsonPath = filepath.Join(cfg.Output.Dir, base+".json")
		}
		if mdPath == "" {
			mdPath = filepath.Join(cfg.Output.Dir, base+".md")
		}
	}

	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderJSON(audit, jsonPath); err != nil {
		return fmt.Errorf("write JSON report: %w", err)
	}
	if err := renderer.RenderMarkdown(audit, mdPath); err != nil {
		return fmt.Errorf("write Markdown report: %w", err)
	}
	if audit.LLM != nil && audit.LLM.Enabled {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(audit.LLM), llmPath); err != nil {
			return fmt.Errorf("write LLM narrative: %w", err)
		}
	}

	renderer.RenderSummary(audit)
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", jsonPath)
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", mdPath)
	}

	return nil
}
