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
	"github.com/ppiankov/treelint/internal/report"
	"github.com/ppiankov/treelint/internal/worker"
)

var (
	concurrency      int
	batchGenerations int
	batchTimeout     time.Duration
	batchRPS         float64
	batchBurst       int
	// outputDir, noFooter and the llm* flags are defined in audit.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Audit multiple root persons from a file in parallel",
	Long: `Batch audits several roots concurrently:
- Read root person ids from the input file (one per line, # comments)
- Run full audits in parallel with a configurable worker count
- Write one JSON and one Markdown report per root

When the LLM narrative is enabled, --rps paces the audits so the batch
stays inside the provider's rate limit.

Example:
  treelint batch roots.txt
  treelint batch roots.txt --concurrency 8 --output-dir ./reports
  treelint batch roots.txt --llm openai --rps 0.5 --burst 1`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: from config)")
	batchCmd.Flags().IntVar(&batchGenerations, "generations", 0, "ancestor generations per audit (default: from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for reports (default: from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&batchRPS, "rps", 0, "audits per second across the batch (0 = unpaced)")
	batchCmd.Flags().IntVar(&batchBurst, "burst", 0, "burst size for the pacing limiter")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	// Build configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.IncludeFooter = !noFooter
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if llmEnabled {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Treelint Batch Audit\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Cache:        %s\n", cfg.Store.Path)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if llmEnabled {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmProvider, llmModel)
	}
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	a := analyzer.New(st, cfg)
	processor := worker.NewBatchProcessor(a, cfg.Concurrency.Workers, batchRPS, batchBurst)

	fmt.Fprintf(os.Stderr, "⚙️  Auditing roots with %d workers...\n", cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file, batchGenerations)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Audited %d root(s)\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")

	// Render results
	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.RootID, result.Error)
			continue
		}

		successCount++

		// Generate output file names
		base := report.AuditFilename(sanitizeFilename(result.RootID), result.Report.GeneratedAt)
		jsonPath := filepath.Join(cfg.Output.Dir, base+".json")
		mdPath := filepath.Join(cfg.Output.Dir, base+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.RootID, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.RootID, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%d critical, %d warnings, %d duplicates)\n",
			result.RootID, result.Report.CriticalCount, result.Report.WarningCount, len(result.Report.Duplicates))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d roots\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename keeps a person id safe to embed in a file name.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
