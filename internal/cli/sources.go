package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
)

var (
	sourcesGenerations int
	sourcesLimit       int
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources <person-id>",
	Short: "Analyze source coverage and rank research targets",
	Long: `Sources reports how well one person's facts are backed by cited
sources, then walks their ancestor line and ranks every ancestor by
how badly they need research: closer generations, missing vital
events, and sourceless records score highest.

Example:
  treelint sources KWRT-123
  treelint sources KWRT-123 --generations 6 --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)

	sourcesCmd.Flags().IntVar(&sourcesGenerations, "generations", 0, "ancestor generations to rank (default: from config)")
	sourcesCmd.Flags().IntVar(&sourcesLimit, "limit", 10, "research targets to print (0 = all)")
}

func runSources(cmd *cobra.Command, args []string) error {
	personID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	generations := sourcesGenerations
	if generations <= 0 {
		generations = cfg.Analysis.MaxGenerations
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	a := analyzer.New(st, cfg)

	coverage, err := a.AnalyzeCoverage(personID)
	if err != nil {
		return fmt.Errorf("analyze coverage: %w", err)
	}
	if coverage == nil {
		return fmt.Errorf("person %s not found", personID)
	}

	fmt.Printf("Source coverage for %s (%s):\n\n", coverage.PersonName, coverage.PersonID)
	fmt.Printf("  Sources attached:    %d\n", coverage.TotalSources)
	fmt.Printf("  Facts recorded:      %d\n", coverage.TotalFacts)
	fmt.Printf("  Vital sourced:       %d of %d\n",
		coverage.VitalWithSources, coverage.VitalWithSources+coverage.VitalWithoutSources)
	fmt.Printf("  Important sourced:   %d of %d\n",
		coverage.ImportantWithSources, coverage.ImportantWithSources+coverage.ImportantWithoutSources)
	if len(coverage.MissingVitalEvents) > 0 {
		fmt.Printf("  Missing vital:       %s\n", strings.Join(coverage.MissingVitalEvents, ", "))
	}
	if len(coverage.MissingImportantEvents) > 0 {
		fmt.Printf("  Missing important:   %s\n", strings.Join(coverage.MissingImportantEvents, ", "))
	}

	priorities, err := a.PrioritizeResearch(personID, generations)
	if err != nil {
		return fmt.Errorf("prioritize research: %w", err)
	}

	if len(priorities) == 0 {
		fmt.Printf("\nEvery ancestor within %d generations has adequate source coverage.\n", generations)
		return nil
	}

	shown := len(priorities)
	if sourcesLimit > 0 && shown > sourcesLimit {
		shown = sourcesLimit
	}
	fmt.Printf("\nTop research targets within %d generations (%d of %d):\n\n", generations, shown, len(priorities))
	for i, p := range priorities[:shown] {
		fmt.Printf("  %2d. [%3d] %s (%s), generation %d, %d source(s)\n",
			i+1, p.Score, p.PersonName, p.PersonID, p.Generation, p.TotalSources)
	}
	return nil
}
