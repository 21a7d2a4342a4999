package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/report"
)

var compareJSON string

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <person-id> <person-id>",
	Short: "Score two persons for similarity, factor by factor",
	Long: `Compare scores two specific persons against each other and prints
the contribution of every factor, so a borderline duplicate can be
judged on evidence instead of a bare number.

Example:
  treelint compare KWRT-123 KWRT-456
  treelint compare KWRT-123 KWRT-456 --json comparison.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareJSON, "json", "", "also write the comparison as JSON to this path")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	a := analyzer.New(st, cfg)
	comparison, err := a.ComparePersons(args[0], args[1])
	if err != nil {
		return fmt.Errorf("compare persons: %w", err)
	}

	fmt.Printf("%s (%s)  vs  %s (%s)\n\n",
		comparison.Person1Name, comparison.Person1ID,
		comparison.Person2Name, comparison.Person2ID)
	for _, f := range comparison.Factors {
		fmt.Printf("  %-16s %.3f of %.2f  %s\n", f.Name, f.Contribution, f.Weight, f.Detail)
	}
	fmt.Printf("\nTotal score: %.3f\n", comparison.Score)

	if compareJSON != "" {
		renderer := report.NewRenderer(cfg.Output.IncludeFooter)
		if err := renderer.RenderJSON(comparison, compareJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", compareJSON)
		}
	}

	return nil
}
