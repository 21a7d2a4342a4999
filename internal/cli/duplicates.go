package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/report"
)

var (
	dupThreshold float64
	dupJSON      string
)

// duplicatesCmd represents the duplicates command
var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find likely duplicate person records",
	Long: `Duplicates scans the whole research cache for pairs of persons that
probably describe the same individual. Candidates are blocked on exact
normalized names, scored on weighted name, date, place and kinship
agreement, and kept when the score reaches the threshold.

Example:
  treelint duplicates
  treelint duplicates --threshold 0.9
  treelint duplicates --json duplicates.json`,
	Args: cobra.NoArgs,
	RunE: runDuplicates,
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)

	duplicatesCmd.Flags().Float64Var(&dupThreshold, "threshold", 0, "minimum similarity score (default: from config)")
	duplicatesCmd.Flags().StringVar(&dupJSON, "json", "", "also write the pairs as JSON to this path")
}

func runDuplicates(cmd *cobra.Command, args []string) error {
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
	pairs, err := a.FindLikelyDuplicates(dupThreshold)
	if err != nil {
		return fmt.Errorf("find duplicates: %w", err)
	}

	if len(pairs) == 0 {
		fmt.Println("No likely duplicate pairs found.")
	} else {
		fmt.Printf("Found %d likely duplicate pair(s):\n\n", len(pairs))
		for _, p := range pairs {
			fmt.Printf("  %.3f  %s (%s)  and  %s (%s)\n",
				p.Score, p.Person1.Name, p.Person1.ID, p.Person2.Name, p.Person2.ID)
		}
	}

	if dupJSON != "" {
		renderer := report.NewRenderer(cfg.Output.IncludeFooter)
		if err := renderer.RenderJSON(pairs, dupJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", dupJSON)
		}
	}

	return nil
}
