package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/report"
)

var (
	clusterThreshold float64
	clustersMD       string
)

// clustersCmd represents the clusters command
var clustersCmd = &cobra.Command{
	Use:   "clusters [surname]",
	Short: "Group phonetically similar person names",
	Long: `Clusters groups persons whose names sound alike, the wide net that
catches spelling drift a strict duplicate scan misses. Persons are
blocked on phonetic surname codes, connected by pairwise similarity at
or above the threshold, and reported as components around a
representative member.

An optional surname argument restricts the scan to persons whose
surname contains it (case-insensitive).

Example:
  treelint clusters
  treelint clusters Smith
  treelint clusters Smith --threshold 0.7 --md clusters.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClusters,
}

func init() {
	rootCmd.AddCommand(clustersCmd)

	clustersCmd.Flags().Float64Var(&clusterThreshold, "threshold", 0, "minimum similarity score (default: from config)")
	clustersCmd.Flags().StringVar(&clustersMD, "md", "", "also write the clusters as Markdown to this path")
}

func runClusters(cmd *cobra.Command, args []string) error {
	surname := ""
	if len(args) == 1 {
		surname = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	threshold := clusterThreshold
	if threshold <= 0 {
		threshold = cfg.Analysis.ClusterThreshold
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	a := analyzer.New(st, cfg)
	clusters, err := a.DetectClusters(surname, threshold)
	if err != nil {
		return fmt.Errorf("detect clusters: %w", err)
	}

	if len(clusters) == 0 {
		fmt.Println("No name clusters found.")
	} else {
		fmt.Printf("Found %d cluster(s) at threshold %.2f:\n\n", len(clusters), threshold)
		for i, c := range clusters {
			fmt.Printf("Cluster %d: %s (%d persons)\n", i+1, c.RepresentativeName, c.Size)
			for _, m := range c.Members {
				fmt.Printf("  %.3f  %s (%s)\n", m.Score, m.Name, m.PersonID)
			}
			fmt.Println()
		}
	}

	if clustersMD != "" {
		renderer := report.NewRenderer(cfg.Output.IncludeFooter)
		if err := renderer.RenderClusters(surname, threshold, clusters, clustersMD); err != nil {
			return fmt.Errorf("write Markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", clustersMD)
		}
	}

	return nil
}
