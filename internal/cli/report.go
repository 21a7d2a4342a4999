package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/report"
)

var (
	reportGenerations int
	reportThreshold   float64
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write analysis reports as Markdown files",
	Long: `Report renders analysis results as Markdown documents in the output
directory, the same documents the audit command embeds.

Example:
  treelint report profile KWRT-123
  treelint report research KWRT-123 --generations 6
  treelint report clusters Smith`,
}

// reportProfileCmd represents the report profile command
var reportProfileCmd = &cobra.Command{
	Use:   "profile <person-id>",
	Short: "Write a person profile report",
	Long: `Profile writes everything recorded about one person: name variants,
facts, parents, spouses, children and attached sources, each with a
link back to the tree.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportProfile,
}

// reportResearchCmd represents the report research command
var reportResearchCmd = &cobra.Command{
	Use:   "research <root-person-id>",
	Short: "Write a research leads report",
	Long: `Research writes the root's profile and source coverage together with
ranked research targets among their ancestors, plus prefilled record
search links.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportResearch,
}

// reportClustersCmd represents the report clusters command
var reportClustersCmd = &cobra.Command{
	Use:   "clusters [surname]",
	Short: "Write a name clusters report",
	Long:  `Clusters writes the phonetic name-cluster analysis as a document.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportClusters,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportProfileCmd)
	reportCmd.AddCommand(reportResearchCmd)
	reportCmd.AddCommand(reportClustersCmd)

	reportCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "output directory (default: from config)")
	reportCmd.PersistentFlags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	reportResearchCmd.Flags().IntVar(&reportGenerations, "generations", 0, "ancestor generations to rank (default: from config)")
	reportClustersCmd.Flags().Float64Var(&reportThreshold, "threshold", 0, "minimum similarity score (default: from config)")
}

// reportSetup opens the store and resolves the output directory shared
// by every report subcommand.
func reportSetup() (*model.Config, *analyzer.Analyzer, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.Output.IncludeFooter = !noFooter
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("create output directory: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, analyzer.New(st, cfg), func() { st.Close() }, nil
}

func runReportProfile(cmd *cobra.Command, args []string) error {
	personID := args[0]

	cfg, a, closeStore, err := reportSetup()
	if err != nil {
		return err
	}
	defer closeStore()

	profile, err := a.Profile(personID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return fmt.Errorf("person %s not found", personID)
	}

	path := filepath.Join(cfg.Output.Dir, report.ProfileFilename(sanitizeFilename(personID))+".md")
	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderProfile(profile, path); err != nil {
		return fmt.Errorf("write profile report: %w", err)
	}

	fmt.Printf("✓ Wrote %s\n", path)
	return nil
}

func runReportResearch(cmd *cobra.Command, args []string) error {
	rootID := args[0]

	cfg, a, closeStore, err := reportSetup()
	if err != nil {
		return err
	}
	defer closeStore()

	leads, err := a.ResearchLeads(rootID, reportGenerations)
	if err != nil {
		return fmt.Errorf("research leads: %w", err)
	}

	path := filepath.Join(cfg.Output.Dir, report.ResearchFilename(sanitizeFilename(rootID), leads.GeneratedAt)+".md")
	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderResearch(leads, path); err != nil {
		return fmt.Errorf("write research report: %w", err)
	}

	fmt.Printf("✓ Wrote %s\n", path)
	return nil
}

func runReportClusters(cmd *cobra.Command, args []string) error {
	surname := ""
	if len(args) == 1 {
		surname = args[0]
	}

	cfg, a, closeStore, err := reportSetup()
	if err != nil {
		return err
	}
	defer closeStore()

	threshold := reportThreshold
	if threshold <= 0 {
		threshold = cfg.Analysis.ClusterThreshold
	}
	clusters, err := a.DetectClusters(surname, threshold)
	if err != nil {
		return fmt.Errorf("detect clusters: %w", err)
	}

	path := filepath.Join(cfg.Output.Dir, report.ClustersFilename(sanitizeFilename(surname), time.Now().UTC())+".md")
	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderClusters(surname, threshold, clusters, path); err != nil {
		return fmt.Errorf("write clusters report: %w", err)
	}

	fmt.Printf("✓ Wrote %s\n", path)
	return nil
}
