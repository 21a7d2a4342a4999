package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/model"
)

var timelineMinSeverity string

// timelineCmd represents the timeline command
var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Validate every person's timeline for plausibility",
	Long: `Timeline checks every person in the research cache for dates that
cannot be right: death before birth, implausible age at death, parents
too young or too old at a child's birth. Persons without usable dates
are skipped.

Example:
  treelint timeline
  treelint timeline --min-severity warning`,
	Args: cobra.NoArgs,
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().StringVar(&timelineMinSeverity, "min-severity", "", "lowest severity to report (info, warning, critical)")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	minSeverity, err := model.ParseSeverity(timelineMinSeverity)
	if err != nil {
		return err
	}

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
	issues, err := a.ValidateAllTimelines(minSeverity)
	if err != nil {
		return fmt.Errorf("validate timelines: %w", err)
	}

	if len(issues) == 0 {
		fmt.Printf("No timeline issues at or above %s severity.\n", minSeverity)
		return nil
	}

	fmt.Printf("Found %d timeline issue(s):\n\n", len(issues))
	for _, issue := range issues {
		fmt.Printf("  [%-8s] %-26s %s\n", issue.Severity, issue.Type, issue.Description)
	}
	return nil
}
