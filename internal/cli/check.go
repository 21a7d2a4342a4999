package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/model"
)

var (
	checkTree       bool
	checkMaxPersons int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <person-id>",
	Short: "Check one person's relationships and timeline",
	Long: `Check runs the graph integrity checks for a single person: ancestry
cycles through them, suspect parent structure, concurrent marriages,
and timeline plausibility.

With --tree the person is treated as a root and the connected tree is
swept instead, breadth-first over parents, children and spouses, up to
the person cap.

Example:
  treelint check KWRT-123
  treelint check KWRT-123 --tree
  treelint check KWRT-123 --tree --max-persons 500`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkTree, "tree", false, "sweep the connected tree from this person")
	checkCmd.Flags().IntVar(&checkMaxPersons, "max-persons", 0, "cap on persons visited in a tree sweep (default: from config)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	personID := args[0]

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

	if checkTree {
		result, err := a.ValidateTree(personID, checkMaxPersons)
		if err != nil {
			return fmt.Errorf("validate tree: %w", err)
		}
		fmt.Printf("Checked %d persons reachable from %s", result.PersonsChecked, personID)
		if result.Truncated {
			fmt.Printf(" (capped)")
		}
		fmt.Println()
		printIssues(result.Issues)
		return nil
	}

	issues, err := a.CheckPerson(personID)
	if err != nil {
		return fmt.Errorf("check person: %w", err)
	}
	timeline, err := a.ValidatePersonTimeline(personID)
	if err != nil {
		return fmt.Errorf("validate timeline: %w", err)
	}
	issues = append(issues, timeline...)
	printIssues(issues)
	return nil
}

func printIssues(issues []model.Issue) {
	if len(issues) == 0 {
		fmt.Println("No issues found.")
		return
	}
	fmt.Printf("Found %d issue(s):\n\n", len(issues))
	for _, issue := range issues {
		fmt.Printf("  [%-8s] %-30s %s\n", issue.Severity, issue.Type, issue.Description)
	}
}
