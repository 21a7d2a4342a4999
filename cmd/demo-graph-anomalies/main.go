// Demo program for the graph anomaly detectors.
// Plants known defects in a throwaway cache and shows each check finding them.
package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/store"
)

func main() {
	fmt.Println("=== Graph Anomaly Detection Demo ===")
	fmt.Println()

	st, err := store.Open(":memory:", store.DefaultOptions())
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()
	if err := st.InitSchema(); err != nil {
		log.Fatalf("init schema: %v", err)
	}
	seed(st)

	a := analyzer.New(st, model.DefaultConfig())

	fmt.Println("Planted: a three-person ancestry loop, a twin pair, and a death before birth.")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println()

	fmt.Println("Relationship check for LOOP-1:")
	issues, err := a.CheckPerson("LOOP-1")
	if err != nil {
		log.Fatalf("check person: %v", err)
	}
	if len(issues) == 0 {
		fmt.Println("  ✓ No issues detected")
	}
	for _, issue := range issues {
		fmt.Printf("  ⚠️  [%s] %s\n", issue.Severity, issue.Description)
		if len(issue.Cycle) > 0 {
			fmt.Printf("     Cycle: %s\n", strings.Join(issue.Cycle, " -> "))
		}
	}
	fmt.Println()

	fmt.Println("Duplicate scan:")
	pairs, err := a.FindLikelyDuplicates(0)
	if err != nil {
		log.Fatalf("find duplicates: %v", err)
	}
	if len(pairs) == 0 {
		fmt.Println("  ✓ No likely duplicates detected")
	}
	for _, p := range pairs {
		fmt.Printf("  ⚠️  %.3f  %s (%s)  and  %s (%s)\n",
			p.Score, p.Person1.Name, p.Person1.ID, p.Person2.Name, p.Person2.ID)
	}
	fmt.Println()

	fmt.Println("Timeline validation:")
	timeline, err := a.ValidateAllTimelines(model.SeverityInfo)
	if err != nil {
		log.Fatalf("validate timelines: %v", err)
	}
	if len(timeline) == 0 {
		fmt.Println("  ✓ No timeline issues detected")
	}
	for _, issue := range timeline {
		fmt.Printf("  ⚠️  [%s] %s\n", issue.Severity, issue.Description)
	}

	fmt.Println()
	fmt.Println("=== Demo Complete ===")
}

func seed(st *store.Store) {
	// An ancestry loop: each Hollow fathers the next, and the last
	// fathers the first.
	must(st.UpsertPerson("LOOP-1", "Alder Hollow", model.GenderMale))
	must(st.UpsertPerson("LOOP-2", "Bram Hollow", model.GenderMale))
	must(st.UpsertPerson("LOOP-3", "Cormac Hollow", model.GenderMale))
	must(st.AddParentChild("LOOP-1", "LOOP-2", "Father"))
	must(st.AddParentChild("LOOP-2", "LOOP-3", "Father"))
	must(st.AddParentChild("LOOP-3", "LOOP-1", "Father"))

	// Twin records agreeing on name, dates, place and parents.
	must(st.UpsertPerson("DUP-F", "Josiah Turner", model.GenderMale))
	must(st.UpsertPerson("DUP-M", "Hannah Turner", model.GenderFemale))
	for _, id := range []string{"DUP-1", "DUP-2"} {
		must(st.UpsertPerson(id, "William Turner", model.GenderMale))
		must(st.AddName(id, "", "William", "Turner"))
		birth, death := 18310400, 18990200
		must(st.AddFact(id, model.FactBirth, &birth, "April 1831", "Dorset, England"))
		must(st.AddFact(id, model.FactDeath, &death, "February 1899", ""))
		must(st.AddParentChild("DUP-F", id, "Father"))
		must(st.AddParentChild("DUP-M", id, "Mother"))
	}

	// A timeline that cannot be right: died ten years before birth.
	must(st.UpsertPerson("TIME-1", "Edith Crane", model.GenderFemale))
	birth, death := 18500101, 18400101
	must(st.AddFact("TIME-1", model.FactBirth, &birth, "", ""))
	must(st.AddFact("TIME-1", model.FactDeath, &death, "", ""))
}

func must(err error) {
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
}
