package validate

import (
	"strings"
	"testing"

	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(":memory:", store.DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.InitSchema(); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return s
}

func addPerson(t *testing.T, s *store.Store, id, displayName, gender string) {
	t.Helper()
	if err := s.UpsertPerson(id, displayName, gender); err != nil {
		t.Fatalf("Failed to insert person %s: %v", id, err)
	}
}

func addEdge(t *testing.T, s *store.Store, parentID, childID string) {
	t.Helper()
	if err := s.AddParentChild(parentID, childID, ""); err != nil {
		t.Fatalf("Failed to add edge %s -> %s: %v", parentID, childID, err)
	}
}

func TestDetectCircularAncestry(t *testing.T) {
	s := newTestStore(t)
	addPerson(t, s, "T-A", "Root Person", "")
	addPerson(t, s, "T-B", "Parent Person", "")
	addEdge(t, s, "T-B", "T-A") // T-B is T-A's parent
	addEdge(t, s, "T-A", "T-B") // and T-A is T-B's parent

	checker := NewRelationshipChecker(s, 0)
	issues, err := checker.DetectCircularAncestry("T-A")
	if err != nil {
		t.Fatalf("DetectCircularAncestry failed: %v", err)
	}

	if len(issues) != 1 {
		t.Fatalf("Expected exactly 1 issue, got %d: %+v", len(issues), issues)
	}
	issue := issues[0]
	if issue.Type != model.IssueCircularAncestry || issue.Severity != model.SeverityCritical {
		t.Errorf("Unexpected issue kind: %+v", issue)
	}
	want := []string{"T-A", "T-B", "T-A"}
	if len(issue.Cycle) != len(want) {
		t.Fatalf("Unexpected cycle: %v", issue.Cycle)
	}
	for i := range want {
		if issue.Cycle[i] != want[i] {
			t.Errorf("Cycle[%d] = %s, want %s", i, issue.Cycle[i], want[i])
		}
	}
	if !strings.Contains(issue.Description, "T-A -> T-B -> T-A") {
		t.Errorf("Description does not spell out the cycle: %q", issue.Description)
	}
}

func TestSelfParentIsACycle(t *testing.T) {
	s := newTestStore(t)
	addPerson(t, s, "T-X", "Own Parent", "")
	addEdge(t, s, "T-X", "T-X")

	checker := NewRelationshipChecker(s, 0)
	issues, err := checker.DetectCircularAncestry("T-X")
	if err != nil {
		t.Fatalf("DetectCircularAncestry failed: %v", err)
	}
	if len(issues) != 1 || len(issues[0].Cycle) != 2 {
		t.Fatalf("Expected a self-cycle, got %+v", issues)
	}
}

func TestAcyclicAncestryIsClean(t *testing.T) {
	s := newTestStore(t)
	addPerson(t, s, "T-A", "Child", "")
	addPerson(t, s, "T-B", "Parent", "")
	addPerson(t, s, "T-C", "Grandparent", "")
	addEdge(t, s, "T-B", "T-A")
	addEdge(t, s, "T-C", "T-B")

	checker := NewRelationshipChecker(s, 0)
	issues, err := checker.DetectCircularAncestry("T-A")
	if err != nil {
		t.Fatalf("DetectCircularAncestry failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("Expected no issues for an acyclic chain, got %+v", issues)
	}
}

func TestCycleBeyondDepthBoundGoesUnreported(t *testing.T) {
	s := newTestStore(t)
	ids := []string{"D-0", "D-1", "D-2", "D-3"}
	for _, id := range ids {
		addPerson(t, s, id, "Person "+id, "")
	}
	for i := 1; i < len(ids); i++ {
		addEdge(t, s, ids[i], ids[i-1])
	}
	addEdge(t, s, ids[0], ids[len(ids)-1]) // closes the loop

	shallow := NewRelationshipChecker(s, 2)
	issues, err := shallow.DetectCircularAncestry("D-0")
	if err != nil {
		t.Fatalf("DetectCircularAncestry failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("Expected cycle past the bound to go unreported, got %+v", issues)
	}

	deep := NewRelationshipChecker(s, 0)
	issues, err = deep.DetectCircularAncestry("D-0")
	if err != nil {
		t.Fatalf("DetectCircularAncestry failed: %v", err)
	}
	if len(issues) != 1 {
		t.Errorf("Expected cycle within default bound, got %+v", issues)
	}
}

func TestCheckStructure(t *testing.T) {
	s := newTestStore(t)
	addPerson(t, s, "T-C", "Crowded Child", "")
	addPerson(t, s, "T-M1", "Mother One", model.GenderFemale)
	addPerson(t, s, "T-M2", "Mother Two", model.GenderFemale)
	addPerson(t, s, "T-F1", "Father One", model.GenderMale)
	for _, parent := range []string{"T-M1", "T-M2", "T-F1"} {
		addEdge(t, s, parent, "T-C")
	}

	checker := NewRelationshipChecker(s, 0)
	issues, err := checker.CheckStructure("T-C")
	if err != nil {
		t.Fatalf("CheckStructure failed: %v", err)
	}

	types := make(map[string]model.Severity)
	for _, issue := range issues {
		types[issue.Type] = issue.Severity
	}
	if sev, ok := types[model.IssueTooManyParents]; !ok || sev != model.SeverityWarning {
		t.Errorf("Expected too_many_parents warning, got %+v", issues)
	}
	if sev, ok := types[model.IssueMultipleMothers]; !ok || sev != model.SeverityWarning {
		t.Errorf("Expected multiple_mothers warning, got %+v", issues)
	}
	if _, ok := types[model.IssueMultipleFathers]; ok {
		t.Errorf("One father must not trigger multiple_fathers: %+v", issues)
	}
}

func TestCheckStructureConcurrentMarriages(t *testing.T) {
	s := newTestStore(t)
	addPerson(t, s, "T-H", "Busy Spouse", model.GenderMale)
	addPerson(t, s, "T-W1", "First Wife", model.GenderFemale)
	addPerson(t, s, "T-W2", "Second Wife", model.GenderFemale)
	addPerson(t, s, "T-W3", "Undated Wife", model.GenderFemale)
	if err := s.AddCouple("T-H", "T-W1", "1 Jan 1900", ""); err != nil {
		t.Fatalf("Failed to add couple: %v", err)
	}
	if err := s.AddCouple("T-H", "T-W2", "1 Jan 1910", ""); err != nil {
		t.Fatalf("Failed to add couple: %v", err)
	}
	if err := s.AddCouple("T-H", "T-W3", "", ""); err != nil {
		t.Fatalf("Failed to add couple: %v", err)
	}

	checker := NewRelationshipChecker(s, 0)
	issues, err := checker.CheckStructure("T-H")
	if err != nil {
		t.Fatalf("CheckStructure failed: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %+v", issues)
	}
	issue := issues[0]
	if issue.Type != model.IssueConcurrentMarriages || issue.Severity != model.SeverityInfo {
		t.Errorf("Unexpected issue: %+v", issue)
	}
	if !strings.Contains(issue.Description, "3 spouses") {
		t.Errorf("Description should count all spouses: %q", issue.Description)
	}

	// A single dated marriage among several is not a finding.
	onlyOne, err := checker.CheckStructure("T-W1")
	if err != nil {
		t.Fatalf("CheckStructure failed: %v", err)
	}
	if len(onlyOne) != 0 {
		t.Errorf("Expected no issues for one dated marriage, got %+v", onlyOne)
	}
}

// seedFamilyWithCycle builds child FAM-C with parents FAM-F and FAM-M,
// grandparents FAM-GF and FAM-GM above FAM-F, and a planted edge making
// FAM-C the parent of FAM-GF.
func seedFamilyWithCycle(t *testing.T, s *store.Store) {
	t.Helper()
	addPerson(t, s, "FAM-C", "Child", model.GenderMale)
	addPerson(t, s, "FAM-F", "Father", model.GenderMale)
	addPerson(t, s, "FAM-M", "Mother", model.GenderFemale)
	addPerson(t, s, "FAM-GF", "Grandfather", model.GenderMale)
	addPerson(t, s, "FAM-GM", "Grandmother", model.GenderFemale)
	addEdge(t, s, "FAM-F", "FAM-C")
	addEdge(t, s, "FAM-M", "FAM-C")
	addEdge(t, s, "FAM-GF", "FAM-F")
	addEdge(t, s, "FAM-GM", "FAM-F")
	addEdge(t, s, "FAM-C", "FAM-GF")
	if err := s.AddCouple("FAM-F", "FAM-M", "", ""); err != nil {
		t.Fatalf("Failed to add couple: %v", err)
	}
}

func TestValidateTreeReportsCycleOnce(t *testing.T) {
	s := newTestStore(t)
	seedFamilyWithCycle(t, s)

	checker := NewRelationshipChecker(s, 0)
	result, err := checker.ValidateTree("FAM-C", 0)
	if err != nil {
		t.Fatalf("ValidateTree failed: %v", err)
	}

	if result.PersonsChecked != 5 {
		t.Errorf("Expected 5 persons checked, got %d", result.PersonsChecked)
	}
	if result.Truncated {
		t.Error("Sweep must not truncate under the default cap")
	}

	var cycles []model.Issue
	for _, issue := range result.Issues {
		if issue.Type == model.IssueCircularAncestry {
			cycles = append(cycles, issue)
		}
	}
	if len(cycles) != 1 {
		t.Fatalf("Expected the cycle reported once, got %d: %+v", len(cycles), cycles)
	}
	desc := cycles[0].Description
	for _, id := range []string{"FAM-C", "FAM-F", "FAM-GF"} {
		if !strings.Contains(desc, id) {
			t.Errorf("Cycle description missing %s: %q", id, desc)
		}
	}
}

func TestValidateTreeTruncates(t *testing.T) {
	s := newTestStore(t)
	prev := ""
	for _, id := range []string{"L-0", "L-1", "L-2", "L-3", "L-4"} {
		addPerson(t, s, id, "Link "+id, "")
		if prev != "" {
			addEdge(t, s, id, prev)
		}
		prev = id
	}

	checker := NewRelationshipChecker(s, 0)
	result, err := checker.ValidateTree("L-0", 3)
	if err != nil {
		t.Fatalf("ValidateTree failed: %v", err)
	}
	if result.PersonsChecked != 3 {
		t.Errorf("Expected 3 persons checked, got %d", result.PersonsChecked)
	}
	if !result.Truncated {
		t.Error("Expected the sweep to report truncation")
	}
}
