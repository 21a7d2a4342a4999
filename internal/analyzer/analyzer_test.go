package analyzer

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:", store.DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return s
}

func addPerson(t *testing.T, s *store.Store, id, name, gender string) {
	t.Helper()
	if err := s.UpsertPerson(id, name, gender); err != nil {
		t.Fatalf("UpsertPerson %s: %v", id, err)
	}
}

func addName(t *testing.T, s *store.Store, id, given, surname string) {
	t.Helper()
	if err := s.AddName(id, "", given, surname); err != nil {
		t.Fatalf("AddName %s: %v", id, err)
	}
}

func addFact(t *testing.T, s *store.Store, id, factType string, dateSort int, place string) {
	t.Helper()
	var ds *int
	if dateSort != 0 {
		ds = &dateSort
	}
	if err := s.AddFact(id, factType, ds, "", place); err != nil {
		t.Fatalf("AddFact %s %s: %v", id, factType, err)
	}
}

// seedAuditFixture builds a small cache with one anomaly of each kind:
// a sparsely sourced ancestor line, a rich duplicate twin pair, and a
// person who dies before being born.
func seedAuditFixture(t *testing.T, s *store.Store) {
	t.Helper()

	addPerson(t, s, "R-1", "Root Example", model.GenderMale)
	addName(t, s, "R-1", "Root", "Example")
	addFact(t, s, "R-1", model.FactBirth, 19500101, "")
	if err := s.AddSource("S-R", "Birth certificate", ""); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if err := s.AddSourceRef("R-1", "S-R", model.FactBirth); err != nil {
		t.Fatalf("AddSourceRef: %v", err)
	}

	addPerson(t, s, "F-1", "Frank Example", model.GenderMale)
	addFact(t, s, "F-1", model.FactBirth, 19200101, "")

	addPerson(t, s, "M-1", "Mary Example", model.GenderFemale)
	addFact(t, s, "M-1", model.FactBirth, 19220101, "")
	if err := s.AddSource("S-M", "Parish register", ""); err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if err := s.AddSourceRef("M-1", "S-M", model.FactBirth); err != nil {
		t.Fatalf("AddSourceRef: %v", err)
	}

	for _, edge := range [][3]string{
		{"F-1", "R-1", "Father"},
		{"M-1", "R-1", "Mother"},
	} {
		if err := s.AddParentChild(edge[0], edge[1], edge[2]); err != nil {
			t.Fatalf("AddParentChild %v: %v", edge, err)
		}
	}
	if err := s.AddCouple("F-1", "M-1", "", ""); err != nil {
		t.Fatalf("AddCouple: %v", err)
	}

	// Twin records that agree on every scored factor.
	addPerson(t, s, "F-D", "Robert Doe", model.GenderMale)
	addPerson(t, s, "M-D", "Mary Doe", model.GenderFemale)
	addPerson(t, s, "W-D", "Wilma Doe", model.GenderFemale)
	for _, id := range []string{"D-1", "D-2"} {
		addPerson(t, s, id, "John Doe", model.GenderMale)
		addName(t, s, id, "John", "Doe")
		addFact(t, s, id, model.FactBirth, 19500101, "California")
		addFact(t, s, id, model.FactDeath, 20100315, "")
		if err := s.AddParentChild("F-D", id, "Father"); err != nil {
			t.Fatalf("AddParentChild: %v", err)
		}
		if err := s.AddParentChild("M-D", id, "Mother"); err != nil {
			t.Fatalf("AddParentChild: %v", err)
		}
		if err := s.AddCouple(id, "W-D", "", ""); err != nil {
			t.Fatalf("AddCouple: %v", err)
		}
	}

	addPerson(t, s, "T-X", "Troubled Xavier", model.GenderMale)
	addFact(t, s, "T-X", model.FactBirth, 19000101, "")
	addFact(t, s, "T-X", model.FactDeath, 18900101, "")
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	s := newTestStore(t)
	seedAuditFixture(t, s)
	return New(s, model.DefaultConfig())
}

func TestRunAudit(t *testing.T) {
	a := newTestAnalyzer(t)

	report, err := a.RunAudit(context.Background(), "R-1", 2)
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}

	if report.RunID == "" {
		t.Error("Expected a run id")
	}
	if report.RootID != "R-1" || report.Generations != 2 {
		t.Errorf("Unexpected root/generations: %s/%d", report.RootID, report.Generations)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected a timestamp")
	}

	if report.CriticalCount != 1 || report.WarningCount != 0 {
		t.Errorf("Expected 1 critical and 0 warnings, got %d and %d", report.CriticalCount, report.WarningCount)
	}
	if len(report.TimelineIssues) != 1 || report.TimelineIssues[0].Type != model.IssueDeathBeforeBirth {
		t.Fatalf("Expected one death_before_birth finding, got %+v", report.TimelineIssues)
	}
	if report.TimelineIssues[0].PersonID != "T-X" {
		t.Errorf("Expected the finding on T-X, got %s", report.TimelineIssues[0].PersonID)
	}

	if report.Tree.PersonsChecked != 3 {
		t.Errorf("Expected 3 persons in the tree sweep, got %d", report.Tree.PersonsChecked)
	}
	if len(report.Tree.Issues) != 0 {
		t.Errorf("Expected a clean tree, got %+v", report.Tree.Issues)
	}

	if len(report.Priorities) != 3 {
		t.Fatalf("Expected 3 research priorities, got %d", len(report.Priorities))
	}
	if report.Priorities[0].PersonID != "F-1" {
		t.Errorf("Expected the sourceless parent ranked first, got %s", report.Priorities[0].PersonID)
	}

	if len(report.Duplicates) != 1 {
		t.Fatalf("Expected one duplicate pair, got %d", len(report.Duplicates))
	}
	pair := report.Duplicates[0]
	if pair.Person1.ID != "D-1" || pair.Person2.ID != "D-2" {
		t.Errorf("Unexpected duplicate pair: %+v", pair)
	}

	if report.LLM != nil {
		t.Error("Expected no LLM summary when no provider is configured")
	}
}

func TestRunAuditUnknownRoot(t *testing.T) {
	a := newTestAnalyzer(t)

	_, err := a.RunAudit(context.Background(), "NOPE-1", 2)
	if err == nil {
		t.Fatal("Expected error for unknown root")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected a not-found error, got %v", err)
	}
}

func TestComparePersons(t *testing.T) {
	a := newTestAnalyzer(t)

	cmp, err := a.ComparePersons("D-1", "D-2")
	if err != nil {
		t.Fatalf("ComparePersons: %v", err)
	}
	if cmp.Person1ID != "D-1" || cmp.Person2ID != "D-2" {
		t.Errorf("Unexpected ids: %s vs %s", cmp.Person1ID, cmp.Person2ID)
	}
	if math.Abs(cmp.Score-0.95) > 1e-9 {
		t.Errorf("Expected twin score 0.95, got %f", cmp.Score)
	}
	if len(cmp.Factors) == 0 {
		t.Error("Expected a factor breakdown")
	}

	if _, err := a.ComparePersons("D-1", "NOPE-1"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not-found error for unknown person, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	a := newTestAnalyzer(t)

	profile, err := a.Profile("R-1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile == nil {
		t.Fatal("Expected a profile")
	}
	if profile.Person.DisplayName != "Root Example" {
		t.Errorf("Unexpected person: %+v", profile.Person)
	}
	if len(profile.Names) != 1 || len(profile.Facts) != 1 || len(profile.Parents) != 2 {
		t.Errorf("Unexpected profile sections: %d names, %d facts, %d parents",
			len(profile.Names), len(profile.Facts), len(profile.Parents))
	}
	if len(profile.Sources) != 1 {
		t.Errorf("Expected 1 source, got %d", len(profile.Sources))
	}

	missing, err := a.Profile("NOPE-1")
	if err != nil {
		t.Fatalf("Profile unknown: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil profile for unknown person, got %+v", missing)
	}
}

func TestResearchLeads(t *testing.T) {
	a := newTestAnalyzer(t)

	leads, err := a.ResearchLeads("R-1", 0)
	if err != nil {
		t.Fatalf("ResearchLeads: %v", err)
	}
	if leads.Generations != 4 {
		t.Errorf("Expected configured default of 4 generations, got %d", leads.Generations)
	}
	if leads.Profile.Person.ID != "R-1" {
		t.Errorf("Unexpected profile root: %+v", leads.Profile.Person)
	}
	if leads.Coverage == nil || leads.Coverage.TotalSources != 1 {
		t.Errorf("Unexpected coverage: %+v", leads.Coverage)
	}
	if len(leads.Priorities) != 3 || leads.Priorities[0].PersonID != "F-1" {
		t.Errorf("Unexpected priorities: %+v", leads.Priorities)
	}

	if _, err := a.ResearchLeads("NOPE-1", 2); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not-found error for unknown root, got %v", err)
	}
}

func TestThresholdsFallBackToConfig(t *testing.T) {
	a := newTestAnalyzer(t)

	pairs, err := a.FindLikelyDuplicates(0)
	if err != nil {
		t.Fatalf("FindLikelyDuplicates: %v", err)
	}
	if len(pairs) != 1 {
		t.Errorf("Expected the configured threshold to keep the twins, got %d pairs", len(pairs))
	}

	pairs, err = a.FindLikelyDuplicates(0.99)
	if err != nil {
		t.Fatalf("FindLikelyDuplicates: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("Expected no pairs at 0.99, got %d", len(pairs))
	}

	clusters, err := a.DetectClusters("", 0)
	if err != nil {
		t.Fatalf("DetectClusters: %v", err)
	}
	if len(clusters) != 1 || clusters[0].Size != 2 {
		t.Errorf("Expected one twin cluster, got %+v", clusters)
	}

	clusters, err = a.DetectClusters("", 0.99)
	if err != nil {
		t.Fatalf("DetectClusters: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("Expected no clusters at 0.99, got %d", len(clusters))
	}
}

func TestValidateTreeHonorsCap(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.ValidateTree("R-1", 2)
	if err != nil {
		t.Fatalf("ValidateTree: %v", err)
	}
	if result.PersonsChecked != 2 || !result.Truncated {
		t.Errorf("Expected a truncated sweep of 2, got %d (truncated=%t)", result.PersonsChecked, result.Truncated)
	}
}
