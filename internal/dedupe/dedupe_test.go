package dedupe

import (
	"math"
	"testing"

	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/score"
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

func addPerson(t *testing.T, s *store.Store, id, given, surname, gender string) {
	t.Helper()
	display := given
	if surname != "" {
		display = given + " " + surname
	}
	if err := s.UpsertPerson(id, display, gender); err != nil {
		t.Fatalf("Failed to insert person %s: %v", id, err)
	}
	if given != "" || surname != "" {
		if err := s.AddName(id, "", given, surname); err != nil {
			t.Fatalf("Failed to add name for %s: %v", id, err)
		}
	}
}

func addFact(t *testing.T, s *store.Store, id, factType string, dateSort int, place string) {
	t.Helper()
	if err := s.AddFact(id, factType, &dateSort, "", place); err != nil {
		t.Fatalf("Failed to add fact for %s: %v", id, err)
	}
}

// seedTwins loads two records that agree on every scored factor plus an
// unrelated person and a nameless one.
func seedTwins(t *testing.T, s *store.Store) {
	t.Helper()

	addPerson(t, s, "P-100", "John", "Doe", model.GenderMale)
	addPerson(t, s, "P-101", "John", "Doe", model.GenderMale)
	addPerson(t, s, "P-200", "Mary", "Johnson", model.GenderFemale)
	addPerson(t, s, "P-300", "", "", "")

	addPerson(t, s, "F-1", "Robert", "Doe", model.GenderMale)
	addPerson(t, s, "M-1", "Mary", "Doe", model.GenderFemale)
	addPerson(t, s, "W-1", "Jane", "Smith", model.GenderFemale)

	for _, id := range []string{"P-100", "P-101"} {
		addFact(t, s, id, model.FactBirth, 19500101, "California")
		addFact(t, s, id, model.FactDeath, 20101231, "")
		for _, parent := range []string{"F-1", "M-1"} {
			if err := s.AddParentChild(parent, id, ""); err != nil {
				t.Fatalf("Failed to add edge: %v", err)
			}
		}
		if err := s.AddCouple(id, "W-1", "", ""); err != nil {
			t.Fatalf("Failed to add couple: %v", err)
		}
	}
}

func TestFindLikelyDuplicates(t *testing.T) {
	s := newTestStore(t)
	seedTwins(t, s)

	detector := NewDetector(s, score.NewScorer(s))
	pairs, err := detector.FindLikelyDuplicates(0.85)
	if err != nil {
		t.Fatalf("FindLikelyDuplicates failed: %v", err)
	}

	if len(pairs) != 1 {
		t.Fatalf("Expected 1 duplicate pair, got %d: %+v", len(pairs), pairs)
	}
	p := pairs[0]
	if p.Person1.ID != "P-100" || p.Person2.ID != "P-101" {
		t.Errorf("Unexpected pair order: %+v", p)
	}
	if math.Abs(p.Score-0.95) > 1e-9 {
		t.Errorf("Expected score 0.95, got %f", p.Score)
	}
}

func TestFindLikelyDuplicatesRespectsThreshold(t *testing.T) {
	s := newTestStore(t)
	seedTwins(t, s)

	detector := NewDetector(s, score.NewScorer(s))
	pairs, err := detector.FindLikelyDuplicates(0.99)
	if err != nil {
		t.Fatalf("FindLikelyDuplicates failed: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("Expected no pairs above 0.99, got %+v", pairs)
	}
}

func TestExactBlocksSkipUnblockable(t *testing.T) {
	persons := []model.PersonName{
		{ID: "A", NormalizedGiven: "john", NormalizedSurname: "doe"},
		{ID: "B", NormalizedGiven: "john", NormalizedSurname: "doe"},
		{ID: "C", NormalizedSurname: "doe"},
		{ID: "D"},
	}

	blocks := exactBlocks(persons)
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	full := blocks[blockKey{surname: "doe", given: "john"}]
	if len(full) != 2 {
		t.Errorf("Expected A and B in the same block, got %+v", full)
	}
	for key := range blocks {
		if key.surname == "" && key.given == "" {
			t.Error("Unblockable person leaked into an empty-key block")
		}
	}
}

func TestPhoneticBlocksSkipEmptyCode(t *testing.T) {
	persons := []model.PersonName{
		{ID: "A", SoundexSurname: "S530"},
		{ID: "B", SoundexSurname: "S530"},
		{ID: "C"},
	}
	blocks := phoneticBlocks(persons)
	if len(blocks) != 1 || len(blocks["S530"]) != 2 {
		t.Errorf("Unexpected phonetic blocks: %+v", blocks)
	}
}

// seedClusters loads a smith cluster of three, a smith outlier born a
// generation later, and a jones cluster of two.
func seedClusters(t *testing.T, s *store.Store) {
	t.Helper()

	for _, id := range []string{"S-1", "S-2", "S-3"} {
		addPerson(t, s, id, "John", "Smith", model.GenderMale)
		addFact(t, s, id, model.FactBirth, 19500101, "")
	}
	addPerson(t, s, "S-4", "John", "Smith", model.GenderMale)
	addFact(t, s, "S-4", model.FactBirth, 19800101, "")

	for _, id := range []string{"J-1", "J-2"} {
		addPerson(t, s, id, "Mary", "Jones", model.GenderFemale)
		addFact(t, s, id, model.FactBirth, 19000101, "")
	}
}

func TestDetectClusters(t *testing.T) {
	s := newTestStore(t)
	seedClusters(t, s)

	builder := NewClusterBuilder(s, score.NewScorer(s))
	clusters, err := builder.DetectClusters("", 0.60)
	if err != nil {
		t.Fatalf("DetectClusters failed: %v", err)
	}

	if len(clusters) != 2 {
		t.Fatalf("Expected 2 clusters, got %d: %+v", len(clusters), clusters)
	}

	smith := clusters[0]
	if smith.Size != 3 || smith.RepresentativeID != "S-1" {
		t.Errorf("Unexpected first cluster: %+v", smith)
	}
	if smith.Members[0].PersonID != "S-1" || smith.Members[0].Score != 1 {
		t.Errorf("Representative must lead with score 1, got %+v", smith.Members[0])
	}
	for _, m := range smith.Members[1:] {
		if math.Abs(m.Score-0.60) > 1e-9 {
			t.Errorf("Expected member similarity 0.60, got %+v", m)
		}
	}
	for _, m := range smith.Members {
		if m.PersonID == "S-4" {
			t.Error("Outlier S-4 must not join the cluster")
		}
	}

	jones := clusters[1]
	if jones.Size != 2 || jones.RepresentativeID != "J-1" {
		t.Errorf("Unexpected second cluster: %+v", jones)
	}
}

func TestDetectClustersSurnameFilter(t *testing.T) {
	s := newTestStore(t)
	seedClusters(t, s)

	builder := NewClusterBuilder(s, score.NewScorer(s))
	clusters, err := builder.DetectClusters("Jones", 0.60)
	if err != nil {
		t.Fatalf("DetectClusters failed: %v", err)
	}
	if len(clusters) != 1 || clusters[0].RepresentativeID != "J-1" {
		t.Errorf("Expected only the jones cluster, got %+v", clusters)
	}
}

func TestDetectClustersHighThresholdFindsNothing(t *testing.T) {
	s := newTestStore(t)
	seedClusters(t, s)

	builder := NewClusterBuilder(s, score.NewScorer(s))
	clusters, err := builder.DetectClusters("", 0.99)
	if err != nil {
		t.Fatalf("DetectClusters failed: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("Expected no clusters at 0.99, got %+v", clusters)
	}
}
