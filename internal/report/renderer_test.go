package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/treelint/internal/model"
)

func sampleAudit() *model.AuditReport {
	return &model.AuditReport{
		RunID:         "run-123",
		RootID:        "KWRT-001",
		Generations:   4,
		GeneratedAt:   time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		CriticalCount: 2,
		WarningCount:  1,
		TimelineIssues: []model.Issue{
			{
				Type:        model.IssueDeathBeforeBirth,
				Severity:    model.SeverityCritical,
				PersonID:    "KWRT-002",
				PersonName:  "John Smith",
				Description: "Death (1850) recorded before birth (1860)",
			},
		},
		Tree: model.TreeValidation{
			RootID:         "KWRT-001",
			PersonsChecked: 12,
			Issues: []model.Issue{
				{
					Type:        model.IssueCircularAncestry,
					Severity:    model.SeverityCritical,
					PersonID:    "KWRT-003",
					PersonName:  "Loop Person",
					Description: "Ancestry cycle detected",
					Cycle:       []string{"KWRT-003", "KWRT-004", "KWRT-003"},
				},
			},
		},
		Priorities: []model.ResearchPriority{
			{
				PersonID:     "KWRT-005",
				PersonName:   "Mary Stone",
				Generation:   2,
				Score:        45,
				TotalSources: 0,
				MissingVital: []string{"Birth", "Death"},
			},
		},
		Duplicates: []model.DuplicatePair{
			{
				Person1: model.DuplicatePerson{ID: "KWRT-006", Name: "Jane Doe"},
				Person2: model.DuplicatePerson{ID: "KWRT-007", Name: "Jane Dow"},
				Score:   0.91,
			},
		},
	}
}

func TestRenderAuditMarkdown(t *testing.T) {
	r := NewRenderer(true)
	var buf bytes.Buffer

	if err := r.RenderAuditMarkdown(&buf, sampleAudit()); err != nil {
		t.Fatalf("RenderAuditMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Family Tree Audit: KWRT-001",
		"Run: run-123",
		"Critical findings: 2",
		"Checked 12 persons",
		"circular_ancestry",
		"death_before_birth",
		"[John Smith](https://www.familysearch.org/tree/person/details/KWRT-002)",
		"| 0.910 |",
		"[Mary Stone](https://www.familysearch.org/tree/person/details/KWRT-005)",
		"Birth, Death",
		"Generated by treelint",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRenderAuditMarkdownNoFooter(t *testing.T) {
	r := NewRenderer(false)
	var buf bytes.Buffer

	if err := r.RenderAuditMarkdown(&buf, sampleAudit()); err != nil {
		t.Fatalf("RenderAuditMarkdown: %v", err)
	}
	if strings.Contains(buf.String(), "Generated by treelint") {
		t.Error("Expected no footer")
	}
}

func TestRenderAuditMarkdownEmptySections(t *testing.T) {
	r := NewRenderer(true)
	report := &model.AuditReport{
		RunID:       "run-0",
		RootID:      "KWRT-001",
		Generations: 4,
		GeneratedAt: time.Now().UTC(),
		Tree:        model.TreeValidation{RootID: "KWRT-001", PersonsChecked: 3},
	}
	var buf bytes.Buffer

	if err := r.RenderAuditMarkdown(&buf, report); err != nil {
		t.Fatalf("RenderAuditMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"No structural issues found.",
		"No timeline issues at or above the reported severity.",
		"No likely duplicate pairs above the threshold.",
		"Every analyzed ancestor has adequate source coverage.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRenderAuditJSON(t *testing.T) {
	r := NewRenderer(true)
	var buf bytes.Buffer

	if err := r.RenderAuditJSON(&buf, sampleAudit()); err != nil {
		t.Fatalf("RenderAuditJSON: %v", err)
	}

	var decoded model.AuditReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.RunID != "run-123" || len(decoded.Duplicates) != 1 {
		t.Errorf("Round trip lost data: %+v", decoded)
	}
}

func TestRenderProfileMarkdown(t *testing.T) {
	r := NewRenderer(true)
	birthSort := 18500315
	profile := &model.PersonProfile{
		Person: model.Person{ID: "KWRT-010", DisplayName: "Ada Example", Gender: model.GenderFemale},
		Names:  []model.Name{{Type: model.NameTypeBirth, Given: "Ada", Surname: "Example"}},
		Facts: []model.Fact{
			{Type: model.FactBirth, DateSort: &birthSort, DateOriginal: "15 Mar 1850", Place: "Boston"},
			{Type: model.FactDeath},
		},
		Parents: []model.Parent{
			{Person: model.Person{ID: "KWRT-011", DisplayName: "Parent Example"}, Role: "Father"},
		},
		Spouses: []model.Spouse{
			{Person: model.Person{ID: "KWRT-012", DisplayName: "Spouse Example"}, MarriageDate: "1875", MarriagePlace: "Boston"},
		},
		Sources: []model.SourceRef{{SourceID: "S-1", Title: "Birth certificate", Tag: model.FactBirth}},
	}
	var buf bytes.Buffer

	if err := r.RenderProfileMarkdown(&buf, profile); err != nil {
		t.Fatalf("RenderProfileMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Ada Example",
		"https://www.familysearch.org/tree/person/details/KWRT-010",
		"| Birth | 15 Mar 1850 | Boston |",
		"| Death | - | - |",
		"[Parent Example](https://www.familysearch.org/tree/person/details/KWRT-011) (Father)",
		"married 1875 in Boston",
		"## Sources (1)",
		"Birth certificate (Birth)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRenderProfileMarkdownSparsePerson(t *testing.T) {
	r := NewRenderer(false)
	profile := &model.PersonProfile{
		Person: model.Person{ID: "KWRT-020", DisplayName: "Bare Person"},
	}
	var buf bytes.Buffer

	if err := r.RenderProfileMarkdown(&buf, profile); err != nil {
		t.Fatalf("RenderProfileMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"No name forms recorded.",
		"No facts recorded.",
		"No recorded relationships.",
		"No sources attached.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRenderClustersMarkdown(t *testing.T) {
	r := NewRenderer(true)
	clusters := []model.NameCluster{
		{
			RepresentativeID:   "KWRT-030",
			RepresentativeName: "John Smith",
			Size:               2,
			Members: []model.ClusterMember{
				{PersonID: "KWRT-030", Name: "John Smith", Score: 1},
				{PersonID: "KWRT-031", Name: "Jon Smith", Score: 0.82},
			},
		},
	}
	var buf bytes.Buffer

	if err := r.RenderClustersMarkdown(&buf, "Smith", 0.6, clusters); err != nil {
		t.Fatalf("RenderClustersMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Name Clusters: Smith",
		"Similarity threshold: 0.60",
		"## Cluster 1: John Smith (2 persons)",
		"| [Jon Smith](https://www.familysearch.org/tree/person/details/KWRT-031) | KWRT-031 | 0.820 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRenderClustersMarkdownEmpty(t *testing.T) {
	r := NewRenderer(false)
	var buf bytes.Buffer

	if err := r.RenderClustersMarkdown(&buf, "", 0.6, nil); err != nil {
		t.Fatalf("RenderClustersMarkdown: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "# Name Clusters: All") {
		t.Errorf("Expected empty surname filter to render as All:\n%s", out)
	}
	if !strings.Contains(out, "No clusters found at this threshold.") {
		t.Errorf("Expected empty notice:\n%s", out)
	}
}

func TestRenderResearchMarkdown(t *testing.T) {
	r := NewRenderer(true)
	birthSort := 18200000
	research := &model.ResearchReport{
		GeneratedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Generations: 4,
		Profile: model.PersonProfile{
			Person: model.Person{ID: "KWRT-040", DisplayName: "Mary Stone"},
			Names:  []model.Name{{Type: model.NameTypeBirth, Given: "Mary", Surname: "Stone"}},
			Facts:  []model.Fact{{Type: model.FactBirth, DateSort: &birthSort}},
		},
		Coverage: &model.CoverageReport{
			PersonID:            "KWRT-040",
			TotalSources:        1,
			TotalFacts:          3,
			VitalWithSources:    1,
			VitalWithoutSources: 1,
			MissingVitalEvents:  []string{"Death"},
		},
		Priorities: []model.ResearchPriority{
			{PersonID: "KWRT-041", PersonName: "Weak Ancestor", Generation: 1, Score: 35},
		},
	}
	var buf bytes.Buffer

	if err := r.RenderResearchMarkdown(&buf, research); err != nil {
		t.Fatalf("RenderResearchMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Research Leads: Mary Stone",
		"givenName=Mary",
		"surname=Stone",
		"birthLikeDate=1820",
		"search/record/results",
		"Vital events sourced: 1 of 2",
		"Unsourced vital events: Death",
		"[Weak Ancestor](https://www.familysearch.org/tree/person/details/KWRT-041)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRenderFiles(t *testing.T) {
	r := NewRenderer(true)
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "audit.json")
	mdPath := filepath.Join(dir, "audit.md")
	llmPath := filepath.Join(dir, "audit.llm.md")

	if err := r.RenderJSON(sampleAudit(), jsonPath); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded model.AuditReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("JSON file is not valid: %v", err)
	}

	if err := r.RenderMarkdown(sampleAudit(), mdPath); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(md), "# Family Tree Audit") {
		t.Error("Expected Markdown heading in file output")
	}

	if err := r.RenderLLMMarkdown("", llmPath); err != nil {
		t.Fatalf("RenderLLMMarkdown empty: %v", err)
	}
	if _, err := os.Stat(llmPath); !os.IsNotExist(err) {
		t.Error("Expected no file for empty LLM markdown")
	}
	if err := r.RenderLLMMarkdown("# LLM Summary\n", llmPath); err != nil {
		t.Fatalf("RenderLLMMarkdown: %v", err)
	}
	if _, err := os.Stat(llmPath); err != nil {
		t.Errorf("Expected LLM markdown file: %v", err)
	}
}

func TestFilenames(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	if got := AuditFilename("KWRT-001", ts); got != "audit_KWRT-001_20260102_150405" {
		t.Errorf("AuditFilename = %q", got)
	}
	if got := ProfileFilename("KWRT-001"); got != "person_KWRT-001" {
		t.Errorf("ProfileFilename = %q", got)
	}
	if got := ClustersFilename("", ts); got != "name_clusters_all_20260102_150405" {
		t.Errorf("ClustersFilename = %q", got)
	}
	if got := ClustersFilename("Smith", ts); got != "name_clusters_Smith_20260102_150405" {
		t.Errorf("ClustersFilename = %q", got)
	}
	if got := ResearchFilename("KWRT-001", ts); got != "research_leads_KWRT-001_20260102_150405" {
		t.Errorf("ResearchFilename = %q", got)
	}
}
