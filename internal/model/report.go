package model

import "time"

// DuplicatePerson identifies one side of a candidate duplicate pair.
type DuplicatePerson struct {
	ID   string `json:"person_id"`
	Name string `json:"name"`
}

// DuplicatePair is a candidate duplicate with its similarity score,
// rounded to three decimals.
type DuplicatePair struct {
	Person1 DuplicatePerson `json:"person1"`
	Person2 DuplicatePerson `json:"person2"`
	Score   float64         `json:"score"`
}

// ClusterMember is one person inside a name cluster, scored against the
// cluster representative.
type ClusterMember struct {
	PersonID string  `json:"person_id"`
	Name     string  `json:"name"`
	Score    float64 `json:"similarity_to_representative"`
}

// NameCluster groups phonetically similar persons around a
// representative, the member with the lexicographically smallest id.
type NameCluster struct {
	RepresentativeID   string          `json:"representative_id"`
	RepresentativeName string          `json:"representative_name"`
	Size               int             `json:"cluster_size"`
	Members            []ClusterMember `json:"members"`
}

// TreeValidation is the outcome of a relationship sweep from one root.
type TreeValidation struct {
	RootID         string  `json:"root_person_id"`
	PersonsChecked int     `json:"persons_checked"`
	Truncated      bool    `json:"truncated,omitempty"`
	Issues         []Issue `json:"issues"`
}

// CoverageReport summarizes how well one person's facts are sourced.
type CoverageReport struct {
	PersonID                string   `json:"person_id"`
	PersonName              string   `json:"person_name"`
	TotalSources            int      `json:"total_sources"`
	TotalFacts              int      `json:"total_facts"`
	VitalWithSources        int      `json:"vital_facts_with_sources"`
	VitalWithoutSources     int      `json:"vital_facts_without_sources"`
	ImportantWithSources    int      `json:"important_facts_with_sources"`
	ImportantWithoutSources int      `json:"important_facts_without_sources"`
	MissingVitalEvents      []string `json:"missing_vital_events"`
	MissingImportantEvents  []string `json:"missing_important_events"`
}

// ResearchPriority ranks one ancestor as a source-research target.
type ResearchPriority struct {
	PersonID         string   `json:"person_id"`
	PersonName       string   `json:"person_name"`
	Generation       int      `json:"generation"`
	Score            int      `json:"priority_score"`
	TotalSources     int      `json:"total_sources"`
	MissingVital     []string `json:"missing_vital_events"`
	MissingImportant []string `json:"missing_important_events"`
}

// Factor is one weighted component of a similarity comparison.
type Factor struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Detail       string  `json:"detail,omitempty"`
}

// Comparison is the transparent breakdown of one pairwise score.
type Comparison struct {
	Person1ID   string   `json:"person1_id"`
	Person1Name string   `json:"person1_name"`
	Person2ID   string   `json:"person2_id"`
	Person2Name string   `json:"person2_name"`
	Score       float64  `json:"score"`
	Factors     []Factor `json:"factors"`
}

// ResearchReport pairs a person profile with coverage analysis and
// ranked research targets, the shape the research markdown renders.
type ResearchReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Generations int                `json:"generations"`
	Profile     PersonProfile      `json:"profile"`
	Coverage    *CoverageReport    `json:"coverage,omitempty"`
	Priorities  []ResearchPriority `json:"research_priorities"`
}

// AuditReport is the combined output of a full quality audit.
type AuditReport struct {
	RunID       string    `json:"run_id"`
	RootID      string    `json:"root_person_id"`
	Generations int       `json:"generations"`
	GeneratedAt time.Time `json:"generated_at"`

	CriticalCount int `json:"critical_count"`
	WarningCount  int `json:"warning_count"`

	TimelineIssues []Issue            `json:"timeline_issues"`
	Tree           TreeValidation     `json:"relationships"`
	Priorities     []ResearchPriority `json:"research_priorities"`
	Duplicates     []DuplicatePair    `json:"likely_duplicates"`

	// LLM holds the optional generated narrative. It never feeds back
	// into any check or count above.
	LLM *ResearchSummary `json:"llm,omitempty"`
}

// ResearchSummary is an optional LLM-written narrative over an audit.
type ResearchSummary struct {
	Enabled         bool     `json:"enabled"`
	Provider        string   `json:"provider,omitempty"`
	Model           string   `json:"model,omitempty"`
	StrictCitations bool     `json:"strict_citations"`
	SummaryMD       string   `json:"summary_md,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}
