// Package analyzer wires every check over one research cache and
// assembles complete audit reports.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/treelint/internal/coverage"
	"github.com/ppiankov/treelint/internal/dedupe"
	"github.com/ppiankov/treelint/internal/llm"
	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/score"
	"github.com/ppiankov/treelint/internal/store"
	"github.com/ppiankov/treelint/internal/validate"
)

// Audit reports cap their list sections so a large tree still renders
// as a readable document.
const (
	maxAuditPriorities = 50
	maxAuditDuplicates = 20
)

// Analyzer orchestrates the complete audit process
type Analyzer struct {
	reader     store.Reader
	scorer     *score.Scorer
	detector   *dedupe.Detector
	clusters   *dedupe.ClusterBuilder
	relations  *validate.RelationshipChecker
	timeline   *validate.TimelineValidator
	research   *coverage.Prioritizer
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	config     *model.Config
}

// New creates an analyzer over reader with the given configuration.
func New(reader store.Reader, cfg *model.Config) *Analyzer {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	// Create LLM summarizer if configured
	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	scorer := score.NewScorer(reader)
	return &Analyzer{
		reader:     reader,
		scorer:     scorer,
		detector:   dedupe.NewDetector(reader, scorer),
		clusters:   dedupe.NewClusterBuilder(reader, scorer),
		relations:  validate.NewRelationshipChecker(reader, cfg.Analysis.MaxCycleDepth),
		timeline:   validate.NewTimelineValidator(reader),
		research:   coverage.NewPrioritizer(reader),
		summarizer: summarizer,
		config:     cfg,
	}
}

// FindLikelyDuplicates scores name-blocked pairs and keeps those at or
// above threshold. Zero means the configured threshold.
func (a *Analyzer) FindLikelyDuplicates(threshold float64) ([]model.DuplicatePair, error) {
	if threshold <= 0 {
		threshold = a.config.Analysis.DuplicateThreshold
	}
	return a.detector.FindLikelyDuplicates(threshold)
}

// DetectClusters groups phonetically similar persons. Zero threshold
// means the configured one; an empty surname matches everyone.
func (a *Analyzer) DetectClusters(surname string, threshold float64) ([]model.NameCluster, error) {
	if threshold <= 0 {
		threshold = a.config.Analysis.ClusterThreshold
	}
	return a.clusters.DetectClusters(surname, threshold)
}

// CheckPerson runs the cycle and structure checks for one person.
func (a *Analyzer) CheckPerson(personID string) ([]model.Issue, error) {
	return a.relations.CheckPerson(personID)
}

// ValidateTree sweeps the connected tree from rootID. Zero maxPersons
// means the configured cap.
func (a *Analyzer) ValidateTree(rootID string, maxPersons int) (*model.TreeValidation, error) {
	if maxPersons <= 0 {
		maxPersons = a.config.Analysis.MaxTreePersons
	}
	return a.relations.ValidateTree(rootID, maxPersons)
}

// ValidatePersonTimeline checks one person's dates for plausibility.
func (a *Analyzer) ValidatePersonTimeline(personID string) ([]model.Issue, error) {
	return a.timeline.ValidatePerson(personID)
}

// ValidateAllTimelines checks every person, keeping findings at or
// above minSeverity.
func (a *Analyzer) ValidateAllTimelines(minSeverity model.Severity) ([]model.Issue, error) {
	return a.timeline.ValidateAll(minSeverity)
}

// AnalyzeCoverage reports source coverage for one person, nil if the
// person is unknown.
func (a *Analyzer) AnalyzeCoverage(personID string) (*model.CoverageReport, error) {
	return a.research.AnalyzePerson(personID)
}

// PrioritizeResearch ranks ancestors of rootID as research targets.
// Zero generations means the configured bound.
func (a *Analyzer) PrioritizeResearch(rootID string, generations int) ([]model.ResearchPriority, error) {
	if generations <= 0 {
		generations = a.config.Analysis.MaxGenerations
	}
	return a.research.PrioritizeResearch(rootID, generations)
}

// ComparePersons scores two persons by id with a factor breakdown.
func (a *Analyzer) ComparePersons(id1, id2 string) (*model.Comparison, error) {
	p1, err := a.personName(id1)
	if err != nil {
		return nil, err
	}
	if p1 == nil {
		return nil, fmt.Errorf("person %s not found", id1)
	}
	p2, err := a.personName(id2)
	if err != nil {
		return nil, err
	}
	if p2 == nil {
		return nil, fmt.Errorf("person %s not found", id2)
	}
	return a.scorer.Compare(*p1, *p2)
}

// Profile assembles everything recorded about one person, nil if the
// person is unknown.
func (a *Analyzer) Profile(personID string) (*model.PersonProfile, error) {
	person, err := a.reader.Person(personID)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, nil
	}

	profile := &model.PersonProfile{Person: *person}
	if profile.Names, err = a.reader.Names(personID); err != nil {
		return nil, err
	}
	if profile.Facts, err = a.reader.Facts(personID); err != nil {
		return nil, err
	}
	if profile.Parents, err = a.reader.Parents(personID); err != nil {
		return nil, err
	}
	if profile.Children, err = a.reader.Children(personID); err != nil {
		return nil, err
	}
	if profile.Spouses, err = a.reader.Spouses(personID); err != nil {
		return nil, err
	}
	if profile.Sources, err = a.reader.Sources(personID); err != nil {
		return nil, err
	}
	return profile, nil
}

// ResearchLeads pairs the root's profile and source coverage with
// ranked research targets. Zero generations means the configured
// bound.
func (a *Analyzer) ResearchLeads(rootID string, generations int) (*model.ResearchReport, error) {
	if generations <= 0 {
		generations = a.config.Analysis.MaxGenerations
	}

	profile, err := a.Profile(rootID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("root person %s not found", rootID)
	}

	coverage, err := a.research.AnalyzePerson(rootID)
	if err != nil {
		return nil, err
	}
	priorities, err := a.research.PrioritizeResearch(rootID, generations)
	if err != nil {
		return nil, err
	}

	return &model.ResearchReport{
		GeneratedAt: time.Now().UTC(),
		Generations: generations,
		Profile:     *profile,
		Coverage:    coverage,
		Priorities:  priorities,
	}, nil
}

// RunAudit composes timelines, the relationship sweep, research
// priorities and duplicate detection into one report. The optional LLM
// narrative is generated last and never feeds back into any check.
func (a *Analyzer) RunAudit(ctx context.Context, rootID string, generations int) (*model.AuditReport, error) {
	root, err := a.reader.Person(rootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("root person %s not found", rootID)
	}
	if generations <= 0 {
		generations = a.config.Analysis.MaxGenerations
	}

	timelineIssues, err := a.timeline.ValidateAll(model.SeverityWarning)
	if err != nil {
		return nil, fmt.Errorf("validate timelines: %w", err)
	}

	tree, err := a.relations.ValidateTree(rootID, a.config.Analysis.MaxTreePersons)
	if err != nil {
		return nil, fmt.Errorf("validate tree: %w", err)
	}

	priorities, err := a.research.PrioritizeResearch(rootID, generations)
	if err != nil {
		return nil, fmt.Errorf("prioritize research: %w", err)
	}
	if len(priorities) > maxAuditPriorities {
		priorities = priorities[:maxAuditPriorities]
	}

	duplicates, err := a.detector.FindLikelyDuplicates(a.config.Analysis.DuplicateThreshold)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}
	if len(duplicates) > maxAuditDuplicates {
		duplicates = duplicates[:maxAuditDuplicates]
	}

	report := &model.AuditReport{
		RunID:          uuid.NewString(),
		RootID:         rootID,
		Generations:    generations,
		GeneratedAt:    time.Now().UTC(),
		TimelineIssues: timelineIssues,
		Tree:           *tree,
		Priorities:     priorities,
		Duplicates:     duplicates,
	}
	for _, issue := range timelineIssues {
		tally(report, issue.Severity)
	}
	for _, issue := range tree.Issues {
		tally(report, issue.Severity)
	}

	// Generate LLM summary if enabled (AFTER all checks, never affects them)
	if a.summarizer.IsEnabled() {
		summary, err := a.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			// Don't fail the entire audit, just warn
			fmt.Printf("Warning: LLM summary generation failed: %v\n", err)
		} else if summary != nil {
			report.LLM = summary
		}
	}

	return report, nil
}

func tally(report *model.AuditReport, severity model.Severity) {
	switch severity {
	case model.SeverityCritical:
		report.CriticalCount++
	case model.SeverityWarning:
		report.WarningCount++
	}
}

func (a *Analyzer) personName(id string) (*model.PersonName, error) {
	person, err := a.reader.Person(id)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, nil
	}

	pn := &model.PersonName{
		ID:          person.ID,
		DisplayName: person.DisplayName,
		Gender:      person.Gender,
	}
	names, err := a.reader.Names(id)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if n.Type == model.NameTypeBirth {
			pn.Given = n.Given
			pn.Surname = n.Surname
			pn.NormalizedGiven = n.NormalizedGiven
			pn.NormalizedSurname = n.NormalizedSurname
			pn.SoundexGiven = n.SoundexGiven
			pn.SoundexSurname = n.SoundexSurname
			break
		}
	}
	return pn, nil
}
