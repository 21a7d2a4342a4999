// Package coverage measures how well recorded facts are backed by source
// citations and ranks ancestors as research targets.
package coverage

import (
	"sort"

	"github.com/ppiankov/treelint/internal/model"
)

// DefaultGenerations bounds the ancestor walk when the caller passes
// zero.
const DefaultGenerations = 4

// Event classes. Vital events anchor a person's existence; important
// events flesh out a life but are survivable gaps.
var (
	vitalEvents = map[string]bool{
		model.FactBirth:       true,
		model.FactDeath:       true,
		model.FactChristening: true,
		model.FactBurial:      true,
	}
	importantEvents = map[string]bool{
		model.FactMarriage:  true,
		model.FactResidence: true,
		model.FactCensus:    true,
	}
)

// Graph is the slice of the store this package reads.
type Graph interface {
	Person(id string) (*model.Person, error)
	Facts(id string) ([]model.Fact, error)
	Parents(id string) ([]model.Parent, error)
	Sources(id string) ([]model.SourceRef, error)
}

// Prioritizer analyzes source coverage and ranks research targets.
type Prioritizer struct {
	graph Graph
}

// NewPrioritizer creates a prioritizer over graph.
func NewPrioritizer(graph Graph) *Prioritizer {
	return &Prioritizer{graph: graph}
}

// AnalyzePerson reports how well one person's facts are sourced. A fact
// counts as sourced when some citation is tagged with its fact type.
// Unknown ids return nil.
func (p *Prioritizer) AnalyzePerson(personID string) (*model.CoverageReport, error) {
	person, err := p.graph.Person(personID)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, nil
	}

	sources, err := p.graph.Sources(personID)
	if err != nil {
		return nil, err
	}
	facts, err := p.graph.Facts(personID)
	if err != nil {
		return nil, err
	}

	sourcedTypes := make(map[string]bool, len(sources))
	for _, ref := range sources {
		if ref.Tag != "" {
			sourcedTypes[ref.Tag] = true
		}
	}

	report := &model.CoverageReport{
		PersonID:     personID,
		PersonName:   person.DisplayName,
		TotalSources: len(sources),
		TotalFacts:   len(facts),
	}
	for _, fact := range facts {
		switch {
		case vitalEvents[fact.Type]:
			if sourcedTypes[fact.Type] {
				report.VitalWithSources++
			} else {
				report.VitalWithoutSources++
				report.MissingVitalEvents = append(report.MissingVitalEvents, fact.Type)
			}
		case importantEvents[fact.Type]:
			if sourcedTypes[fact.Type] {
				report.ImportantWithSources++
			} else {
				report.ImportantWithoutSources++
				report.MissingImportantEvents = append(report.MissingImportantEvents, fact.Type)
			}
		}
	}
	return report, nil
}

// PrioritizeResearch walks ancestors of rootID up to generations deep
// and scores each as a research target. Deeper generations score lower,
// unsourced facts and sourceless persons score higher, so the top of the
// list is where new citations help most.
func (p *Prioritizer) PrioritizeResearch(rootID string, generations int) ([]model.ResearchPriority, error) {
	if generations <= 0 {
		generations = DefaultGenerations
	}

	type entry struct {
		id  string
		gen int
	}
	queue := []entry{{id: rootID}}
	visited := make(map[string]bool)
	var priorities []model.ResearchPriority

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.id] || cur.gen > generations {
			continue
		}
		visited[cur.id] = true

		report, err := p.AnalyzePerson(cur.id)
		if err != nil {
			return nil, err
		}
		if report == nil {
			continue
		}

		score := (generations - cur.gen + 1) * 10
		score += len(report.MissingVitalEvents) * 5
		score += len(report.MissingImportantEvents) * 2
		if report.TotalSources == 0 {
			score += 10
		}
		if score > 0 {
			priorities = append(priorities, model.ResearchPriority{
				PersonID:         cur.id,
				PersonName:       report.PersonName,
				Generation:       cur.gen,
				Score:            score,
				TotalSources:     report.TotalSources,
				MissingVital:     report.MissingVitalEvents,
				MissingImportant: report.MissingImportantEvents,
			})
		}

		parents, err := p.graph.Parents(cur.id)
		if err != nil {
			return nil, err
		}
		for _, parent := range parents {
			queue = append(queue, entry{id: parent.ID, gen: cur.gen + 1})
		}
	}

	sort.Slice(priorities, func(i, j int) bool {
		if priorities[i].Score != priorities[j].Score {
			return priorities[i].Score > priorities[j].Score
		}
		if priorities[i].Generation != priorities[j].Generation {
			return priorities[i].Generation < priorities[j].Generation
		}
		return priorities[i].PersonID < priorities[j].PersonID
	})
	return priorities, nil
}
