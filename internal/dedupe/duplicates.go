package dedupe

import (
	"math"
	"sort"

	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/score"
)

// Default thresholds; callers passing zero get these.
const (
	DefaultDuplicateThreshold = 0.85
	DefaultClusterThreshold   = 0.60
)

// Detector finds pairs of person records that likely describe the same
// individual.
type Detector struct {
	graph  Graph
	scorer *score.Scorer
}

// NewDetector creates a detector over graph, scoring pairs with scorer.
func NewDetector(graph Graph, scorer *score.Scorer) *Detector {
	return &Detector{graph: graph, scorer: scorer}
}

// FindLikelyDuplicates scores every pair inside each exact name block and
// returns those at or above threshold, highest score first. Each pair
// appears once, with the lower person id on the left.
func (d *Detector) FindLikelyDuplicates(threshold float64) ([]model.DuplicatePair, error) {
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}

	persons, err := d.graph.PersonsWithPrimaryName()
	if err != nil {
		return nil, err
	}

	var pairs []model.DuplicatePair
	for _, members := range exactBlocks(persons) {
		if len(members) < 2 {
			continue
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				s, err := d.scorer.Similarity(members[i], members[j])
				if err != nil {
					return nil, err
				}
				if s < threshold {
					continue
				}
				a, b := members[i], members[j]
				if b.ID < a.ID {
					a, b = b, a
				}
				pairs = append(pairs, model.DuplicatePair{
					Person1: model.DuplicatePerson{ID: a.ID, Name: a.DisplayName},
					Person2: model.DuplicatePerson{ID: b.ID, Name: b.DisplayName},
					Score:   round3(s),
				})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		if pairs[i].Person1.ID != pairs[j].Person1.ID {
			return pairs[i].Person1.ID < pairs[j].Person1.ID
		}
		return pairs[i].Person2.ID < pairs[j].Person2.ID
	})
	return pairs, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
