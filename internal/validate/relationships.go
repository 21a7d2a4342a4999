// Package validate checks the structural and temporal consistency of the
// person graph: ancestry cycles, malformed parent sets, suspicious
// marriage fan-out and implausible timelines.
package validate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/treelint/internal/model"
)

// Graph is the slice of the store the validators read.
type Graph interface {
	Person(id string) (*model.Person, error)
	Facts(id string) ([]model.Fact, error)
	Parents(id string) ([]model.Parent, error)
	Children(id string) ([]model.Person, error)
	Spouses(id string) ([]model.Spouse, error)
	PersonIDs() ([]string, error)
}

// Traversal bounds; callers passing zero get these.
const (
	DefaultMaxCycleDepth  = 20
	DefaultMaxTreePersons = 1000
)

// RelationshipChecker flags graph-shape problems around one person or
// across a whole subtree.
type RelationshipChecker struct {
	graph         Graph
	maxCycleDepth int
}

// NewRelationshipChecker creates a checker over graph. maxCycleDepth
// bounds how far up the ancestry the cycle walk looks.
func NewRelationshipChecker(graph Graph, maxCycleDepth int) *RelationshipChecker {
	if maxCycleDepth <= 0 {
		maxCycleDepth = DefaultMaxCycleDepth
	}
	return &RelationshipChecker{graph: graph, maxCycleDepth: maxCycleDepth}
}

// DetectCircularAncestry walks the parent graph upward from personID
// looking for a person who is their own ancestor. The walk stops at the
// first cycle found.
func (c *RelationshipChecker) DetectCircularAncestry(personID string) ([]model.Issue, error) {
	return c.detectCircular(personID, make(map[string]bool))
}

// detectCircular is an iterative depth-first walk with an explicit path
// stack; ancestries can be deep and hand-merged ones arbitrarily so.
// visited persists across calls when the caller sweeps a whole tree, so
// each graph region is walked once and each cycle reported once.
func (c *RelationshipChecker) detectCircular(personID string, visited map[string]bool) ([]model.Issue, error) {
	type frame struct {
		id      string
		parents []model.Parent
		next    int
	}

	onPath := make(map[string]int)
	var path []string
	var stack []*frame

	push := func(id string) error {
		parents, err := c.graph.Parents(id)
		if err != nil {
			return err
		}
		visited[id] = true
		onPath[id] = len(path)
		path = append(path, id)
		stack = append(stack, &frame{id: id, parents: parents})
		return nil
	}

	if err := push(personID); err != nil {
		return nil, err
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.parents) {
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			delete(onPath, top.id)
			continue
		}
		parentID := top.parents[top.next].ID
		top.next++

		// Ancestors beyond the depth bound are not explored, so a cycle
		// closing past it goes unreported.
		if len(path) > c.maxCycleDepth {
			continue
		}
		if at, ok := onPath[parentID]; ok {
			cycle := append(append([]string{}, path[at:]...), parentID)
			return []model.Issue{{
				Type:        model.IssueCircularAncestry,
				Severity:    model.SeverityCritical,
				PersonID:    personID,
				Description: "Circular ancestry detected: " + strings.Join(cycle, " -> "),
				Cycle:       cycle,
			}}, nil
		}
		if visited[parentID] {
			continue
		}
		if err := push(parentID); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// CheckStructure flags malformed parent sets and marriages worth a look
// for one person.
func (c *RelationshipChecker) CheckStructure(personID string) ([]model.Issue, error) {
	var issues []model.Issue

	parents, err := c.graph.Parents(personID)
	if err != nil {
		return nil, err
	}
	if len(parents) > 2 {
		issues = append(issues, model.Issue{
			Type:        model.IssueTooManyParents,
			Severity:    model.SeverityWarning,
			PersonID:    personID,
			Description: fmt.Sprintf("Person has %d parents recorded (expected at most 2)", len(parents)),
		})
	}

	mothers, fathers := 0, 0
	for _, p := range parents {
		switch p.Gender {
		case model.GenderFemale:
			mothers++
		case model.GenderMale:
			fathers++
		}
	}
	if mothers > 1 {
		issues = append(issues, model.Issue{
			Type:        model.IssueMultipleMothers,
			Severity:    model.SeverityWarning,
			PersonID:    personID,
			Description: fmt.Sprintf("Person has %d mothers recorded", mothers),
		})
	}
	if fathers > 1 {
		issues = append(issues, model.Issue{
			Type:        model.IssueMultipleFathers,
			Severity:    model.SeverityWarning,
			PersonID:    personID,
			Description: fmt.Sprintf("Person has %d fathers recorded", fathers),
		})
	}

	spouses, err := c.graph.Spouses(personID)
	if err != nil {
		return nil, err
	}
	dated := 0
	for _, sp := range spouses {
		if sp.MarriageDate != "" {
			dated++
		}
	}
	if dated > 1 {
		issues = append(issues, model.Issue{
			Type:        model.IssueConcurrentMarriages,
			Severity:    model.SeverityInfo,
			PersonID:    personID,
			Description: fmt.Sprintf("Person has %d spouses (may need timeline verification)", len(spouses)),
		})
	}
	return issues, nil
}

// CheckPerson runs every relationship check for one person.
func (c *RelationshipChecker) CheckPerson(personID string) ([]model.Issue, error) {
	issues, err := c.DetectCircularAncestry(personID)
	if err != nil {
		return nil, err
	}
	structural, err := c.CheckStructure(personID)
	if err != nil {
		return nil, err
	}
	return append(issues, structural...), nil
}

// ValidateTree sweeps the tree around rootID breadth-first across
// parent, child and spouse edges, bounded by maxPersons, and runs every
// relationship check on each person visited. One cycle-walk visited set
// spans the whole sweep, keeping the sweep linear in the number of
// persons and reporting each cycle once.
func (c *RelationshipChecker) ValidateTree(rootID string, maxPersons int) (*model.TreeValidation, error) {
	if maxPersons <= 0 {
		maxPersons = DefaultMaxTreePersons
	}

	visited := make(map[string]bool)
	cycleVisited := make(map[string]bool)
	queue := []string{rootID}
	var issues []model.Issue

	for len(queue) > 0 && len(visited) < maxPersons {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		cycles, err := c.detectCircular(id, cycleVisited)
		if err != nil {
			return nil, err
		}
		issues = append(issues, cycles...)

		structural, err := c.CheckStructure(id)
		if err != nil {
			return nil, err
		}
		issues = append(issues, structural...)

		parents, err := c.graph.Parents(id)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if !visited[p.ID] {
				queue = append(queue, p.ID)
			}
		}
		children, err := c.graph.Children(id)
		if err != nil {
			return nil, err
		}
		for _, ch := range children {
			if !visited[ch.ID] {
				queue = append(queue, ch.ID)
			}
		}
		spouses, err := c.graph.Spouses(id)
		if err != nil {
			return nil, err
		}
		for _, sp := range spouses {
			if !visited[sp.ID] {
				queue = append(queue, sp.ID)
			}
		}
	}

	truncated := false
	for _, id := range queue {
		if !visited[id] {
			truncated = true
			break
		}
	}

	return &model.TreeValidation{
		RootID:         rootID,
		PersonsChecked: len(visited),
		Truncated:      truncated,
		Issues:         issues,
	}, nil
}
