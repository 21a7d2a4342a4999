package validate

import (
	"fmt"
	"sort"

	"github.com/ppiankov/treelint/internal/model"
)

// Plausibility bounds, in years.
const (
	MaxAgeAtDeath = 120
	MinParentAge  = 13
	MaxMotherAge  = 60
	MaxFatherAge  = 80
)

// TimelineValidator checks that recorded dates describe a possible life:
// death after birth, a humanly plausible lifespan, and parents old enough
// but not too old at a child's birth.
type TimelineValidator struct {
	graph Graph
}

// NewTimelineValidator creates a validator over graph.
func NewTimelineValidator(graph Graph) *TimelineValidator {
	return &TimelineValidator{graph: graph}
}

// ValidatePerson checks one person. Unknown ids and undated facts
// produce no findings; absent evidence is the research gap reports'
// concern, not a timeline fault.
func (v *TimelineValidator) ValidatePerson(personID string) ([]model.Issue, error) {
	person, err := v.graph.Person(personID)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, nil
	}

	facts, err := v.graph.Facts(personID)
	if err != nil {
		return nil, err
	}
	byType := model.FactsByType(facts)

	var issues []model.Issue

	birth, birthDate := datedFact(byType, model.FactBirth)
	death, deathDate := datedFact(byType, model.FactDeath)

	if birthDate > 0 && deathDate > 0 {
		if birthDate > deathDate {
			issues = append(issues, model.Issue{
				Type:        model.IssueDeathBeforeBirth,
				Severity:    model.SeverityCritical,
				PersonID:    personID,
				PersonName:  person.DisplayName,
				Description: fmt.Sprintf("Death date (%s) is before birth date (%s)", death.DateOriginal, birth.DateOriginal),
			})
		} else if age := deathDate/10000 - birthDate/10000; age > MaxAgeAtDeath {
			issues = append(issues, model.Issue{
				Type:        model.IssueImplausibleAge,
				Severity:    model.SeverityWarning,
				PersonID:    personID,
				PersonName:  person.DisplayName,
				Description: fmt.Sprintf("Age at death (%d years) exceeds %d years", age, MaxAgeAtDeath),
			})
		}
	}

	if birthDate > 0 {
		parentIssues, err := v.checkParentAges(person, birthDate/10000)
		if err != nil {
			return nil, err
		}
		issues = append(issues, parentIssues...)
	}
	return issues, nil
}

// checkParentAges compares each parent's birth year to the child's.
// Too-young beats too-old: a nine year old "mother" is one finding, not
// two.
func (v *TimelineValidator) checkParentAges(child *model.Person, childBirthYear int) ([]model.Issue, error) {
	parents, err := v.graph.Parents(child.ID)
	if err != nil {
		return nil, err
	}

	var issues []model.Issue
	for _, parent := range parents {
		parentFacts, err := v.graph.Facts(parent.ID)
		if err != nil {
			return nil, err
		}
		_, parentBirthDate := datedFact(model.FactsByType(parentFacts), model.FactBirth)
		if parentBirthDate <= 0 {
			continue
		}

		parentAge := childBirthYear - parentBirthDate/10000
		switch {
		case parentAge < MinParentAge:
			issues = append(issues, model.Issue{
				Type:        model.IssueParentTooYoung,
				Severity:    model.SeverityCritical,
				PersonID:    child.ID,
				PersonName:  child.DisplayName,
				ParentID:    parent.ID,
				ParentName:  parent.DisplayName,
				Description: fmt.Sprintf("Parent %s was only %d years old at child's birth", parent.DisplayName, parentAge),
			})
		case parentAge > MaxMotherAge && parent.Gender == model.GenderFemale:
			issues = append(issues, model.Issue{
				Type:        model.IssueMotherTooOld,
				Severity:    model.SeverityWarning,
				PersonID:    child.ID,
				PersonName:  child.DisplayName,
				ParentID:    parent.ID,
				ParentName:  parent.DisplayName,
				Description: fmt.Sprintf("Mother %s was %d years old at child's birth", parent.DisplayName, parentAge),
			})
		case parentAge > MaxFatherAge && parent.Gender == model.GenderMale:
			issues = append(issues, model.Issue{
				Type:        model.IssueFatherTooOld,
				Severity:    model.SeverityWarning,
				PersonID:    child.ID,
				PersonName:  child.DisplayName,
				ParentID:    parent.ID,
				ParentName:  parent.DisplayName,
				Description: fmt.Sprintf("Father %s was %d years old at child's birth", parent.DisplayName, parentAge),
			})
		}
	}
	return issues, nil
}

// ValidateAll checks every person in the store and keeps findings at or
// above minSeverity, most severe first, person name descending within a
// severity.
func (v *TimelineValidator) ValidateAll(minSeverity model.Severity) ([]model.Issue, error) {
	minRank := minSeverity.Rank()
	if minRank == 0 {
		minRank = model.SeverityInfo.Rank()
	}

	ids, err := v.graph.PersonIDs()
	if err != nil {
		return nil, err
	}

	var all []model.Issue
	for _, id := range ids {
		issues, err := v.ValidatePerson(id)
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			if issue.Severity.Rank() >= minRank {
				all = append(all, issue)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Severity.Rank() != all[j].Severity.Rank() {
			return all[i].Severity.Rank() > all[j].Severity.Rank()
		}
		if all[i].PersonName != all[j].PersonName {
			return all[i].PersonName > all[j].PersonName
		}
		return all[i].PersonID > all[j].PersonID
	})
	return all, nil
}

// datedFact returns the indexed fact of factType and its sort key, or a
// zero key when the fact is missing or undated.
func datedFact(byType map[string]model.Fact, factType string) (model.Fact, int) {
	f, ok := byType[factType]
	if !ok || f.DateSort == nil || *f.DateSort <= 0 {
		return f, 0
	}
	return f, *f.DateSort
}
