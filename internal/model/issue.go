package model

import "fmt"

// Severity grades a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank maps severity to a sortable weight. Unknown values rank below
// info so malformed data never outranks real findings.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity normalizes a user-supplied severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return Severity(s), nil
	case "":
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("unknown severity %q (expected info, warning or critical)", s)
	}
}

// Issue types reported by the relationship and timeline checks.
const (
	IssueCircularAncestry    = "circular_ancestry"
	IssueTooManyParents      = "too_many_parents"
	IssueMultipleMothers     = "multiple_mothers"
	IssueMultipleFathers     = "multiple_fathers"
	IssueConcurrentMarriages = "multiple_concurrent_marriages"
	IssueDeathBeforeBirth    = "death_before_birth"
	IssueImplausibleAge      = "implausible_age_at_death"
	IssueParentTooYoung      = "parent_too_young"
	IssueMotherTooOld        = "mother_too_old"
	IssueFatherTooOld        = "father_too_old"
)

// Issue is a single finding against one person.
type Issue struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	PersonID    string   `json:"person_id"`
	PersonName  string   `json:"person_name,omitempty"`
	Description string   `json:"description"`

	// Cycle closes the loop for circular_ancestry findings: it starts
	// and ends with the repeated person id.
	Cycle []string `json:"cycle,omitempty"`

	// ParentID and ParentName identify the other party for parent age
	// findings (parent_too_young, mother_too_old, father_too_old).
	ParentID   string `json:"parent_id,omitempty"`
	ParentName string `json:"parent_name,omitempty"`
}
