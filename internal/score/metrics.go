package score

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"
)

// String similarity helpers shared by the scorer. All of them expect
// normalized input and return values in [0, 1].

// editRatio is a length-weighted edit similarity: substitutions cost two
// so that it equals (len(a)+len(b)-distance) / (len(a)+len(b)).
func editRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	total := len(a) + len(b)
	return float64(total-dist) / float64(total)
}

// partialRatio slides the shorter string across the longer one and keeps
// the best window ratio, so a name contained in a longer form still
// scores high.
func partialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}
	if len(shorter) == len(longer) {
		return editRatio(shorter, longer)
	}
	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		if r := editRatio(shorter, longer[i:i+len(shorter)]); r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return best
}

// tokenSetRatio compares two token sets: shared tokens are split from
// the leftovers on each side and the best pairwise edit ratio of the
// three recombined strings wins. Word order and repeated words stop
// mattering, which suits place names.
func tokenSetRatio(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}

	var shared, onlyA, onlyB []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			shared = append(shared, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(shared, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := editRatio(base, combinedA)
	if r := editRatio(base, combinedB); r > best {
		best = r
	}
	if r := editRatio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}
