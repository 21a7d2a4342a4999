package score

import (
	"fmt"
	"math"

	"github.com/xrash/smetrics"

	"github.com/ppiankov/treelint/internal/model"
)

// Graph is the slice of the store the scorer reads while comparing two
// persons. Facts, parents and spouses are fetched per pair; the store's
// read cache keeps repeat lookups cheap.
type Graph interface {
	Facts(id string) ([]model.Fact, error)
	Parents(id string) ([]model.Parent, error)
	Spouses(id string) ([]model.Spouse, error)
}

// Scorer computes a weighted similarity between two person records.
//
// Factor weights:
//
//	surname         0.25
//	given name      0.20
//	birth year      0.15
//	birth place     0.10
//	death year      0.10
//	shared parents  0.10
//	shared spouses  0.05
//
// A factor with missing evidence on either side contributes nothing, so
// two sparse records never look alike by omission. The remaining 0.05 is
// reserved for source overlap, which is not scored yet; a perfect match
// therefore tops out at 0.95.
type Scorer struct {
	graph Graph
}

// NewScorer creates a scorer reading person detail from graph.
func NewScorer(graph Graph) *Scorer {
	return &Scorer{graph: graph}
}

// Similarity scores how likely a and b describe the same individual.
// The result is in [0, 1].
func (s *Scorer) Similarity(a, b model.PersonName) (float64, error) {
	comp, err := s.Compare(a, b)
	if err != nil {
		return 0, err
	}
	return comp.Score, nil
}

// Compare scores a against b and keeps the factor-by-factor breakdown.
func (s *Scorer) Compare(a, b model.PersonName) (*model.Comparison, error) {
	factsA, err := s.graph.Facts(a.ID)
	if err != nil {
		return nil, err
	}
	factsB, err := s.graph.Facts(b.ID)
	if err != nil {
		return nil, err
	}
	parentsA, err := s.graph.Parents(a.ID)
	if err != nil {
		return nil, err
	}
	parentsB, err := s.graph.Parents(b.ID)
	if err != nil {
		return nil, err
	}
	spousesA, err := s.graph.Spouses(a.ID)
	if err != nil {
		return nil, err
	}
	spousesB, err := s.graph.Spouses(b.ID)
	if err != nil {
		return nil, err
	}

	byTypeA := model.FactsByType(factsA)
	byTypeB := model.FactsByType(factsB)

	factors := []model.Factor{
		s.surnameFactor(a, b),
		s.givenNameFactor(a, b),
		s.yearFactor("birth_year", 0.15, factOf(byTypeA, model.FactBirth), factOf(byTypeB, model.FactBirth)),
		s.placeFactor(factOf(byTypeA, model.FactBirth), factOf(byTypeB, model.FactBirth)),
		s.yearFactor("death_year", 0.10, factOf(byTypeA, model.FactDeath), factOf(byTypeB, model.FactDeath)),
		s.kinFactor("shared_parents", 0.10, parentNames(parentsA), parentNames(parentsB)),
		s.kinFactor("shared_spouses", 0.05, spouseNames(spousesA), spouseNames(spousesB)),
	}

	total := 0.0
	for _, f := range factors {
		total += f.Contribution
	}
	total = math.Min(math.Max(total, 0), 1)

	return &model.Comparison{
		Person1ID:   a.ID,
		Person1Name: a.DisplayName,
		Person2ID:   b.ID,
		Person2Name: b.DisplayName,
		Score:       total,
		Factors:     factors,
	}, nil
}

// surnameFactor awards the full weight for an exact normalized match and
// the edit ratio share otherwise.
func (s *Scorer) surnameFactor(a, b model.PersonName) model.Factor {
	f := model.Factor{Name: "surname", Weight: 0.25}
	if a.NormalizedSurname == "" || b.NormalizedSurname == "" {
		f.Detail = "missing on one or both records"
		return f
	}
	if a.NormalizedSurname == b.NormalizedSurname {
		f.Contribution = f.Weight
		f.Detail = "exact match"
		return f
	}
	r := editRatio(a.NormalizedSurname, b.NormalizedSurname)
	f.Contribution = f.Weight * r
	f.Detail = fmt.Sprintf("edit ratio %.2f", r)
	return f
}

// givenNameFactor blends Jaro-Winkler with a partial edit ratio so that
// both transpositions ("Jon"/"John") and containment ("Ann"/"Hannah")
// earn credit.
func (s *Scorer) givenNameFactor(a, b model.PersonName) model.Factor {
	f := model.Factor{Name: "given_name", Weight: 0.20}
	if a.NormalizedGiven == "" || b.NormalizedGiven == "" {
		f.Detail = "missing on one or both records"
		return f
	}
	jw := smetrics.JaroWinkler(a.NormalizedGiven, b.NormalizedGiven, 0.7, 4)
	pr := partialRatio(a.NormalizedGiven, b.NormalizedGiven)
	f.Contribution = f.Weight * (jw + pr) / 2
	if a.NormalizedGiven == b.NormalizedGiven {
		f.Detail = "exact match"
	} else {
		f.Detail = fmt.Sprintf("jaro-winkler %.2f, partial %.2f", jw, pr)
	}
	return f
}

// yearFactor awards the full weight for identical years and a tapered
// share for years up to two apart. Anything further earns nothing.
func (s *Scorer) yearFactor(name string, weight float64, fa, fb *model.Fact) model.Factor {
	f := model.Factor{Name: name, Weight: weight}
	ya, yb := factYear(fa), factYear(fb)
	if ya == 0 || yb == 0 {
		f.Detail = "no usable date on one or both records"
		return f
	}
	diff := ya - yb
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		f.Contribution = weight
		f.Detail = fmt.Sprintf("same year (%d)", ya)
	case diff <= 2:
		f.Contribution = weight * (1 - float64(diff)/10)
		f.Detail = fmt.Sprintf("%d year(s) apart", diff)
	default:
		f.Detail = fmt.Sprintf("%d years apart", diff)
	}
	return f
}

// placeFactor compares birth places, exact first, token overlap second.
func (s *Scorer) placeFactor(fa, fb *model.Fact) model.Factor {
	f := model.Factor{Name: "birth_place", Weight: 0.10}
	var pa, pb string
	if fa != nil {
		pa = Normalize(fa.Place)
	}
	if fb != nil {
		pb = Normalize(fb.Place)
	}
	if pa == "" || pb == "" {
		f.Detail = "no place on one or both records"
		return f
	}
	if pa == pb {
		f.Contribution = f.Weight
		f.Detail = "exact match"
		return f
	}
	r := tokenSetRatio(pa, pb)
	f.Contribution = f.Weight * r
	f.Detail = fmt.Sprintf("token overlap %.2f", r)
	return f
}

// kinFactor scores the overlap between two sets of relative names,
// proportional to the larger set.
func (s *Scorer) kinFactor(name string, weight float64, namesA, namesB map[string]struct{}) model.Factor {
	f := model.Factor{Name: name, Weight: weight}
	if len(namesA) == 0 || len(namesB) == 0 {
		f.Detail = "none recorded on one or both records"
		return f
	}
	shared := 0
	for n := range namesA {
		if _, ok := namesB[n]; ok {
			shared++
		}
	}
	max := len(namesA)
	if len(namesB) > max {
		max = len(namesB)
	}
	f.Contribution = weight * float64(shared) / float64(max)
	f.Detail = fmt.Sprintf("%d shared of %d", shared, max)
	return f
}

func factOf(byType map[string]model.Fact, factType string) *model.Fact {
	if f, ok := byType[factType]; ok {
		return &f
	}
	return nil
}

func factYear(f *model.Fact) int {
	if f == nil {
		return 0
	}
	year, ok := f.Year()
	if !ok {
		return 0
	}
	return year
}

func parentNames(parents []model.Parent) map[string]struct{} {
	names := make(map[string]struct{}, len(parents))
	for _, p := range parents {
		if n := Normalize(p.DisplayName); n != "" {
			names[n] = struct{}{}
		}
	}
	return names
}

func spouseNames(spouses []model.Spouse) map[string]struct{} {
	names := make(map[string]struct{}, len(spouses))
	for _, sp := range spouses {
		if n := Normalize(sp.DisplayName); n != "" {
			names[n] = struct{}{}
		}
	}
	return names
}
