package model

// Gender values as stored in the research cache.
const (
	GenderMale    = "Male"
	GenderFemale  = "Female"
	GenderUnknown = "Unknown"
)

// Fact types that matter to the analysis. The cache may hold others;
// they pass through untouched.
const (
	FactBirth       = "Birth"
	FactDeath       = "Death"
	FactChristening = "Christening"
	FactBurial      = "Burial"
	FactMarriage    = "Marriage"
	FactResidence   = "Residence"
	FactCensus      = "Census"
)

// The primary name form recorded for a person.
const NameTypeBirth = "BirthName"

// Person is one individual from the research cache.
type Person struct {
	ID          string `json:"person_id"`
	DisplayName string `json:"display_name"`
	Gender      string `json:"gender"`
}

// Name is one name form attached to a person. The normalized and
// phonetic columns are computed at write time so every reader blocks
// and compares on identical keys.
type Name struct {
	Type              string `json:"name_type"`
	Given             string `json:"given_name"`
	Surname           string `json:"surname"`
	NormalizedGiven   string `json:"normalized_given,omitempty"`
	NormalizedSurname string `json:"normalized_surname,omitempty"`
	SoundexGiven      string `json:"soundex_given,omitempty"`
	SoundexSurname    string `json:"soundex_surname,omitempty"`
}

// Fact is a dated or undated life event. DateSort is a sortable
// YYYYMMDD key with zeroed segments for partial dates; nil means the
// event carries no usable date.
type Fact struct {
	Type         string `json:"fact_type"`
	DateSort     *int   `json:"date_sort,omitempty"`
	DateOriginal string `json:"date_original,omitempty"`
	Place        string `json:"place,omitempty"`
}

// Year returns the calendar year encoded in the sort key.
func (f Fact) Year() (int, bool) {
	if f.DateSort == nil {
		return 0, false
	}
	return *f.DateSort / 10000, true
}

// FactsByType indexes facts by type, keeping one fact per type. Later
// facts win except that a dated fact is never displaced by an undated
// one; with the store's date_sort ordering that selects the latest
// dated fact of each type.
func FactsByType(facts []Fact) map[string]Fact {
	byType := make(map[string]Fact, len(facts))
	for _, f := range facts {
		if prev, ok := byType[f.Type]; ok && prev.DateSort != nil && f.DateSort == nil {
			continue
		}
		byType[f.Type] = f
	}
	return byType
}

// Parent is a parent of some person together with the recorded role.
type Parent struct {
	Person
	Role string `json:"parent_role,omitempty"`
}

// Spouse is a partner from a couple relationship with whatever marriage
// detail the cache carries.
type Spouse struct {
	Person
	MarriageDate  string `json:"marriage_date,omitempty"`
	MarriagePlace string `json:"marriage_place,omitempty"`
}

// SourceRef ties a person to a cited source. Tag names the fact type
// the citation was attached to, when known.
type SourceRef struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Tag      string `json:"tag,omitempty"`
}

// PersonName pairs a person with their primary name fields, the working
// unit for blocking and similarity scoring. Name fields are empty for
// persons without a recorded birth name.
type PersonName struct {
	ID                string `json:"person_id"`
	DisplayName       string `json:"display_name"`
	Gender            string `json:"gender"`
	Given             string `json:"given_name"`
	Surname           string `json:"surname"`
	NormalizedGiven   string `json:"normalized_given"`
	NormalizedSurname string `json:"normalized_surname"`
	SoundexGiven      string `json:"soundex_given,omitempty"`
	SoundexSurname    string `json:"soundex_surname,omitempty"`
}

// PersonProfile bundles everything known about one person for display.
type PersonProfile struct {
	Person   Person      `json:"person"`
	Names    []Name      `json:"names"`
	Facts    []Fact      `json:"facts"`
	Parents  []Parent    `json:"parents"`
	Children []Person    `json:"children"`
	Spouses  []Spouse    `json:"spouses"`
	Sources  []SourceRef `json:"sources"`
}
