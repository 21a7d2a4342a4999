package report

import (
	"fmt"
	"net/url"
)

const familySearchBase = "https://www.familysearch.org"

// PersonURL returns the FamilySearch person details page for an id.
func PersonURL(personID string) string {
	return fmt.Sprintf("%s/tree/person/details/%s", familySearchBase, url.PathEscape(personID))
}

// SearchURL returns a FamilySearch tree search pre-filled with whatever
// name and birth hints are available. Empty parameters are omitted.
func SearchURL(givenName, surname, birthYear, birthPlace string) string {
	params := url.Values{}
	if givenName != "" {
		params.Set("givenName", givenName)
	}
	if surname != "" {
		params.Set("surname", surname)
	}
	if birthYear != "" {
		params.Set("birthLikeDate", birthYear)
	}
	if birthPlace != "" {
		params.Set("birthLikePlace", birthPlace)
	}

	base := familySearchBase + "/search/tree/results"
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

// RecordSearchURL returns a FamilySearch historical record search,
// optionally scoped to one collection.
func RecordSearchURL(collectionID, givenName, surname string) string {
	params := url.Values{}
	if givenName != "" {
		params.Set("givenName", givenName)
	}
	if surname != "" {
		params.Set("surname", surname)
	}
	if collectionID != "" {
		params.Set("collectionId", collectionID)
	}

	base := familySearchBase + "/search/record/results"
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}
