package report

import (
	"strings"
	"testing"
)

func TestPersonURL(t *testing.T) {
	got := PersonURL("KWRT-001")
	want := "https://www.familysearch.org/tree/person/details/KWRT-001"
	if got != want {
		t.Errorf("PersonURL = %q, want %q", got, want)
	}
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("Mary", "Stone", "1820", "Boston, Massachusetts")
	for _, part := range []string{
		"https://www.familysearch.org/search/tree/results?",
		"givenName=Mary",
		"surname=Stone",
		"birthLikeDate=1820",
		"birthLikePlace=Boston%2C+Massachusetts",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("SearchURL = %q, missing %q", got, part)
		}
	}

	if got := SearchURL("", "", "", ""); got != "https://www.familysearch.org/search/tree/results" {
		t.Errorf("Empty SearchURL = %q", got)
	}
}

func TestRecordSearchURL(t *testing.T) {
	got := RecordSearchURL("1988", "John", "Smith")
	for _, part := range []string{
		"https://www.familysearch.org/search/record/results?",
		"collectionId=1988",
		"givenName=John",
		"surname=Smith",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("RecordSearchURL = %q, missing %q", got, part)
		}
	}

	if got := RecordSearchURL("", "", ""); got != "https://www.familysearch.org/search/record/results" {
		t.Errorf("Empty RecordSearchURL = %q", got)
	}
}
