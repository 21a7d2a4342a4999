package store

import (
	"database/sql"
	"fmt"

	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/score"
)

// execer is satisfied by both *sql.DB and *sql.Tx so the importer can run
// the same statements inside a transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Write helpers used by the importer, the init command and test fixtures.
// Name writes compute the normalized and soundex columns so readers never
// have to re-derive blocking keys.

// UpsertPerson inserts or replaces a person row.
func (s *Store) UpsertPerson(id, displayName, gender string) error {
	return upsertPerson(s.db, id, displayName, gender)
}

// AddName records a name variant for a person. Normalized forms and
// soundex codes are derived here, at write time.
func (s *Store) AddName(personID, nameType, given, surname string) error {
	return addName(s.db, personID, nameType, given, surname)
}

// AddFact records a fact. dateSort is nil for undated facts.
func (s *Store) AddFact(personID, factType string, dateSort *int, dateOriginal, place string) error {
	return addFact(s.db, personID, factType, dateSort, dateOriginal, place)
}

// AddParentChild records a parent-child edge. Duplicate edges are ignored.
func (s *Store) AddParentChild(parentID, childID, role string) error {
	return addParentChild(s.db, parentID, childID, role)
}

// AddCouple records a couple relationship. Duplicate couples are ignored.
func (s *Store) AddCouple(person1ID, person2ID, marriageDate, marriagePlace string) error {
	return addCouple(s.db, person1ID, person2ID, marriageDate, marriagePlace)
}

// AddSource inserts or replaces a source row.
func (s *Store) AddSource(sourceID, title, url string) error {
	return addSource(s.db, sourceID, title, url)
}

// AddSourceRef attaches a source to a person, optionally tagged with the
// fact type the source documents.
func (s *Store) AddSourceRef(personID, sourceID, tag string) error {
	return addSourceRef(s.db, personID, sourceID, tag)
}

func upsertPerson(e execer, id, displayName, gender string) error {
	if gender == "" {
		gender = model.GenderUnknown
	}
	_, err := e.Exec(
		`INSERT INTO persons (person_id, display_name, gender) VALUES (?, ?, ?)
		 ON CONFLICT(person_id) DO UPDATE SET display_name = excluded.display_name, gender = excluded.gender`,
		id, displayName, gender)
	if err != nil {
		return fmt.Errorf("upsert person %s: %w", id, err)
	}
	return nil
}

func addName(e execer, personID, nameType, given, surname string) error {
	if nameType == "" {
		nameType = model.NameTypeBirth
	}
	_, err := e.Exec(
		`INSERT INTO person_names
		     (person_id, name_type, given_name, surname,
		      normalized_given, normalized_surname, soundex_given, soundex_surname)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		personID, nameType, given, surname,
		score.Normalize(given), score.Normalize(surname),
		score.PhoneticCode(given), score.PhoneticCode(surname))
	if err != nil {
		return fmt.Errorf("add name for %s: %w", personID, err)
	}
	return nil
}

func addFact(e execer, personID, factType string, dateSort *int, dateOriginal, place string) error {
	var ds interface{}
	if dateSort != nil {
		ds = *dateSort
	}
	_, err := e.Exec(
		`INSERT INTO facts (person_id, fact_type, date_sort, date_original, place_normalized)
		 VALUES (?, ?, ?, ?, ?)`,
		personID, factType, ds, dateOriginal, place)
	if err != nil {
		return fmt.Errorf("add fact for %s: %w", personID, err)
	}
	return nil
}

func addParentChild(e execer, parentID, childID, role string) error {
	_, err := e.Exec(
		`INSERT OR IGNORE INTO parent_child_relationships (parent_id, child_id, parent_role)
		 VALUES (?, ?, ?)`,
		parentID, childID, role)
	if err != nil {
		return fmt.Errorf("add parent-child %s -> %s: %w", parentID, childID, err)
	}
	return nil
}

func addCouple(e execer, person1ID, person2ID, marriageDate, marriagePlace string) error {
	_, err := e.Exec(
		`INSERT OR IGNORE INTO couple_relationships (person1_id, person2_id, marriage_date, marriage_place)
		 VALUES (?, ?, ?, ?)`,
		person1ID, person2ID, marriageDate, marriagePlace)
	if err != nil {
		return fmt.Errorf("add couple %s + %s: %w", person1ID, person2ID, err)
	}
	return nil
}

func addSource(e execer, sourceID, title, url string) error {
	_, err := e.Exec(
		`INSERT INTO sources (source_id, title, url) VALUES (?, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET title = excluded.title, url = excluded.url`,
		sourceID, title, url)
	if err != nil {
		return fmt.Errorf("add source %s: %w", sourceID, err)
	}
	return nil
}

func addSourceRef(e execer, personID, sourceID, tag string) error {
	_, err := e.Exec(
		`INSERT INTO person_source_refs (person_id, source_id, tag) VALUES (?, ?, ?)`,
		personID, sourceID, tag)
	if err != nil {
		return fmt.Errorf("add source ref %s -> %s: %w", personID, sourceID, err)
	}
	return nil
}
