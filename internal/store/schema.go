package store

import (
	"fmt"
	"strings"
)

// schemaSQL is the research cache layout. Name rows carry normalized and
// soundex columns computed at write time so every reader blocks and
// compares on identical keys.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS persons (
    person_id    TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    gender       TEXT NOT NULL DEFAULT 'Unknown'
);

CREATE TABLE IF NOT EXISTS person_names (
    person_id          TEXT NOT NULL REFERENCES persons(person_id),
    name_type          TEXT NOT NULL DEFAULT 'BirthName',
    given_name         TEXT NOT NULL DEFAULT '',
    surname            TEXT NOT NULL DEFAULT '',
    normalized_given   TEXT NOT NULL DEFAULT '',
    normalized_surname TEXT NOT NULL DEFAULT '',
    soundex_given      TEXT NOT NULL DEFAULT '',
    soundex_surname    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_person_names_person ON person_names(person_id);
CREATE INDEX IF NOT EXISTS idx_person_names_exact ON person_names(normalized_surname, normalized_given);
CREATE INDEX IF NOT EXISTS idx_person_names_soundex ON person_names(soundex_surname);

CREATE TABLE IF NOT EXISTS facts (
    person_id        TEXT NOT NULL REFERENCES persons(person_id),
    fact_type        TEXT NOT NULL,
    date_sort        INTEGER,
    date_original    TEXT NOT NULL DEFAULT '',
    place_normalized TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_facts_person ON facts(person_id);

CREATE TABLE IF NOT EXISTS parent_child_relationships (
    parent_id   TEXT NOT NULL,
    child_id    TEXT NOT NULL,
    parent_role TEXT NOT NULL DEFAULT '',
    UNIQUE(parent_id, child_id)
);

CREATE INDEX IF NOT EXISTS idx_pcr_child ON parent_child_relationships(child_id);
CREATE INDEX IF NOT EXISTS idx_pcr_parent ON parent_child_relationships(parent_id);

CREATE TABLE IF NOT EXISTS couple_relationships (
    person1_id     TEXT NOT NULL,
    person2_id     TEXT NOT NULL,
    marriage_date  TEXT NOT NULL DEFAULT '',
    marriage_place TEXT NOT NULL DEFAULT '',
    UNIQUE(person1_id, person2_id)
);

CREATE INDEX IF NOT EXISTS idx_couples_p1 ON couple_relationships(person1_id);
CREATE INDEX IF NOT EXISTS idx_couples_p2 ON couple_relationships(person2_id);

CREATE TABLE IF NOT EXISTS sources (
    source_id TEXT PRIMARY KEY,
    title     TEXT NOT NULL DEFAULT '',
    url       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS person_source_refs (
    person_id TEXT NOT NULL,
    source_id TEXT NOT NULL,
    tag       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_psr_person ON person_source_refs(person_id);
`

// InitSchema creates every table and index the store depends on. Safe to
// call on an existing database.
func (s *Store) InitSchema() error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
