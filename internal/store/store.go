// Package store provides read and write access to the genealogy research
// cache, a local SQLite snapshot of person records, names, facts,
// relationships and source references. All analysis runs against this
// snapshot; nothing here talks to a remote service.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/treelint/internal/model"
)

// Reader is the read surface the analysis layer depends on. Lookups for
// unknown persons return empty results rather than errors; an error always
// means the backing database failed.
type Reader interface {
	// Person returns the person row, or nil when the id is unknown.
	Person(id string) (*model.Person, error)
	// Names returns every name variant recorded for a person.
	Names(id string) ([]model.Name, error)
	// Facts returns a person's facts ordered by date_sort ascending with
	// undated facts last.
	Facts(id string) ([]model.Fact, error)
	// Parents returns the person's parents with their recorded role.
	Parents(id string) ([]model.Parent, error)
	// Children returns the person's children.
	Children(id string) ([]model.Person, error)
	// Spouses returns partners from couple relationships in either
	// direction.
	Spouses(id string) ([]model.Spouse, error)
	// Sources returns the source references attached to a person.
	Sources(id string) ([]model.SourceRef, error)
	// PersonsWithPrimaryName returns every person joined with their birth
	// name, including persons with no name row at all.
	PersonsWithPrimaryName() ([]model.PersonName, error)
	// PersonIDs returns every person id in the store.
	PersonIDs() ([]string, error)
}

// Options controls the store's per-person read cache. Analysis passes
// revisit the same persons constantly (pairwise scoring, tree walks), so
// the cache trades a little memory for a large cut in query volume.
type Options struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DefaultOptions enables the read cache with a 5 minute TTL.
func DefaultOptions() Options {
	return Options{CacheEnabled: true, CacheTTL: 5 * time.Minute}
}

// Store wraps the SQLite research cache.
type Store struct {
	db    *sql.DB
	cache *gocache.Cache
}

var _ Reader = (*Store)(nil)

// Open opens (or creates) the SQLite database at path. Use ":memory:" for
// an ephemeral store in tests.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if path == ":memory:" {
		// A second connection would see a different empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}

	s := &Store{db: db}
	if opts.CacheEnabled {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InvalidateCache drops every cached record. Writers call this after
// mutating the database.
func (s *Store) InvalidateCache() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

func (s *Store) cacheGet(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Store) cacheSet(key string, value interface{}) {
	if s.cache != nil {
		s.cache.Set(key, value, gocache.DefaultExpiration)
	}
}

// Person returns the person row for id, or nil when the id is unknown.
func (s *Store) Person(id string) (*model.Person, error) {
	if v, ok := s.cacheGet("person:" + id); ok {
		return v.(*model.Person), nil
	}
	var p model.Person
	err := s.db.QueryRow(
		`SELECT person_id, display_name, gender FROM persons WHERE person_id = ?`, id,
	).Scan(&p.ID, &p.DisplayName, &p.Gender)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query person %s: %w", id, err)
	}
	s.cacheSet("person:"+id, &p)
	return &p, nil
}

// Names returns every name variant recorded for a person.
func (s *Store) Names(id string) ([]model.Name, error) {
	if v, ok := s.cacheGet("names:" + id); ok {
		return v.([]model.Name), nil
	}
	rows, err := s.db.Query(
		`SELECT name_type, given_name, surname,
		        normalized_given, normalized_surname,
		        soundex_given, soundex_surname
		 FROM person_names WHERE person_id = ?
		 ORDER BY name_type, surname, given_name`, id)
	if err != nil {
		return nil, fmt.Errorf("query names for %s: %w", id, err)
	}
	defer rows.Close()

	var names []model.Name
	for rows.Next() {
		var n model.Name
		if err := rows.Scan(&n.Type, &n.Given, &n.Surname,
			&n.NormalizedGiven, &n.NormalizedSurname,
			&n.SoundexGiven, &n.SoundexSurname); err != nil {
			return nil, fmt.Errorf("scan name row: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate name rows: %w", err)
	}
	s.cacheSet("names:"+id, names)
	return names, nil
}

// Facts returns a person's facts ordered by date_sort ascending, undated
// facts last. Timeline checks rely on this ordering.
func (s *Store) Facts(id string) ([]model.Fact, error) {
	if v, ok := s.cacheGet("facts:" + id); ok {
		return v.([]model.Fact), nil
	}
	rows, err := s.db.Query(
		`SELECT fact_type, date_sort, date_original, place_normalized
		 FROM facts WHERE person_id = ?
		 ORDER BY date_sort IS NULL, date_sort`, id)
	if err != nil {
		return nil, fmt.Errorf("query facts for %s: %w", id, err)
	}
	defer rows.Close()

	var facts []model.Fact
	for rows.Next() {
		var f model.Fact
		var dateSort sql.NullInt64
		if err := rows.Scan(&f.Type, &dateSort, &f.DateOriginal, &f.Place); err != nil {
			return nil, fmt.Errorf("scan fact row: %w", err)
		}
		if dateSort.Valid {
			v := int(dateSort.Int64)
			f.DateSort = &v
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fact rows: %w", err)
	}
	s.cacheSet("facts:"+id, facts)
	return facts, nil
}

// Parents returns the person's parents with their recorded role.
func (s *Store) Parents(id string) ([]model.Parent, error) {
	if v, ok := s.cacheGet("parents:" + id); ok {
		return v.([]model.Parent), nil
	}
	rows, err := s.db.Query(
		`SELECT p.person_id, p.display_name, p.gender, pcr.parent_role
		 FROM parent_child_relationships pcr
		 JOIN persons p ON p.person_id = pcr.parent_id
		 WHERE pcr.child_id = ?
		 ORDER BY p.person_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query parents of %s: %w", id, err)
	}
	defer rows.Close()

	var parents []model.Parent
	for rows.Next() {
		var p model.Parent
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Gender, &p.Role); err != nil {
			return nil, fmt.Errorf("scan parent row: %w", err)
		}
		parents = append(parents, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parent rows: %w", err)
	}
	s.cacheSet("parents:"+id, parents)
	return parents, nil
}

// Children returns the person's children.
func (s *Store) Children(id string) ([]model.Person, error) {
	if v, ok := s.cacheGet("children:" + id); ok {
		return v.([]model.Person), nil
	}
	rows, err := s.db.Query(
		`SELECT p.person_id, p.display_name, p.gender
		 FROM parent_child_relationships pcr
		 JOIN persons p ON p.person_id = pcr.child_id
		 WHERE pcr.parent_id = ?
		 ORDER BY p.person_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query children of %s: %w", id, err)
	}
	defer rows.Close()

	var children []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Gender); err != nil {
			return nil, fmt.Errorf("scan child row: %w", err)
		}
		children = append(children, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate child rows: %w", err)
	}
	s.cacheSet("children:"+id, children)
	return children, nil
}

// Spouses returns partners recorded in couple relationships, regardless of
// which side of the couple row the person sits on.
func (s *Store) Spouses(id string) ([]model.Spouse, error) {
	if v, ok := s.cacheGet("spouses:" + id); ok {
		return v.([]model.Spouse), nil
	}
	rows, err := s.db.Query(
		`SELECT p.person_id, p.display_name, p.gender,
		        cr.marriage_date, cr.marriage_place
		 FROM couple_relationships cr
		 JOIN persons p ON p.person_id = CASE
		     WHEN cr.person1_id = ? THEN cr.person2_id
		     ELSE cr.person1_id
		 END
		 WHERE cr.person1_id = ? OR cr.person2_id = ?
		 ORDER BY p.person_id`, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("query spouses of %s: %w", id, err)
	}
	defer rows.Close()

	var spouses []model.Spouse
	for rows.Next() {
		var sp model.Spouse
		if err := rows.Scan(&sp.ID, &sp.DisplayName, &sp.Gender,
			&sp.MarriageDate, &sp.MarriagePlace); err != nil {
			return nil, fmt.Errorf("scan spouse row: %w", err)
		}
		spouses = append(spouses, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spouse rows: %w", err)
	}
	s.cacheSet("spouses:"+id, spouses)
	return spouses, nil
}

// Sources returns the source references attached to a person.
func (s *Store) Sources(id string) ([]model.SourceRef, error) {
	if v, ok := s.cacheGet("sources:" + id); ok {
		return v.([]model.SourceRef), nil
	}
	rows, err := s.db.Query(
		`SELECT s.source_id, s.title, psr.tag
		 FROM person_source_refs psr
		 JOIN sources s ON s.source_id = psr.source_id
		 WHERE psr.person_id = ?
		 ORDER BY s.source_id, psr.tag`, id)
	if err != nil {
		return nil, fmt.Errorf("query sources for %s: %w", id, err)
	}
	defer rows.Close()

	var refs []model.SourceRef
	for rows.Next() {
		var r model.SourceRef
		if err := rows.Scan(&r.SourceID, &r.Title, &r.Tag); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}
	s.cacheSet("sources:"+id, refs)
	return refs, nil
}

// PersonsWithPrimaryName returns every person joined with their birth name.
// Persons without a name row still appear, with empty name columns, so
// blocking can decide for itself what to exclude.
func (s *Store) PersonsWithPrimaryName() ([]model.PersonName, error) {
	rows, err := s.db.Query(
		`SELECT p.person_id, p.display_name, p.gender,
		        pn.given_name, pn.surname,
		        pn.normalized_given, pn.normalized_surname,
		        pn.soundex_given, pn.soundex_surname
		 FROM persons p
		 LEFT JOIN person_names pn
		     ON pn.person_id = p.person_id AND pn.name_type = ?
		 ORDER BY p.person_id`, model.NameTypeBirth)
	if err != nil {
		return nil, fmt.Errorf("query persons with names: %w", err)
	}
	defer rows.Close()

	var persons []model.PersonName
	for rows.Next() {
		var p model.PersonName
		var given, surname, nGiven, nSurname, sGiven, sSurname sql.NullString
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Gender,
			&given, &surname, &nGiven, &nSurname, &sGiven, &sSurname); err != nil {
			return nil, fmt.Errorf("scan person name row: %w", err)
		}
		p.Given = given.String
		p.Surname = surname.String
		p.NormalizedGiven = nGiven.String
		p.NormalizedSurname = nSurname.String
		p.SoundexGiven = sGiven.String
		p.SoundexSurname = sSurname.String
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate person name rows: %w", err)
	}
	return persons, nil
}

// PersonIDs returns every person id in the store.
func (s *Store) PersonIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT person_id FROM persons ORDER BY person_id`)
	if err != nil {
		return nil, fmt.Errorf("query person ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan person id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate person ids: %w", err)
	}
	return ids, nil
}

// Stats summarizes the store contents for the CLI.
type Stats struct {
	Persons       int `json:"persons"`
	Names         int `json:"names"`
	Facts         int `json:"facts"`
	Relationships int `json:"relationships"`
	Couples       int `json:"couples"`
	Sources       int `json:"sources"`
	SourceRefs    int `json:"source_refs"`
}

// CountStats counts rows per table.
func (s *Store) CountStats() (*Stats, error) {
	st := &Stats{}
	counts := []struct {
		table string
		dst   *int
	}{
		{"persons", &st.Persons},
		{"person_names", &st.Names},
		{"facts", &st.Facts},
		{"parent_child_relationships", &st.Relationships},
		{"couple_relationships", &st.Couples},
		{"sources", &st.Sources},
		{"person_source_refs", &st.SourceRefs},
	}
	for _, c := range counts {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return st, nil
}
