package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Snapshot is the JSON exchange format for loading a research cache from
// an external sync job. Persons carry their names, facts and source
// references inline; relationship edges sit at the top level because they
// reference two persons each.
type Snapshot struct {
	Persons []SnapshotPerson `json:"persons"`
	Parents []SnapshotEdge   `json:"parent_child"`
	Couples []SnapshotCouple `json:"couples"`
	Sources []SnapshotSource `json:"sources"`
}

type SnapshotPerson struct {
	ID          string           `json:"person_id"`
	DisplayName string           `json:"display_name"`
	Gender      string           `json:"gender"`
	Names       []SnapshotName   `json:"names"`
	Facts       []SnapshotFact   `json:"facts"`
	SourceRefs  []SnapshotSrcRef `json:"source_refs"`
}

type SnapshotName struct {
	Type    string `json:"name_type"`
	Given   string `json:"given_name"`
	Surname string `json:"surname"`
}

type SnapshotFact struct {
	Type         string `json:"fact_type"`
	DateSort     *int   `json:"date_sort"`
	DateOriginal string `json:"date_original"`
	Place        string `json:"place"`
}

type SnapshotSrcRef struct {
	SourceID string `json:"source_id"`
	Tag      string `json:"tag"`
}

type SnapshotEdge struct {
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
	Role     string `json:"parent_role"`
}

type SnapshotCouple struct {
	Person1ID     string `json:"person1_id"`
	Person2ID     string `json:"person2_id"`
	MarriageDate  string `json:"marriage_date"`
	MarriagePlace string `json:"marriage_place"`
}

type SnapshotSource struct {
	ID    string `json:"source_id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ImportStats reports how many rows an import wrote.
type ImportStats struct {
	Persons       int `json:"persons"`
	Names         int `json:"names"`
	Facts         int `json:"facts"`
	Relationships int `json:"relationships"`
	Couples       int `json:"couples"`
	Sources       int `json:"sources"`
	SourceRefs    int `json:"source_refs"`
}

// ImportJSON loads a snapshot file into the store. The whole import runs
// in one transaction; a malformed snapshot leaves the database untouched.
func (s *Store) ImportJSON(path string) (*ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()
	return s.importSnapshot(f)
}

func (s *Store) importSnapshot(r io.Reader) (*ImportStats, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stats := &ImportStats{}
	for _, src := range snap.Sources {
		if err := addSource(tx, src.ID, src.Title, src.URL); err != nil {
			return nil, err
		}
		stats.Sources++
	}
	for _, p := range snap.Persons {
		if p.ID == "" {
			return nil, fmt.Errorf("decode snapshot: person with empty person_id")
		}
		if err := upsertPerson(tx, p.ID, p.DisplayName, p.Gender); err != nil {
			return nil, err
		}
		stats.Persons++
		for _, n := range p.Names {
			if err := addName(tx, p.ID, n.Type, n.Given, n.Surname); err != nil {
				return nil, err
			}
			stats.Names++
		}
		for _, fa := range p.Facts {
			if err := addFact(tx, p.ID, fa.Type, fa.DateSort, fa.DateOriginal, fa.Place); err != nil {
				return nil, err
			}
			stats.Facts++
		}
		for _, ref := range p.SourceRefs {
			if err := addSourceRef(tx, p.ID, ref.SourceID, ref.Tag); err != nil {
				return nil, err
			}
			stats.SourceRefs++
		}
	}
	for _, e := range snap.Parents {
		if err := addParentChild(tx, e.ParentID, e.ChildID, e.Role); err != nil {
			return nil, err
		}
		stats.Relationships++
	}
	for _, c := range snap.Couples {
		if err := addCouple(tx, c.Person1ID, c.Person2ID, c.MarriageDate, c.MarriagePlace); err != nil {
			return nil, err
		}
		stats.Couples++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	s.InvalidateCache()
	return stats, nil
}
