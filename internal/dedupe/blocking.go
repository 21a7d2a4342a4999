// Package dedupe finds likely duplicate person records and clusters of
// phonetically similar names. Candidate generation is blocked so the
// pairwise scorer never sees the full cross product.
package dedupe

import "github.com/ppiankov/treelint/internal/model"

// Graph is the slice of the store this package reads.
type Graph interface {
	PersonsWithPrimaryName() ([]model.PersonName, error)
}

// blockKey is the exact blocking tuple.
type blockKey struct {
	surname string
	given   string
}

// exactBlocks groups candidates by (normalized surname, normalized given
// name). Persons with neither field populated cannot be blocked and are
// dropped rather than lumped into one giant empty-key block.
func exactBlocks(persons []model.PersonName) map[blockKey][]model.PersonName {
	blocks := make(map[blockKey][]model.PersonName)
	for _, p := range persons {
		if p.NormalizedSurname == "" && p.NormalizedGiven == "" {
			continue
		}
		key := blockKey{surname: p.NormalizedSurname, given: p.NormalizedGiven}
		blocks[key] = append(blocks[key], p)
	}
	return blocks
}

// phoneticBlocks groups candidates by surname soundex, catching spelling
// drift the exact blocks split apart. Empty codes are unblockable and
// dropped.
func phoneticBlocks(persons []model.PersonName) map[string][]model.PersonName {
	blocks := make(map[string][]model.PersonName)
	for _, p := range persons {
		if p.SoundexSurname == "" {
			continue
		}
		blocks[p.SoundexSurname] = append(blocks[p.SoundexSurname], p)
	}
	return blocks
}
