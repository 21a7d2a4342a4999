package dedupe

import (
	"sort"
	"strings"

	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/score"
)

// ClusterBuilder groups phonetically similar person records into review
// clusters using union-find over above-threshold pairs.
type ClusterBuilder struct {
	graph  Graph
	scorer *score.Scorer
}

// NewClusterBuilder creates a cluster builder over graph.
func NewClusterBuilder(graph Graph, scorer *score.Scorer) *ClusterBuilder {
	return &ClusterBuilder{graph: graph, scorer: scorer}
}

// DetectClusters blocks persons by surname soundex, links every pair
// scoring at or above threshold, and returns the connected components of
// size two or more. surnameFilter, when non-empty, restricts candidates
// to surnames containing it (compared in normalized form).
//
// The member with the smallest person id represents each cluster, so the
// same data always yields the same representative regardless of link
// order. Members carry their similarity to the representative, which
// scores 1 against itself.
func (cb *ClusterBuilder) DetectClusters(surnameFilter string, threshold float64) ([]model.NameCluster, error) {
	if threshold <= 0 {
		threshold = DefaultClusterThreshold
	}

	persons, err := cb.graph.PersonsWithPrimaryName()
	if err != nil {
		return nil, err
	}
	if surnameFilter != "" {
		filter := score.Normalize(surnameFilter)
		var kept []model.PersonName
		for _, p := range persons {
			if strings.Contains(p.NormalizedSurname, filter) {
				kept = append(kept, p)
			}
		}
		persons = kept
	}

	uf := newUnionFind()
	byID := make(map[string]model.PersonName, len(persons))
	for _, members := range phoneticBlocks(persons) {
		for _, p := range members {
			byID[p.ID] = p
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				s, err := cb.scorer.Similarity(members[i], members[j])
				if err != nil {
					return nil, err
				}
				if s >= threshold {
					uf.union(members[i].ID, members[j].ID)
				}
			}
		}
	}

	components := make(map[string][]string)
	for id := range byID {
		root := uf.find(id)
		components[root] = append(components[root], id)
	}

	var clusters []model.NameCluster
	for _, ids := range components {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		rep := byID[ids[0]]

		members := make([]model.ClusterMember, 0, len(ids))
		for _, id := range ids {
			member := model.ClusterMember{PersonID: id, Name: byID[id].DisplayName, Score: 1}
			if id != rep.ID {
				s, err := cb.scorer.Similarity(byID[id], rep)
				if err != nil {
					return nil, err
				}
				member.Score = round3(s)
			}
			members = append(members, member)
		}
		sort.Slice(members, func(i, j int) bool {
			if members[i].Score != members[j].Score {
				return members[i].Score > members[j].Score
			}
			return members[i].PersonID < members[j].PersonID
		})

		clusters = append(clusters, model.NameCluster{
			RepresentativeID:   rep.ID,
			RepresentativeName: rep.DisplayName,
			Size:               len(ids),
			Members:            members,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size != clusters[j].Size {
			return clusters[i].Size > clusters[j].Size
		}
		return clusters[i].RepresentativeID < clusters[j].RepresentativeID
	})
	return clusters, nil
}

// unionFind is a disjoint set over person ids with path compression.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	root, ok := u.parent[x]
	if !ok || root == x {
		u.parent[x] = x
		return x
	}
	r := u.find(root)
	u.parent[x] = r
	return r
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
