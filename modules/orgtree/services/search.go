package services

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
)

const DefaultSearchLimit = 20

type SearchHit struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Path []PathItem `json:"path"`
}

// Search ranks nodes whose name fuzzily contains query, closest first. Ties
// keep tree order.
func (s *OrgTreeService) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchHit{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	roots, err := s.Forest(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]*orgnode.OrganizationNode, 0, 64)
	for _, root := range roots {
		orgnode.Walk(root, func(n *orgnode.OrganizationNode, _ int) bool {
			nodes = append(nodes, n)
			return true
		})
	}
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}

	hits := make([]SearchHit, 0, len(ranks))
	for _, rank := range ranks {
		n := nodes[rank.OriginalIndex]
		path := orgnode.PathTo(roots, n.ID)
		hit := SearchHit{ID: n.ID, Name: n.Name, Path: make([]PathItem, 0, len(path))}
		for _, p := range path {
			hit.Path = append(hit.Path, PathItem{ID: p.ID, Name: p.Name})
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
