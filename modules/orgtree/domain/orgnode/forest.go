package orgnode

import (
	"sort"
	"strings"
)

// Record is the flat shape a tree store hands back: one row per node with a
// parent reference.
type Record struct {
	ID           string   `json:"id"`
	ParentID     *string  `json:"parent_id"`
	Name         string   `json:"name"`
	DisplayOrder int      `json:"display_order"`
	Leader       *Member  `json:"leader,omitempty"`
	Members      []Member `json:"members,omitempty"`
}

func lessRecord(a, b Record) bool {
	if a.DisplayOrder != b.DisplayOrder {
		return a.DisplayOrder < b.DisplayOrder
	}
	na := strings.TrimSpace(a.Name)
	nb := strings.TrimSpace(b.Name)
	if na != nb {
		return na < nb
	}
	return a.ID < b.ID
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return lessRecord(records[i], records[j])
	})
}

// BuildForest assembles flat records into ordered trees.
//
// A record whose parent is missing (or nil/empty) is a root. Siblings are
// ordered by display order, trimmed name, then id. Every record is attached at
// most once, so a parent cycle in the source data never yields a cyclic tree:
// records only reachable through such a cycle become additional roots.
func BuildForest(records []Record) []*OrganizationNode {
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID]; dup {
			continue
		}
		byID[r.ID] = r
	}

	childrenByParent := make(map[string][]Record, len(byID))
	roots := make([]Record, 0, 8)
	seen := make(map[string]struct{}, len(byID))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}

		parentID := ""
		if r.ParentID != nil {
			parentID = strings.TrimSpace(*r.ParentID)
		}
		if _, ok := byID[parentID]; parentID == "" || parentID == r.ID || !ok {
			roots = append(roots, r)
			continue
		}
		childrenByParent[parentID] = append(childrenByParent[parentID], r)
	}
	for parentID := range childrenByParent {
		sortRecords(childrenByParent[parentID])
	}
	sortRecords(roots)

	out := make([]*OrganizationNode, 0, len(roots))
	attached := make(map[string]struct{}, len(byID))
	var build func(r Record) *OrganizationNode
	build = func(r Record) *OrganizationNode {
		attached[r.ID] = struct{}{}
		node := newNode(r)
		for _, child := range childrenByParent[r.ID] {
			if _, ok := attached[child.ID]; ok {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	for _, r := range roots {
		out = append(out, build(r))
	}

	if len(attached) != len(byID) {
		remaining := make([]Record, 0, len(byID)-len(attached))
		for _, r := range byID {
			if _, ok := attached[r.ID]; ok {
				continue
			}
			remaining = append(remaining, r)
		}
		sortRecords(remaining)
		for _, r := range remaining {
			if _, ok := attached[r.ID]; ok {
				continue
			}
			out = append(out, build(r))
		}
	}

	return out
}

func newNode(r Record) *OrganizationNode {
	n := &OrganizationNode{
		ID:           r.ID,
		Name:         r.Name,
		DisplayOrder: r.DisplayOrder,
		Leader:       r.Leader,
	}
	if r.ParentID != nil {
		pid := *r.ParentID
		n.ParentID = &pid
	}
	if len(r.Members) > 0 {
		n.Members = append([]Member(nil), r.Members...)
	}
	return n
}
