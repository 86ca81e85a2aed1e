package mappers

import (
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
)

// RenderedToTree converts renderer output into the view model the templates
// draw. selectedID marks the highlighted row, if visible.
func RenderedToTree(rendered []*renderer.RenderedNode, expanded *expansion.Set, selectedID string) *viewmodels.OrgTree {
	out := &viewmodels.OrgTree{
		Roots:      make([]*viewmodels.OrgTreeRow, 0, len(rendered)),
		Expanded:   expanded.Encode(),
		SelectedID: selectedID,
	}
	for _, r := range rendered {
		out.Roots = append(out.Roots, toRow(r, selectedID))
	}
	return out
}

func toRow(r *renderer.RenderedNode, selectedID string) *viewmodels.OrgTreeRow {
	row := &viewmodels.OrgTreeRow{
		ID:          r.Node.ID,
		Name:        r.Node.Name,
		Depth:       r.Depth,
		Indent:      r.Indent,
		Glyph:       string(r.Glyph),
		HasChildren: r.HasChildren,
		Expanded:    r.Expanded,
		Selected:    selectedID != "" && r.Node.ID == selectedID,
		MemberCount: len(r.Node.Members),
	}
	if len(r.Children) > 0 {
		row.Children = make([]*viewmodels.OrgTreeRow, 0, len(r.Children))
		for _, c := range r.Children {
			row.Children = append(row.Children, toRow(c, selectedID))
		}
	}
	return row
}

// RenderedToAPI flattens renderer output into visible rows in pre-order.
func RenderedToAPI(rendered []*renderer.RenderedNode, expanded *expansion.Set) *viewmodels.OrgTreeAPIResponse {
	rows := renderer.FlattenForest(rendered)
	out := &viewmodels.OrgTreeAPIResponse{
		Expanded: expanded.IDs(),
		Rows:     make([]viewmodels.OrgTreeAPIRow, 0, len(rows)),
	}
	for _, row := range rows {
		apiRow := viewmodels.OrgTreeAPIRow{
			ID:          row.Node.ID,
			Name:        row.Node.Name,
			Depth:       row.Depth,
			Indent:      row.Indent,
			Glyph:       string(row.Glyph),
			HasChildren: row.HasChildren,
			Expanded:    row.Expanded,
		}
		if row.Node.ParentID != nil {
			apiRow.ParentID = *row.Node.ParentID
		}
		out.Rows = append(out.Rows, apiRow)
	}
	return out
}

func DetailsToViewModel(d *services.NodeDetails) *viewmodels.OrgNodeDetails {
	if d == nil {
		return nil
	}
	out := &viewmodels.OrgNodeDetails{
		ID:         d.ID,
		Name:       d.Name,
		ParentID:   d.ParentID,
		ParentName: d.ParentName,
		ChildCount: d.ChildCount,
		Members:    make([]viewmodels.Person, 0, len(d.Members)),
		Path:       make([]viewmodels.Breadcrumb, 0, len(d.Path)),
	}
	if d.Leader != nil {
		out.Leader = &viewmodels.Person{ID: d.Leader.ID, Name: d.Leader.Name}
	}
	for _, m := range d.Members {
		out.Members = append(out.Members, viewmodels.Person{ID: m.ID, Name: m.Name})
	}
	for _, p := range d.Path {
		out.Path = append(out.Path, viewmodels.Breadcrumb{ID: p.ID, Name: p.Name})
	}
	return out
}

func SearchHitsToViewModel(hits []services.SearchHit) []viewmodels.SearchHit {
	out := make([]viewmodels.SearchHit, 0, len(hits))
	for _, h := range hits {
		vm := viewmodels.SearchHit{ID: h.ID, Name: h.Name, Path: make([]viewmodels.Breadcrumb, 0, len(h.Path))}
		for _, p := range h.Path {
			vm.Path = append(vm.Path, viewmodels.Breadcrumb{ID: p.ID, Name: p.Name})
		}
		out = append(out, vm)
	}
	return out
}
