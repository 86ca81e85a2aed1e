package viewmodels

// OrgTreeRow is one visible row of the tree. Children holds the rows rendered
// beneath it and is empty when the node is collapsed or has no children.
type OrgTreeRow struct {
	ID          string
	Name        string
	Depth       int
	Indent      int
	Glyph       string
	HasChildren bool
	Expanded    bool
	Selected    bool
	MemberCount int
	Children    []*OrgTreeRow
}

type OrgTree struct {
	Roots      []*OrgTreeRow
	Expanded   string
	SelectedID string
}

// Empty reports whether there is nothing to draw.
func (t *OrgTree) Empty() bool {
	return t == nil || len(t.Roots) == 0
}

// OrgTreeAPIRow is the flat JSON form of a visible row.
type OrgTreeAPIRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ParentID    string `json:"parent_id,omitempty"`
	Depth       int    `json:"depth"`
	Indent      int    `json:"indent"`
	Glyph       string `json:"glyph"`
	HasChildren bool   `json:"has_children"`
	Expanded    bool   `json:"expanded"`
}

type OrgTreeAPIResponse struct {
	Expanded []string        `json:"expanded"`
	Rows     []OrgTreeAPIRow `json:"rows"`
}
