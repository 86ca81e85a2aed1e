package mappers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
)

func sampleForest() []*orgnode.OrganizationNode {
	root := "root"
	dept := "dept"
	team := &orgnode.OrganizationNode{ID: "team", Name: "Team", ParentID: &dept}
	deptNode := &orgnode.OrganizationNode{
		ID: "dept", Name: "Dept", ParentID: &root,
		Members:  []orgnode.Member{{ID: "u1", Name: "Ann"}, {ID: "u2", Name: "Ben"}},
		Children: []*orgnode.OrganizationNode{team},
	}
	ops := &orgnode.OrganizationNode{ID: "ops", Name: "Ops", ParentID: &root}
	return []*orgnode.OrganizationNode{{ID: "root", Name: "Root", Children: []*orgnode.OrganizationNode{deptNode, ops}}}
}

func TestRenderedToTree(t *testing.T) {
	set := expansion.New("root")
	rendered, err := renderer.New().RenderForest(sampleForest(), set, nil)
	require.NoError(t, err)

	tree := RenderedToTree(rendered, set, "dept")
	require.False(t, tree.Empty())
	require.Equal(t, "root", tree.Expanded)
	require.Len(t, tree.Roots, 1)

	root := tree.Roots[0]
	require.True(t, root.Expanded)
	require.Equal(t, "expanded", root.Glyph)
	require.Len(t, root.Children, 2)

	dept := root.Children[0]
	require.True(t, dept.Selected)
	require.True(t, dept.HasChildren)
	require.False(t, dept.Expanded)
	require.Empty(t, dept.Children)
	require.Equal(t, 2, dept.MemberCount)
	require.Equal(t, 16, dept.Indent)

	ops := root.Children[1]
	require.False(t, ops.Selected)
	require.Equal(t, "placeholder", ops.Glyph)
}

func TestRenderedToTree_Empty(t *testing.T) {
	tree := RenderedToTree(nil, nil, "")
	require.True(t, tree.Empty())
	require.Empty(t, tree.Expanded)
}

func TestRenderedToAPI(t *testing.T) {
	set := expansion.New("root", "dept")
	rendered, err := renderer.New().RenderForest(sampleForest(), set, nil)
	require.NoError(t, err)

	resp := RenderedToAPI(rendered, set)
	require.Equal(t, []string{"dept", "root"}, resp.Expanded)

	var ids, parents []string
	var depths []int
	for _, r := range resp.Rows {
		ids = append(ids, r.ID)
		parents = append(parents, r.ParentID)
		depths = append(depths, r.Depth)
	}
	require.Equal(t, []string{"root", "dept", "team", "ops"}, ids)
	require.Equal(t, []string{"", "root", "dept", "root"}, parents)
	require.Equal(t, []int{0, 1, 2, 1}, depths)
}

func TestDetailsToViewModel(t *testing.T) {
	require.Nil(t, DetailsToViewModel(nil))

	vm := DetailsToViewModel(&services.NodeDetails{
		ID:         "dept",
		Name:       "Dept",
		ParentID:   "root",
		ParentName: "Root",
		Leader:     &orgnode.Member{ID: "u1", Name: "Ann"},
		Members:    []orgnode.Member{{ID: "u2", Name: "Ben"}},
		ChildCount: 3,
		Path:       []services.PathItem{{ID: "root", Name: "Root"}, {ID: "dept", Name: "Dept"}},
	})
	require.Equal(t, "Ann", vm.Leader.Name)
	require.Len(t, vm.Members, 1)
	require.Equal(t, 3, vm.ChildCount)
	require.Equal(t, "Root", vm.Path[0].Name)
}
