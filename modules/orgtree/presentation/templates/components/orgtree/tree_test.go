package orgtree

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/pkg/intl"
)

func localized(t *testing.T) context.Context {
	t.Helper()
	bundle := i18n.NewBundle(language.English)
	require.NoError(t, bundle.AddMessages(language.English,
		&i18n.Message{ID: "OrgTree.Title", Other: "Organization"},
		&i18n.Message{ID: "OrgTree.Expand", Other: "Expand"},
		&i18n.Message{ID: "OrgTree.Collapse", Other: "Collapse"},
		&i18n.Message{ID: "OrgTree.Empty", Other: "No organization units yet"},
	))
	return intl.WithLocalizer(context.Background(), i18n.NewLocalizer(bundle, "en"))
}

func sampleTree() *viewmodels.OrgTree {
	return &viewmodels.OrgTree{
		Expanded:   "root",
		SelectedID: "dept",
		Roots: []*viewmodels.OrgTreeRow{{
			ID: "root", Name: "Root", Glyph: "expanded", HasChildren: true, Expanded: true,
			Children: []*viewmodels.OrgTreeRow{
				{ID: "dept", Name: "R&D <core>", Depth: 1, Indent: 16, Glyph: "collapsed", HasChildren: true, Selected: true, MemberCount: 3},
				{ID: "ops", Name: "Ops", Depth: 1, Indent: 16, Glyph: "placeholder"},
			},
		}},
	}
}

func render(t *testing.T, ctx context.Context, props TreeProps) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Tree(props).Render(ctx, &buf))
	return buf.String()
}

func TestTree_RendersRowsAndIndicators(t *testing.T) {
	html := render(t, localized(t), TreeProps{Tree: sampleTree()})

	require.Contains(t, html, `id="org-tree"`)
	require.Contains(t, html, `role="tree" aria-label="Organization"`)
	require.Contains(t, html, `aria-level="2"`)
	require.Contains(t, html, `padding-left: 16px`)
	require.Contains(t, html, `R&amp;D &lt;core&gt;`)
	require.NotContains(t, html, `<core>`)

	require.Contains(t, html, `aria-label="Collapse" data-glyph="expanded"`)
	require.Contains(t, html, `aria-label="Expand" data-glyph="collapsed"`)
	require.Contains(t, html, `data-glyph="placeholder"`)
	require.Equal(t, 2, strings.Count(html, `hx-trigger="click consume"`))
	require.Contains(t, html, `hx-get="/org/tree/nodes/dept:toggle?expanded=root&amp;node_id=dept"`)
	require.Contains(t, html, `hx-get="/org/tree/nodes/ops?expanded=root"`)
	require.Equal(t, 1, strings.Count(html, `role="group"`))
	require.Equal(t, 1, strings.Count(html, `aria-selected="true"`))
}

func TestTree_DocumentOrderMatchesRows(t *testing.T) {
	html := render(t, localized(t), TreeProps{Tree: sampleTree()})
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	items := doc.Find(`li[role="treeitem"]`)
	require.Equal(t, 3, items.Length())

	var ids, levels []string
	items.Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		level, _ := s.Attr("aria-level")
		ids = append(ids, id)
		levels = append(levels, level)
	})
	require.Equal(t, []string{"org-node-root", "org-node-dept", "org-node-ops"}, ids)
	require.Equal(t, []string{"1", "2", "2"}, levels)

	dept := doc.Find("#org-node-dept")
	require.Contains(t, dept.Text(), "R&D <core>")
	require.Equal(t, 1, doc.Find("#org-node-root > ul[role=group]").Length())
	expanded, ok := doc.Find("#org-node-root").Attr("aria-expanded")
	require.True(t, ok)
	require.Equal(t, "true", expanded)
	_, ok = doc.Find("#org-node-ops").Attr("aria-expanded")
	require.False(t, ok)
}

func TestTree_CollapsedRowOmitsChildren(t *testing.T) {
	tree := sampleTree()
	tree.Roots[0].Expanded = false
	tree.Roots[0].Children = nil

	html := render(t, localized(t), TreeProps{Tree: tree})
	require.NotContains(t, html, `role="group"`)
	require.NotContains(t, html, "org-node-dept")
	require.Contains(t, html, `aria-expanded="false"`)
}

func TestTree_EmptyState(t *testing.T) {
	html := render(t, localized(t), TreeProps{Tree: &viewmodels.OrgTree{}})
	require.Contains(t, html, "No organization units yet")
	require.NotContains(t, html, `role="tree"`)

	html = render(t, context.Background(), TreeProps{})
	require.Contains(t, html, "OrgTree.Empty")
}

func TestTree_OutOfBand(t *testing.T) {
	html := render(t, localized(t), TreeProps{Tree: sampleTree(), OOB: true})
	require.Contains(t, html, `hx-swap-oob="true"`)
}

func TestDetails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Details(DetailsProps{}).Render(context.Background(), &buf))
	require.Contains(t, buf.String(), "OrgTree.Details.NoSelection")

	buf.Reset()
	details := &viewmodels.OrgNodeDetails{
		ID: "dept", Name: "Dept", ParentID: "root", ParentName: "Root",
		Leader:     &viewmodels.Person{ID: "u1", Name: "Ada"},
		Members:    []viewmodels.Person{{ID: "u2", Name: "Bob"}},
		ChildCount: 2,
		Path:       []viewmodels.Breadcrumb{{ID: "root", Name: "Root"}, {ID: "dept", Name: "Dept"}},
	}
	require.NoError(t, Details(DetailsProps{Details: details, OOB: true}).Render(context.Background(), &buf))
	html := buf.String()
	require.Contains(t, html, `id="org-node-details"`)
	require.Contains(t, html, `hx-swap-oob="true"`)
	require.Contains(t, html, "Ada")
	require.Contains(t, html, `data-member-id="u2"`)
	require.Contains(t, html, "<span>Root</span> / <span>Dept</span>")
}

func TestLinks(t *testing.T) {
	require.Equal(t, "/org/tree", PageURL("", "", ""))
	require.Equal(t, "/custom?expanded=a%2Cb&node_id=b", PageURL("/custom/", "a,b", "b"))
	require.Equal(t, "/org/tree/nodes/a%2Fb:toggle", ToggleURL("", "a/b", "", ""))
	require.Equal(t, "/org/tree/nodes/x", SelectURL("", "x", ""))
}
