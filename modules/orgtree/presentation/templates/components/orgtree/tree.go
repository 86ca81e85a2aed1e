package orgtree

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	twmerge "github.com/Oudwins/tailwind-merge-go"
	icons "github.com/iota-uz/icons/phosphor"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/pkg/intl"
)

const (
	TreeElementID    = "org-tree"
	DetailsElementID = "org-node-details"
)

const (
	rowBaseClass      = "flex items-center gap-1 rounded-md px-2 py-1 text-sm text-gray-800 cursor-pointer hover:bg-gray-100"
	rowSelectedClass  = "bg-primary-50 text-primary-700 font-medium hover:bg-primary-100"
	indicatorClass    = "inline-flex h-5 w-5 items-center justify-center rounded text-gray-500 hover:text-gray-900"
	placeholderClass  = "inline-flex h-5 w-5 items-center justify-center text-gray-300"
	memberBadgeClass  = "ml-auto rounded-full bg-gray-100 px-2 text-xs text-gray-500"
	emptyStateClass   = "p-6 text-center text-sm text-gray-500"
	treeContainerBase = "overflow-auto"
)

type TreeProps struct {
	Tree     *viewmodels.OrgTree
	BasePath string
	// OOB marks the tree for an out-of-band swap when it rides along with
	// another fragment.
	OOB bool
}

type NodeProps struct {
	Row      *viewmodels.OrgTreeRow
	Tree     *viewmodels.OrgTree
	BasePath string
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

func attr(name, value string) string {
	return " " + name + `="` + templ.EscapeString(value) + `"`
}

// Tree renders the whole visible tree, or a localized empty state.
func Tree(props TreeProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		open := `<div` + attr("id", TreeElementID) + attr("class", treeContainerBase)
		if props.Tree != nil {
			open += attr("data-expanded", props.Tree.Expanded)
		}
		if props.OOB {
			open += attr("hx-swap-oob", "true")
		}
		if err := write(w, open, ">"); err != nil {
			return err
		}

		if props.Tree.Empty() {
			if err := write(w, `<p`, attr("class", emptyStateClass), `>`,
				templ.EscapeString(intl.T(ctx, "OrgTree.Empty")), `</p></div>`); err != nil {
				return err
			}
			return nil
		}

		if err := write(w, `<ul role="tree"`, attr("aria-label", intl.T(ctx, "OrgTree.Title")), `>`); err != nil {
			return err
		}
		for _, root := range props.Tree.Roots {
			if err := Node(NodeProps{Row: root, Tree: props.Tree, BasePath: props.BasePath}).Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, `</ul></div>`)
	})
}

// Node renders one row and, when the renderer recursed into it, its
// children inside a group.
func Node(props NodeProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		row := props.Row
		expanded := ""
		selected := ""
		if props.Tree != nil {
			expanded = props.Tree.Expanded
			selected = props.Tree.SelectedID
		}

		li := `<li role="treeitem"` +
			attr("id", "org-node-"+row.ID) +
			attr("aria-level", strconv.Itoa(row.Depth+1)) +
			attr("aria-selected", strconv.FormatBool(row.Selected))
		if row.HasChildren {
			li += attr("aria-expanded", strconv.FormatBool(row.Expanded))
		}
		if err := write(w, li, ">"); err != nil {
			return err
		}

		rowClass := rowBaseClass
		if row.Selected {
			rowClass = twmerge.Merge(rowBaseClass, rowSelectedClass)
		}
		if err := write(w, `<div`,
			attr("class", rowClass),
			attr("style", fmt.Sprintf("padding-left: %dpx", row.Indent)),
			attr("hx-get", SelectURL(props.BasePath, row.ID, expanded)),
			attr("hx-target", "#"+DetailsElementID),
			attr("hx-swap", "outerHTML"),
			attr("hx-push-url", PageURL(props.BasePath, expanded, row.ID)),
			`>`); err != nil {
			return err
		}

		if err := indicator(row, props.BasePath, expanded, selected).Render(ctx, w); err != nil {
			return err
		}

		if err := write(w, `<span class="truncate">`, templ.EscapeString(row.Name), `</span>`); err != nil {
			return err
		}
		if row.MemberCount > 0 {
			if err := write(w, `<span`, attr("class", memberBadgeClass), `>`, strconv.Itoa(row.MemberCount), `</span>`); err != nil {
				return err
			}
		}
		if err := write(w, `</div>`); err != nil {
			return err
		}

		if row.Expanded && len(row.Children) > 0 {
			if err := write(w, `<ul role="group">`); err != nil {
				return err
			}
			for _, child := range row.Children {
				if err := Node(NodeProps{Row: child, Tree: props.Tree, BasePath: props.BasePath}).Render(ctx, w); err != nil {
					return err
				}
			}
			if err := write(w, `</ul>`); err != nil {
				return err
			}
		}
		return write(w, `</li>`)
	})
}

// indicator is the disclosure control. Its click is consumed so the row's
// select request never fires; the placeholder consumes clicks and does
// nothing.
func indicator(row *viewmodels.OrgTreeRow, base, expanded, selected string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !row.HasChildren {
			if err := write(w, `<span`, attr("class", placeholderClass),
				` aria-hidden="true" data-glyph="placeholder" onclick="event.stopPropagation()">`); err != nil {
				return err
			}
			if err := icons.Dot(icons.Props{Size: "16"}).Render(ctx, w); err != nil {
				return err
			}
			return write(w, `</span>`)
		}

		label := intl.T(ctx, "OrgTree.Expand")
		glyph := "collapsed"
		icon := icons.CaretRight(icons.Props{Size: "16"})
		if row.Expanded {
			label = intl.T(ctx, "OrgTree.Collapse")
			glyph = "expanded"
			icon = icons.CaretDown(icons.Props{Size: "16"})
		}
		if err := write(w, `<button type="button"`,
			attr("class", indicatorClass),
			attr("aria-label", label),
			attr("data-glyph", glyph),
			attr("hx-get", ToggleURL(base, row.ID, expanded, selected)),
			attr("hx-target", "#"+TreeElementID),
			attr("hx-swap", "outerHTML"),
			attr("hx-trigger", "click consume"),
			`>`); err != nil {
			return err
		}
		if err := icon.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</button>`)
	})
}
