package orgtree

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	icons "github.com/iota-uz/icons/phosphor"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/pkg/intl"
)

type DetailsProps struct {
	Details *viewmodels.OrgNodeDetails
	OOB     bool
}

// Details renders the panel for the selected node, or a hint when nothing is
// selected.
func Details(props DetailsProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		open := `<aside` + attr("id", DetailsElementID) + attr("class", "rounded-lg border border-gray-200 p-4")
		if props.OOB {
			open += attr("hx-swap-oob", "true")
		}
		if err := write(w, open, `>`); err != nil {
			return err
		}

		d := props.Details
		if d == nil {
			return write(w, `<p class="text-sm text-gray-500">`,
				templ.EscapeString(intl.T(ctx, "OrgTree.Details.NoSelection")), `</p></aside>`)
		}

		if len(d.Path) > 1 {
			if err := write(w, `<nav class="mb-2 text-xs text-gray-500"`, attr("aria-label", intl.T(ctx, "OrgTree.Details.Path")), `>`); err != nil {
				return err
			}
			for i, p := range d.Path {
				if i > 0 {
					if err := write(w, ` / `); err != nil {
						return err
					}
				}
				if err := write(w, `<span>`, templ.EscapeString(p.Name), `</span>`); err != nil {
					return err
				}
			}
			if err := write(w, `</nav>`); err != nil {
				return err
			}
		}

		if err := write(w, `<h2 class="flex items-center gap-2 text-lg font-semibold">`); err != nil {
			return err
		}
		if err := icons.TreeStructure(icons.Props{Size: "20"}).Render(ctx, w); err != nil {
			return err
		}
		if err := write(w, `<span>`, templ.EscapeString(d.Name), `</span></h2><dl class="mt-3 grid grid-cols-2 gap-2 text-sm">`); err != nil {
			return err
		}

		parent := d.ParentName
		if parent == "" {
			parent = "-"
		}
		leader := "-"
		if d.Leader != nil {
			leader = d.Leader.Name
		}
		fields := [][2]string{
			{intl.T(ctx, "OrgTree.Details.Parent"), parent},
			{intl.T(ctx, "OrgTree.Details.Leader"), leader},
			{intl.T(ctx, "OrgTree.Details.Children"), strconv.Itoa(d.ChildCount)},
		}
		for _, f := range fields {
			if err := write(w, `<dt class="text-gray-500">`, templ.EscapeString(f[0]),
				`</dt><dd>`, templ.EscapeString(f[1]), `</dd>`); err != nil {
				return err
			}
		}
		if err := write(w, `</dl><h3 class="mt-4 flex items-center gap-2 text-sm font-medium">`); err != nil {
			return err
		}
		if err := icons.Users(icons.Props{Size: "16"}).Render(ctx, w); err != nil {
			return err
		}
		if err := write(w, `<span>`, templ.EscapeString(intl.T(ctx, "OrgTree.Details.Members")), `</span></h3>`); err != nil {
			return err
		}

		if len(d.Members) == 0 {
			return write(w, `<p class="text-sm text-gray-500">`,
				templ.EscapeString(intl.T(ctx, "OrgTree.Details.NoMembers")), `</p></aside>`)
		}
		if err := write(w, `<ul class="mt-1 space-y-1 text-sm">`); err != nil {
			return err
		}
		for _, m := range d.Members {
			if err := write(w, `<li`, attr("data-member-id", m.ID), `>`, templ.EscapeString(m.Name), `</li>`); err != nil {
				return err
			}
		}
		return write(w, `</ul></aside>`)
	})
}
