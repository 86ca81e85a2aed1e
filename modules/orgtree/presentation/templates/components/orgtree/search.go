package orgtree

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	icons "github.com/iota-uz/icons/phosphor"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/pkg/intl"
)

const SearchResultsElementID = "org-tree-search-results"

func SearchURL(base string) string {
	return basePath(base) + "/search"
}

// SearchBox issues a search as the user types and swaps the results list.
func SearchBox(base string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<label class="mb-3 flex items-center gap-2 rounded-md border border-gray-200 bg-white px-2 py-1">`); err != nil {
			return err
		}
		if err := icons.MagnifyingGlass(icons.Props{Size: "16"}).Render(ctx, w); err != nil {
			return err
		}
		return write(w, `<input type="search" name="q" class="w-full text-sm outline-none"`,
			attr("placeholder", intl.T(ctx, "OrgTree.Search.Placeholder")),
			attr("hx-get", SearchURL(base)),
			attr("hx-trigger", "input changed delay:300ms, search"),
			attr("hx-target", "#"+SearchResultsElementID),
			attr("hx-swap", "outerHTML"),
			`></label><ul`, attr("id", SearchResultsElementID), `></ul>`)
	})
}

type SearchResultsProps struct {
	Query    string
	Hits     []viewmodels.SearchHit
	BasePath string
}

// SearchResults links every hit to the page with the hit selected, which
// expands its ancestors.
func SearchResults(props SearchResultsProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<ul`, attr("id", SearchResultsElementID), ` class="mb-3 space-y-1 text-sm">`); err != nil {
			return err
		}
		if strings.TrimSpace(props.Query) != "" && len(props.Hits) == 0 {
			return write(w, `<li class="text-gray-500">`, templ.EscapeString(intl.T(ctx, "OrgTree.Search.NoResults")), `</li></ul>`)
		}
		for _, hit := range props.Hits {
			names := make([]string, 0, len(hit.Path))
			for _, p := range hit.Path {
				names = append(names, p.Name)
			}
			if err := write(w, `<li><a class="text-primary-600 hover:underline"`,
				attr("href", PageURL(props.BasePath, "", hit.ID)), `>`,
				templ.EscapeString(hit.Name), `</a> <span class="text-xs text-gray-400">`,
				templ.EscapeString(strings.Join(names, " / ")), `</span></li>`); err != nil {
				return err
			}
		}
		return write(w, `</ul>`)
	})
}
