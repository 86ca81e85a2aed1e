package orgtree

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/templates/components/orgtree"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/pkg/intl"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

type IndexPageProps struct {
	Tree     *viewmodels.OrgTree
	Details  *viewmodels.OrgNodeDetails
	BasePath string
	Locale   string

	// Stylesheet is the hashed asset path of the tree styles, if any.
	Stylesheet string
}

func IndexPage(props IndexPageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := props.Locale
		if lang == "" {
			lang = "en"
		}
		title := templ.EscapeString(intl.T(ctx, "OrgTree.Title"))
		stylesheet := ""
		if props.Stylesheet != "" {
			stylesheet = `<link rel="stylesheet" href="` + templ.EscapeString(props.Stylesheet) + `">`
		}
		head := `<!DOCTYPE html><html lang="` + templ.EscapeString(lang) + `"><head><meta charset="utf-8">` +
			`<meta name="viewport" content="width=device-width, initial-scale=1">` +
			`<title>` + title + `</title>` + stylesheet + `<script src="` + htmxSrc + `"></script></head>` +
			`<body class="bg-gray-50"><main class="mx-auto max-w-6xl p-6"><h1 class="mb-4 text-2xl font-semibold">` + title + `</h1>` +
			`<div class="grid grid-cols-1 gap-6 md:grid-cols-3"><section class="md:col-span-2 rounded-lg border border-gray-200 bg-white p-2">`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := orgtree.SearchBox(props.BasePath).Render(ctx, w); err != nil {
			return err
		}
		if err := orgtree.Tree(orgtree.TreeProps{Tree: props.Tree, BasePath: props.BasePath}).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</section><div>`); err != nil {
			return err
		}
		if err := orgtree.Details(orgtree.DetailsProps{Details: props.Details}).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></div></main></body></html>`)
		return err
	})
}
