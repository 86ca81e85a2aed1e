package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/assets"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/mappers"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/templates/components/orgtree"
	orgtreepages "github.com/jacksonlee411/orgtree/modules/orgtree/presentation/templates/pages/orgtree"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
	"github.com/jacksonlee411/orgtree/pkg/application"
	"github.com/jacksonlee411/orgtree/pkg/composables"
	"github.com/jacksonlee411/orgtree/pkg/htmx"
	"github.com/jacksonlee411/orgtree/pkg/intl"
	"github.com/jacksonlee411/orgtree/pkg/middleware"
)

type OrgTreeUIController struct {
	app      application.Application
	tree     *services.OrgTreeService
	basePath string
}

func NewOrgTreeUIController(app application.Application) application.Controller {
	return &OrgTreeUIController{
		app:      app,
		tree:     app.Service(services.OrgTreeService{}).(*services.OrgTreeService),
		basePath: orgtree.DefaultBasePath,
	}
}

func (c *OrgTreeUIController) Key() string {
	return c.basePath
}

func (c *OrgTreeUIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter().UseEncodedPath()
	router.Use(middleware.ProvideLocalizer(c.app))

	router.HandleFunc("", c.TreePage).Methods(http.MethodGet)
	router.HandleFunc("/nodes", c.TreePartial).Methods(http.MethodGet)
	router.HandleFunc("/search", c.Search).Methods(http.MethodGet)
	router.HandleFunc("/nodes/{id}:toggle", c.ToggleNode).Methods(http.MethodGet)
	router.HandleFunc("/nodes/{id}", c.SelectNode).Methods(http.MethodGet)
}

type treeQuery struct {
	expanded   *expansion.Set
	selectedID string
}

func parseTreeQuery(r *http.Request) treeQuery {
	return treeQuery{
		expanded:   expansion.Parse(composables.GetLastQueryParam(r, "expanded")),
		selectedID: composables.GetLastQueryParam(r, "node_id"),
	}
}

func (c *OrgTreeUIController) TreePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := parseTreeQuery(r)

	var details *viewmodels.OrgNodeDetails
	if q.selectedID != "" {
		set, err := c.tree.ExpandPath(ctx, q.expanded, q.selectedID)
		if err != nil {
			composables.UseLogger(ctx).WithError(err).WithField("node_id", q.selectedID).Info("ignoring deep-linked selection")
			q.selectedID = ""
		} else {
			q.expanded = set
			d, err := c.tree.Select(ctx, q.selectedID)
			if err != nil {
				c.writeError(w, r, err)
				return
			}
			details = mappers.DetailsToViewModel(d)
		}
	}

	rendered, err := c.tree.Render(ctx, q.expanded)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	locale := ""
	if tag, ok := intl.UseLocale(ctx); ok {
		locale = tag.String()
	}
	props := orgtreepages.IndexPageProps{
		Tree:       mappers.RenderedToTree(rendered, q.expanded, q.selectedID),
		Details:    details,
		BasePath:   c.basePath,
		Locale:     locale,
		Stylesheet: assets.StylesheetURL(),
	}
	templ.Handler(orgtreepages.IndexPage(props), templ.WithStreaming()).ServeHTTP(w, r)
}

func (c *OrgTreeUIController) TreePartial(w http.ResponseWriter, r *http.Request) {
	q := parseTreeQuery(r)
	c.renderTree(w, r, q.expanded, q.selectedID)
}

func (c *OrgTreeUIController) Search(w http.ResponseWriter, r *http.Request) {
	query := composables.GetLastQueryParam(r, "q")
	hits, err := c.tree.Search(r.Context(), query, services.DefaultSearchLimit)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	templ.Handler(orgtree.SearchResults(orgtree.SearchResultsProps{
		Query:    query,
		Hits:     mappers.SearchHitsToViewModel(hits),
		BasePath: c.basePath,
	}), templ.WithStreaming()).ServeHTTP(w, r)
}

func (c *OrgTreeUIController) ToggleNode(w http.ResponseWriter, r *http.Request) {
	q := parseTreeQuery(r)
	id, err := nodeID(r)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	next, err := c.tree.Toggle(r.Context(), q.expanded, id)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	htmx.PushUrl(w, orgtree.PageURL(c.basePath, next.Encode(), q.selectedID))
	c.renderTree(w, r, next, q.selectedID)
}

// SelectNode swaps the details panel and refreshes the tree out of band so
// the highlight follows the selection.
func (c *OrgTreeUIController) SelectNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := parseTreeQuery(r)
	id, err := nodeID(r)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	d, err := c.tree.Select(ctx, id)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	rendered, err := c.tree.Render(ctx, q.expanded)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	component := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		if err := orgtree.Details(orgtree.DetailsProps{Details: mappers.DetailsToViewModel(d)}).Render(ctx, out); err != nil {
			return err
		}
		return orgtree.Tree(orgtree.TreeProps{
			Tree:     mappers.RenderedToTree(rendered, q.expanded, id),
			BasePath: c.basePath,
			OOB:      true,
		}).Render(ctx, out)
	})
	templ.Handler(component, templ.WithStreaming()).ServeHTTP(w, r)
}

func (c *OrgTreeUIController) renderTree(w http.ResponseWriter, r *http.Request, set *expansion.Set, selectedID string) {
	rendered, err := c.tree.Render(r.Context(), set)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	templ.Handler(orgtree.Tree(orgtree.TreeProps{
		Tree:     mappers.RenderedToTree(rendered, set, selectedID),
		BasePath: c.basePath,
	}), templ.WithStreaming()).ServeHTTP(w, r)
}

func (c *OrgTreeUIController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	class := classifyError(err)
	logger := composables.UseLogger(r.Context()).WithError(err)
	if class.status >= http.StatusInternalServerError {
		logger.Error("org tree request failed")
	} else {
		logger.Debug("org tree request rejected")
	}
	http.Error(w, intl.T(r.Context(), class.messageID), class.status)
}
