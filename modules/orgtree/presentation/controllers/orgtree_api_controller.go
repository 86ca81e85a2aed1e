package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/mappers"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
	"github.com/jacksonlee411/orgtree/pkg/application"
	"github.com/jacksonlee411/orgtree/pkg/composables"
	"github.com/jacksonlee411/orgtree/pkg/httpapi"
)

type OrgTreeAPIController struct {
	app       application.Application
	tree      *services.OrgTreeService
	apiPrefix string
}

func NewOrgTreeAPIController(app application.Application) application.Controller {
	return &OrgTreeAPIController{
		app:       app,
		tree:      app.Service(services.OrgTreeService{}).(*services.OrgTreeService),
		apiPrefix: "/org/api/tree",
	}
}

func (c *OrgTreeAPIController) Key() string {
	return c.apiPrefix
}

func (c *OrgTreeAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter().UseEncodedPath()

	api.HandleFunc("", instrumentAPI("tree", c.GetTree)).Methods(http.MethodGet)
	api.HandleFunc("/search", instrumentAPI("search", c.Search)).Methods(http.MethodGet)
	api.HandleFunc("/nodes/{id}:toggle", instrumentAPI("toggle", c.ToggleNode)).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id}", instrumentAPI("node", c.GetNode)).Methods(http.MethodGet)
}

type toggleRequest struct {
	Expanded []string `json:"expanded"`
}

func (c *OrgTreeAPIController) GetTree(w http.ResponseWriter, r *http.Request) {
	set := expansion.Parse(composables.GetLastQueryParam(r, "expanded"))
	c.writeRows(w, r, set)
}

func (c *OrgTreeAPIController) ToggleNode(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())

	id, err := nodeID(r)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	// An empty body, chunked or not, toggles against the empty set.
	var req toggleRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			_ = httpapi.WriteErrorWithRequestID(w, http.StatusBadRequest, codeInvalidRequest, "invalid json body", requestID, nil)
			return
		}
	}

	next, err := c.tree.Toggle(r.Context(), expansion.New(req.Expanded...), id)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.writeRows(w, r, next)
}

func (c *OrgTreeAPIController) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	details, err := c.tree.Select(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.DetailsToViewModel(details))
}

func (c *OrgTreeAPIController) Search(w http.ResponseWriter, r *http.Request) {
	query := composables.GetLastQueryParam(r, "q")
	limit := 0
	if raw := composables.GetLastQueryParam(r, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			_ = httpapi.WriteErrorWithRequestID(w, http.StatusBadRequest, codeInvalidRequest, "limit must be a positive integer", composables.UseRequestID(r.Context()), nil)
			return
		}
		limit = n
	}

	hits, err := c.tree.Search(r.Context(), query, limit)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &viewmodels.SearchResponse{
		Query: query,
		Hits:  mappers.SearchHitsToViewModel(hits),
	})
}

func (c *OrgTreeAPIController) writeRows(w http.ResponseWriter, r *http.Request, set *expansion.Set) {
	rendered, err := c.tree.Render(r.Context(), set)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.RenderedToAPI(rendered, set))
}

func (c *OrgTreeAPIController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	class := classifyError(err)
	logger := composables.UseLogger(r.Context()).WithError(err)
	if class.status >= http.StatusInternalServerError {
		logger.Error("org tree api request failed")
	} else {
		logger.Debug("org tree api request rejected")
	}
	_ = httpapi.WriteErrorWithRequestID(w, class.status, class.code, err.Error(), composables.UseRequestID(r.Context()), nil)
}
