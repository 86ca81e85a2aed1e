package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/orgnode"
	"github.com/jacksonlee411/orgtree/modules/orgtree/infrastructure/persistence"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/locales"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/templates/components/orgtree"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/viewmodels"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
	"github.com/jacksonlee411/orgtree/pkg/application"
	"github.com/jacksonlee411/orgtree/pkg/httpapi"
)

func strPtr(s string) *string { return &s }

func newTestRouter(t *testing.T, opts ...services.Option) *mux.Router {
	t.Helper()
	return newTestRouterWithRecords(t, []orgnode.Record{
		{ID: "root", Name: "Root", Leader: &orgnode.Member{ID: "u1", Name: "Ada"}},
		{ID: "dept", Name: "Dept", ParentID: strPtr("root"), Members: []orgnode.Member{{ID: "u2", Name: "Bob"}}},
		{ID: "team", Name: "Team", ParentID: strPtr("dept")},
		{ID: "ops", Name: "Ops", ParentID: strPtr("root"), DisplayOrder: 1},
	}, opts...)
}

func newTestRouterWithRecords(t *testing.T, records []orgnode.Record, opts ...services.Option) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := application.New(&application.ApplicationOptions{Logger: logger})
	app.RegisterLocaleFiles(&locales.FS)

	store := persistence.NewYAMLTreeStoreFromRecords(records)
	app.RegisterServices(services.NewOrgTreeService(store, app.EventPublisher(), opts...))

	r := mux.NewRouter()
	NewOrgTreeUIController(app).Register(r)
	NewOrgTreeAPIController(app).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUI_TreePage(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<title>Organization</title>")
	require.Contains(t, body, "Root")
	require.NotContains(t, body, "Dept")
	require.Contains(t, body, "Select a unit to see its details")
	require.Contains(t, body, `href="/assets/css/orgtree-`)

	rec = do(t, r, http.MethodGet, "/org/tree?lang=zh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "组织架构")
}

func TestUI_TreePage_DeepLinkExpandsAncestors(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/tree?node_id=team", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `id="org-node-team"`)
	require.Contains(t, body, `data-expanded="dept,root"`)

	rec = do(t, r, http.MethodGet, "/org/tree?node_id=ghost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), `aria-selected="true"`)
}

func TestUI_ToggleNode(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/tree/nodes/root:toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/org/tree?expanded=root", rec.Header().Get("HX-Push-Url"))
	require.Contains(t, rec.Body.String(), "Dept")
	require.NotContains(t, rec.Body.String(), "<html")

	rec = do(t, r, http.MethodGet, "/org/tree/nodes/root:toggle?expanded=root", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/org/tree", rec.Header().Get("HX-Push-Url"))
	require.NotContains(t, rec.Body.String(), "Dept")

	rec = do(t, r, http.MethodGet, "/org/tree/nodes/team:toggle", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/org/tree/nodes/ghost:toggle", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Organization unit not found")
}

func TestUI_SelectNode(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/tree/nodes/dept?expanded=root", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `id="org-node-details"`)
	require.Contains(t, body, "Bob")
	require.Contains(t, body, `hx-swap-oob="true"`)
	require.Contains(t, body, `aria-selected="true"`)
}

func TestUI_TreePartial(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/tree/nodes?expanded=root,dept", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Team")
}

func TestUI_Search(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/tree/search?q=dep", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `id="org-tree-search-results"`)
	require.Contains(t, body, "Root / Dept")
	require.Contains(t, body, "node_id=dept")
	require.NotContains(t, body, "Team")

	rec = do(t, r, http.MethodGet, "/org/tree/search?q=zzz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No matching units")
}

func slashedRecords() []orgnode.Record {
	return []orgnode.Record{
		{ID: "eng/web", Name: "Web"},
		{ID: "x", Name: "Frontend", ParentID: strPtr("eng/web")},
	}
}

func TestUI_NodeIDWithSlash(t *testing.T) {
	r := newTestRouterWithRecords(t, slashedRecords())

	rec := do(t, r, http.MethodGet, orgtree.ToggleURL("", "eng/web", "", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, orgtree.PageURL("", "eng/web", ""), rec.Header().Get("HX-Push-Url"))
	require.Contains(t, rec.Body.String(), "Frontend")

	rec = do(t, r, http.MethodGet, orgtree.SelectURL("", "eng/web", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `id="org-node-details"`)
	require.Contains(t, rec.Body.String(), "Web")
}

func TestAPI_GetTree(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/api/tree?expanded=root", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp viewmodels.OrgTreeAPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"root"}, resp.Expanded)
	require.Len(t, resp.Rows, 3)
	require.Equal(t, "root", resp.Rows[0].ID)
	require.Equal(t, "expanded", resp.Rows[0].Glyph)
	require.Equal(t, "dept", resp.Rows[1].ID)
	require.Equal(t, "root", resp.Rows[1].ParentID)
	require.Equal(t, 16, resp.Rows[1].Indent)
	require.Equal(t, "collapsed", resp.Rows[1].Glyph)
	require.Equal(t, "placeholder", resp.Rows[2].Glyph)
}

func TestAPI_ToggleNode(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/org/api/tree/nodes/dept:toggle", `{"expanded":["root"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp viewmodels.OrgTreeAPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"dept", "root"}, resp.Expanded)
	require.Len(t, resp.Rows, 4)

	rec = do(t, r, http.MethodPost, "/org/api/tree/nodes/dept:toggle", `{"expanded":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	requireErrorCode(t, rec, "ORG_INVALID_REQUEST")

	rec = do(t, r, http.MethodPost, "/org/api/tree/nodes/ops:toggle", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	requireErrorCode(t, rec, "ORG_INVALID_REQUEST")
}

func TestAPI_ToggleNode_EmptyChunkedBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/org/api/tree/nodes/root:toggle", strings.NewReader(""))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp viewmodels.OrgTreeAPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"root"}, resp.Expanded)
}

func TestAPI_NodeIDWithSlash(t *testing.T) {
	r := newTestRouterWithRecords(t, slashedRecords())

	rec := do(t, r, http.MethodPost, "/org/api/tree/nodes/eng%2Fweb:toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp viewmodels.OrgTreeAPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"eng/web"}, resp.Expanded)
	require.Len(t, resp.Rows, 2)

	rec = do(t, r, http.MethodGet, "/org/api/tree/nodes/eng%2Fweb", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details viewmodels.OrgNodeDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Equal(t, "eng/web", details.ID)
	require.Equal(t, 1, details.ChildCount)
}

func TestAPI_GetNode(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/api/tree/nodes/dept", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details viewmodels.OrgNodeDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Equal(t, "Dept", details.Name)
	require.Equal(t, "Root", details.ParentName)
	require.Equal(t, 1, details.ChildCount)

	rec = do(t, r, http.MethodGet, "/org/api/tree/nodes/ghost", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	requireErrorCode(t, rec, "ORG_NODE_NOT_FOUND")
}

func TestAPI_Search(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/org/api/tree/search?q=t&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp viewmodels.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "t", resp.Query)
	require.Len(t, resp.Hits, 2)
	require.Equal(t, "root", resp.Hits[0].ID)
	require.Equal(t, "dept", resp.Hits[1].ID)
	require.Equal(t, []viewmodels.Breadcrumb{{ID: "root", Name: "Root"}, {ID: "dept", Name: "Dept"}}, resp.Hits[1].Path)

	rec = do(t, r, http.MethodGet, "/org/api/tree/search?q=", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Hits)

	rec = do(t, r, http.MethodGet, "/org/api/tree/search?q=t&limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	requireErrorCode(t, rec, "ORG_INVALID_REQUEST")
}

func TestAPI_DepthLimitIsUnprocessable(t *testing.T) {
	r := newTestRouter(t, services.WithMaxDepth(1))

	rec := do(t, r, http.MethodGet, "/org/api/tree?expanded=root,dept", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	requireErrorCode(t, rec, "ORG_TREE_INVALID")
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	var env httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, code, env.Code)
}
