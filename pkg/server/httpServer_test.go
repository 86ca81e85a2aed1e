package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/orgtree/pkg/application"
)

type helloController struct{}

func (helloController) Key() string { return "/hello" }

func (helloController) Register(r *mux.Router) {
	r.HandleFunc("/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, strings.Repeat("hello ", 400))
	}).Methods(http.MethodGet)
}

func tagMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tagged", "yes")
		next.ServeHTTP(w, r)
	})
}

func newTestServer() *HTTPServer {
	app := application.New(&application.ApplicationOptions{})
	app.RegisterControllers(helloController{})
	app.RegisterMiddleware(tagMiddleware)
	return NewHTTPServer(app, nil, nil)
}

func TestHTTPServer_Routes(t *testing.T) {
	h := newTestServer().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "yes", rec.Header().Get("X-Tagged"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "hello"))
}

func TestHTTPServer_FallbackHandlersRunMiddleware(t *testing.T) {
	h := newTestServer().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "yes", rec.Header().Get("X-Tagged"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/hello", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "yes", rec.Header().Get("X-Tagged"))
}

func TestHTTPServer_Gzip(t *testing.T) {
	h := newTestServer().Handler()

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "hello"))
}

type itemController struct{}

func (itemController) Key() string { return "/items" }

func (itemController) Register(r *mux.Router) {
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, mux.Vars(r)["id"])
	}).Methods(http.MethodGet)
}

func TestHTTPServer_MatchesEscapedSlashInVariable(t *testing.T) {
	app := application.New(&application.ApplicationOptions{})
	app.RegisterControllers(itemController{})
	h := NewHTTPServer(app, nil, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/eng%2Fweb", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "eng%2Fweb", rec.Body.String())
}
