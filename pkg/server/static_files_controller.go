package server

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/benbjohnson/hashfs"
	"github.com/gorilla/mux"

	"github.com/jacksonlee411/orgtree/pkg/application"
)

const assetsPrefix = "/assets/"

type StaticFilesController struct {
	fsInstances []*hashfs.FS
	production  bool
}

// NewStaticFilesController serves every registered asset FS under /assets/.
// The first FS holding a path wins.
func NewStaticFilesController(fsInstances []*hashfs.FS, production bool) application.Controller {
	return &StaticFilesController{fsInstances: fsInstances, production: production}
}

func (s *StaticFilesController) Key() string {
	return assetsPrefix
}

func (s *StaticFilesController) Register(r *mux.Router) {
	servers := make([]http.Handler, len(s.fsInstances))
	for i, fsys := range s.fsInstances {
		servers[i] = hashfs.FileServer(fsys)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, assetsPrefix)
		for i, fsys := range s.fsInstances {
			if _, err := fs.Stat(fsys, name); err != nil {
				continue
			}
			if !s.production {
				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
				w.Header().Set("Pragma", "no-cache")
				w.Header().Set("Expires", "0")
			}
			http.StripPrefix(strings.TrimSuffix(assetsPrefix, "/"), servers[i]).ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
	r.PathPrefix(assetsPrefix).Handler(handler).Methods(http.MethodGet, http.MethodHead)
}
