package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
)

const (
	codeNodeNotFound   = "ORG_NODE_NOT_FOUND"
	codeInvalidRequest = "ORG_INVALID_REQUEST"
	codeTreeInvalid    = "ORG_TREE_INVALID"
	codeInternal       = "ORG_INTERNAL"
)

type errorClass struct {
	status    int
	code      string
	messageID string
}

// nodeID reads the {id} route variable. The routers match the escaped path
// so ids holding "/" survive routing; the variable is unescaped here.
func nodeID(r *http.Request) (string, error) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		return "", errors.Join(services.ErrInvalidNodeID, err)
	}
	return id, nil
}

func classifyError(err error) errorClass {
	switch {
	case errors.Is(err, services.ErrNodeNotFound):
		return errorClass{http.StatusNotFound, codeNodeNotFound, "OrgTree.Errors.NotFound"}
	case errors.Is(err, services.ErrNotExpandable):
		return errorClass{http.StatusBadRequest, codeInvalidRequest, "OrgTree.Errors.NotExpandable"}
	case errors.Is(err, services.ErrInvalidNodeID):
		return errorClass{http.StatusBadRequest, codeInvalidRequest, "OrgTree.Errors.InvalidRequest"}
	case errors.Is(err, renderer.ErrCycleDetected), errors.Is(err, renderer.ErrDepthLimitExceeded):
		return errorClass{http.StatusUnprocessableEntity, codeTreeInvalid, "OrgTree.Errors.InvalidTree"}
	default:
		return errorClass{http.StatusInternalServerError, codeInternal, "OrgTree.Errors.Internal"}
	}
}
