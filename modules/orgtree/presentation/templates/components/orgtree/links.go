package orgtree

import (
	"net/url"
	"strings"
)

const DefaultBasePath = "/org/tree"

func basePath(p string) string {
	if p == "" {
		return DefaultBasePath
	}
	return strings.TrimRight(p, "/")
}

func withQuery(path string, q url.Values) string {
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// PageURL is the shareable address of a tree state.
func PageURL(base, expanded, selectedID string) string {
	q := url.Values{}
	if expanded != "" {
		q.Set("expanded", expanded)
	}
	if selectedID != "" {
		q.Set("node_id", selectedID)
	}
	return withQuery(basePath(base), q)
}

func ToggleURL(base, id, expanded, selectedID string) string {
	q := url.Values{}
	if expanded != "" {
		q.Set("expanded", expanded)
	}
	if selectedID != "" {
		q.Set("node_id", selectedID)
	}
	return withQuery(basePath(base)+"/nodes/"+url.PathEscape(id)+":toggle", q)
}

func SelectURL(base, id, expanded string) string {
	q := url.Values{}
	if expanded != "" {
		q.Set("expanded", expanded)
	}
	return withQuery(basePath(base)+"/nodes/"+url.PathEscape(id), q)
}
