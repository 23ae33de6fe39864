package server

import "net/http"

// route is one entry in the dispatch table. Exactly one of exact or prefix
// is set. Prefix routes receive the remainder of the path, already
// percent-decoded by net/http.
type route struct {
	method  string
	exact   string
	prefix  string
	handler func(http.ResponseWriter, *http.Request, string)
}

// routes builds the ordered dispatch table. Entries are evaluated in
// order; anything that falls through is a 404, matching the wire protocol
// (no 405 on method mismatch).
func (s *Server) routes() http.Handler {
	table := []route{
		{method: http.MethodGet, exact: "/", handler: s.handleCatalog},
		{method: http.MethodGet, prefix: "/text/", handler: s.handleText},
		{method: http.MethodGet, prefix: "/file/", handler: s.handleFile},
		{method: http.MethodPost, exact: "/upload/file", handler: s.handleUploadFile},
		{method: http.MethodPost, exact: "/upload/text", handler: s.handleUploadText},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		for _, rt := range table {
			if rt.method != r.Method {
				continue
			}
			if rt.exact != "" && path == rt.exact {
				rt.handler(w, r, "")
				return
			}
			if rt.prefix != "" && len(path) > len(rt.prefix) && path[:len(rt.prefix)] == rt.prefix {
				rt.handler(w, r, path[len(rt.prefix):])
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
}
