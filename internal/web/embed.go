// Package web serves the embedded client page.
package web

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

//go:embed dist/*
var distFS embed.FS

// endpointPlaceholder is replaced in index.html with the GraphQL endpoint path.
const endpointPlaceholder = "__GRAPHQL_ENDPOINT__"

// DistFS returns the embedded client filesystem, rooted at dist/.
func DistFS() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}

// Handler returns an http.Handler that serves the embedded client, which talks to
// the GraphQL API at endpoint. Paths without a file extension fall back to index.html.
func Handler(endpoint string) http.Handler {
	fsys, err := DistFS()
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "client not available", http.StatusInternalServerError)
		})
	}

	index, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "client not available", http.StatusInternalServerError)
		})
	}
	index = bytes.ReplaceAll(index, []byte(endpointPlaceholder), []byte(endpoint))
	loaded := time.Now()

	fileServer := http.FileServer(http.FS(fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" || path == "index.html" || !strings.Contains(path, ".") {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeContent(w, r, "index.html", loaded, bytes.NewReader(index))
			return
		}

		f, err := fsys.Open(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f.Close()
		fileServer.ServeHTTP(w, r)
	})
}
