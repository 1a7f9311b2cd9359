// Package uriutil converts between file paths and file:// URIs.
package uriutil

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathToURI returns the file:// URI of path, made absolute
func PathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		// windows drive letter
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}

// URIToPath returns the file path of a file:// URI. Anything else is
// returned with its scheme prefix removed.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return filepath.FromSlash(strings.TrimPrefix(uri, "file://"))
	}
	path := u.Path
	if u.Host != "" && u.Host != "localhost" {
		path = "//" + u.Host + path
	}
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}
