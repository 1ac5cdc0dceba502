// Package web serves the embedded task scheduler page.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFiles embed.FS

// Handler serves index.html, script.js and style.css from the embedded files.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // static/ is embedded at build time
	}
	return http.FileServerFS(sub)
}
