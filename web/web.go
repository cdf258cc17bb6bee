// Package web holds the HTML pages rendered by the prediction service.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded pages. Each template is named after its
// file, e.g. "index.html".
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
