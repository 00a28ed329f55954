// Package web renders the server-side HTML views from templates embedded in
// the binary.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/ayush/movie-listings/internal/models"
)

//go:embed templates static
var assets embed.FS

// Page carries the data every view needs for the shared layout.
type Page struct {
	User *models.User
}

// Renderer holds the parsed template set, one entry per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout plus every page template.
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(assets, "templates/pages/*.tmpl")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.ParseFS(assets, "templates/layout.tmpl", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		base := name[len("templates/pages/") : len(name)-len(".tmpl")]
		pages[base] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes the named page with the given status. Rendering happens into
// a buffer first so a template failure can still produce a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := r.pages[page]
	if !ok {
		slog.Error("unknown template", "page", page)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("render failed", "page", page, "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Static serves the embedded assets under /static/.
func Static() http.Handler {
	return http.FileServer(http.FS(assets))
}
