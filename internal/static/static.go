package static

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sync"
)

//go:embed templates/*.html
var templates embed.FS

const statusTemplate = "status.html"

// StatusData is what the status page renders.
type StatusData struct {
	City    string
	Time    string
	Version string
}

var embedded = sync.OnceValues(func() (*template.Template, error) {
	return NewStatusPage(templates)
})

// StatusPage returns the embedded status template, parsed once.
func StatusPage() (*template.Template, error) {
	return embedded()
}

// NewStatusPage parses the status template from fsys, which must contain
// templates/status.html.
func NewStatusPage(fsys fs.FS) (*template.Template, error) {
	sub, err := fs.Sub(fsys, "templates")
	if err != nil {
		return nil, fmt.Errorf("templates dir: %w", err)
	}
	tmpl, err := template.ParseFS(sub, statusTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", statusTemplate, err)
	}
	return tmpl, nil
}

// RenderStatus writes the embedded status page for data to w.
func RenderStatus(w io.Writer, data StatusData) error {
	tmpl, err := StatusPage()
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, statusTemplate, data)
}
