package display

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer writes menu pages as HTML
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/menu.html")
	if err != nil {
		return nil, fmt.Errorf("parsing menu template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the page for v. Nothing is written to w when rendering fails.
func (r *Renderer) Render(w io.Writer, v View) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "menu.html", v); err != nil {
		return fmt.Errorf("rendering menu: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
