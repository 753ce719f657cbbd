package invoice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer produces self-contained HTML documents from the embedded template.
type Renderer struct {
	t *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("invoice").Funcs(template.FuncMap{
		"money":    Money,
		"quantity": Quantity,
		"isPawn":   func(k Kind) bool { return k == KindPawn },
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

// Render executes the invoice template.
func (r *Renderer) Render(inv Invoice) (string, error) {
	if r == nil || r.t == nil {
		return "", fmt.Errorf("nil renderer")
	}
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, "invoice.html.tmpl", inv); err != nil {
		return "", fmt.Errorf("render invoice %d: %w", inv.ID, err)
	}
	return buf.String(), nil
}
