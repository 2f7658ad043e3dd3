package render

import (
	"html"
	"strings"

	"github.com/go-drift/bannerkit/pkg/graphics"
)

// SelectorProps is everything a language selector is given to draw.
type SelectorProps struct {
	ID        string
	Size      graphics.Size
	Current   string
	Available []string
}

// SelectorRenderer draws the language selector widget as markup.
type SelectorRenderer interface {
	RenderSelector(p SelectorProps) string
}

// SelectorFunc adapts a function to SelectorRenderer.
type SelectorFunc func(p SelectorProps) string

// RenderSelector calls f.
func (f SelectorFunc) RenderSelector(p SelectorProps) string { return f(p) }

// DefaultSelector renders a plain <select>.
type DefaultSelector struct{}

// RenderSelector renders one option per available language.
func (DefaultSelector) RenderSelector(p SelectorProps) string {
	var sb strings.Builder
	sb.WriteString(`<select aria-label="Language">`)
	for _, lang := range p.Available {
		l := html.EscapeString(lang)
		sb.WriteString(`<option value="` + l + `"`)
		if lang == p.Current {
			sb.WriteString(" selected")
		}
		sb.WriteString(">" + l + "</option>")
	}
	sb.WriteString("</select>")
	return sb.String()
}
