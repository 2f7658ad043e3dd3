// Package snapshot serializes a render tree into static HTML and CSS for an
// external preview generator.
package snapshot

import (
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/render"
)

// ClassPrefix prefixes every class emitted by the serializer.
const ClassPrefix = "bk-"

// Snapshot is one serialized render pass.
type Snapshot struct {
	ID   string
	HTML string
	CSS  string
}

// Capture serializes tree under a fresh snapshot id.
func Capture(tree *render.Tree) Snapshot {
	h, c := Serialize(tree)
	return Snapshot{ID: uuid.NewString(), HTML: h, CSS: c}
}

// Serialize returns the markup and stylesheet for tree. Every rendered node
// becomes one absolutely positioned element with class bk-<id>; rules are
// emitted in render order.
func Serialize(tree *render.Tree) (markup, css string) {
	w := &writer{classes: make(map[string]int)}
	w.frame(tree)
	return w.html.String(), w.css.String()
}

type writer struct {
	html    strings.Builder
	css     strings.Builder
	classes map[string]int
}

func (w *writer) frame(tree *render.Tree) {
	decls := append([]banner.Property{{Name: "box-sizing", Value: "border-box"}}, tree.Frame.Declarations...)
	if tree.Frame.Reference.Measured {
		size := tree.Frame.Reference.Size
		decls = append(decls,
			banner.Property{Name: "--bk-frame-width", Value: px(size.Width)},
			banner.Property{Name: "--bk-frame-height", Value: px(size.Height)})
	}
	w.rule(ClassPrefix+"frame", decls)
	w.rule(ClassPrefix+"frame *", []banner.Property{{Name: "box-sizing", Value: "border-box"}})

	w.html.WriteString(`<div class="` + ClassPrefix + `frame"`)
	w.attr("data-device", string(tree.Device))
	w.attr("data-language", tree.Language)
	if tree.Stale {
		w.attr("data-stale", "true")
	}
	w.html.WriteString(">\n")
	for _, n := range tree.Roots {
		w.node(n, 1)
	}
	w.html.WriteString("</div>\n")
}

func (w *writer) node(n *render.Node, depth int) {
	class := w.className(n.ID)
	decls := []banner.Property{
		{Name: "position", Value: "absolute"},
		{Name: "left", Value: px(n.Bounds.Left)},
		{Name: "top", Value: px(n.Bounds.Top)},
		{Name: "width", Value: px(n.Bounds.Width())},
		{Name: "height", Value: px(n.Bounds.Height())},
	}
	for _, p := range n.Style.Extra {
		if name := cssName(p.Name); name != "" {
			decls = append(decls, banner.Property{Name: name, Value: cssValue(p.Value)})
		}
	}
	decls = append(decls, typeDeclarations(n)...)
	w.rule(class, decls)
	if n.Image != nil && !n.Failed {
		w.rule(class+" img", []banner.Property{
			{Name: "width", Value: "100%"},
			{Name: "height", Value: "100%"},
			{Name: "object-fit", Value: "contain"},
		})
	}

	indent := strings.Repeat("  ", depth)
	kind := string(n.Type)
	if n.Failed {
		kind = "error"
	}
	tag := "div"
	if n.Button != nil && !n.Failed {
		tag = "button"
	}
	w.html.WriteString(indent + "<" + tag + ` class="` + ClassPrefix + "node " + ClassPrefix + kind + " " + class + `"`)
	w.attr("data-id", n.ID)
	if tag == "button" {
		w.attr("type", "button")
		w.attr("data-action", string(n.Button.Action))
	}

	switch {
	case n.Failed:
		w.html.WriteString(` role="alert">` + html.EscapeString(n.Message))
	case n.Text != nil:
		w.html.WriteString(">")
		for i, line := range n.Text.Lines {
			if i > 0 {
				w.html.WriteString("<br>")
			}
			w.html.WriteString(html.EscapeString(line))
		}
	case n.Button != nil:
		w.html.WriteString(">" + html.EscapeString(n.Button.Label))
	case n.Image != nil:
		w.html.WriteString(">")
		w.image(n)
	case n.Selector != nil:
		w.html.WriteString(">" + n.Selector.Markup)
	case n.Layout != nil:
		w.attr("data-mode", string(n.Layout.Mode))
		w.html.WriteString(">")
		if n.Layout.Placeholder != "" {
			w.html.WriteString(`<div class="` + ClassPrefix + `placeholder">` + html.EscapeString(n.Layout.Placeholder) + "</div>")
		}
		if len(n.Children) > 0 {
			w.html.WriteString("\n")
			for _, c := range n.Children {
				w.node(c, depth+1)
			}
			w.html.WriteString(indent)
		}
	default:
		w.html.WriteString(">")
	}
	w.html.WriteString("</" + tag + ">\n")
}

func (w *writer) image(n *render.Node) {
	img := n.Image
	switch {
	case img.State == imagesrc.StateFailed:
		w.html.WriteString(`<span class="` + ClassPrefix + `icon" aria-hidden="true">&#9888;</span>`)
		w.html.WriteString(`<span class="` + ClassPrefix + `message">` + html.EscapeString(img.Message) + "</span>")
	case img.Loading():
		w.html.WriteString(`<span class="` + ClassPrefix + `loading">Loading</span>`)
	default:
		w.html.WriteString(`<img alt=""`)
		w.attr("src", img.URL)
		w.html.WriteString(">")
	}
}

func typeDeclarations(n *render.Node) []banner.Property {
	switch {
	case n.Failed:
		return []banner.Property{{Name: "outline", Value: "1px dashed #dc2626"}, {Name: "overflow", Value: "hidden"}}
	case n.Text != nil:
		return []banner.Property{
			{Name: "overflow", Value: "hidden"},
			{Name: "overflow-wrap", Value: "break-word"},
			{Name: "line-height", Value: px(n.Text.LineHeight)},
		}
	case n.Image != nil:
		decls := []banner.Property{{Name: "overflow", Value: "hidden"}}
		if n.Image.State == imagesrc.StateFailed || n.Image.Loading() {
			decls = append(decls,
				banner.Property{Name: "display", Value: "flex"},
				banner.Property{Name: "flex-direction", Value: "column"},
				banner.Property{Name: "align-items", Value: "center"},
				banner.Property{Name: "justify-content", Value: "center"})
		}
		return decls
	case n.Layout != nil && n.Layout.Placeholder != "":
		return []banner.Property{
			{Name: "display", Value: "flex"},
			{Name: "align-items", Value: "center"},
			{Name: "justify-content", Value: "center"},
		}
	}
	return nil
}

func (w *writer) rule(selector string, decls []banner.Property) {
	w.css.WriteString("." + selector + " {")
	for _, d := range decls {
		w.css.WriteString(" " + d.Name + ": " + d.Value + ";")
	}
	w.css.WriteString(" }\n")
}

func (w *writer) attr(name, value string) {
	w.html.WriteString(" " + name + `="` + html.EscapeString(value) + `"`)
}

// className returns a unique class for id made of lowercase letters, digits,
// '-' and '_'.
func (w *writer) className(id string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(id) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	base := ClassPrefix + sb.String()
	if sb.Len() == 0 {
		base = ClassPrefix + "node"
	}
	w.classes[base]++
	if n := w.classes[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}

// cssName converts a style key to a CSS property name: "backgroundColor"
// becomes "background-color". Names with characters outside [a-zA-Z0-9-]
// are dropped.
func cssName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			sb.WriteRune(r)
		case r == '_':
			sb.WriteByte('-')
		default:
			return ""
		}
	}
	return sb.String()
}

// cssValue strips characters that would end a declaration or rule.
func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>':
			return -1
		}
		return r
	}, v)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
