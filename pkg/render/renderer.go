// Package render walks a banner component tree and produces the concrete
// geometry and visual state of every node for one device and language.
//
// Roots are laid out against the banner frame, children against their
// container's inner box. A node that fails to render, or whose type is not
// known, never prevents its siblings or ancestors from rendering.
package render

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/geometry"
	"github.com/go-drift/bannerkit/pkg/graphics"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/profile"
)

// Minimum size of a text box.
const (
	MinTextWidth  = 50
	MinTextHeight = 20
)

// Intrinsic sizes used when a style leaves a dimension to content.
var (
	buttonPadding   = graphics.Size{Width: 16, Height: 8}
	imageSize       = graphics.Size{Width: 120, Height: 80}
	selectorSize    = graphics.Size{Width: 120, Height: 32}
	containerHeight = 100.0
	unmeasuredWidth = 300.0
)

// Options configures a Renderer.
type Options struct {
	Device          banner.Device
	Language        string
	DefaultLanguage string
	// Languages are offered by language selectors.
	Languages []string
	// Metrics measures text; nil uses graphics.DefaultTextMetrics.
	Metrics *graphics.TextMetrics
	// Images resolves image sources; nil uses a resolver without network
	// access.
	Images *imagesrc.Resolver
	// Selector draws language selectors; nil uses DefaultSelector.
	Selector SelectorRenderer
	Reporter errors.Reporter
	// Dev logs a warning with a suggestion for unknown component types.
	Dev bool
}

// Renderer renders component trees.
type Renderer struct {
	opts Options
}

// New returns a renderer with defaults filled in.
func New(opts Options) *Renderer {
	if opts.Metrics == nil {
		opts.Metrics = graphics.DefaultTextMetrics()
	}
	if opts.Selector == nil {
		opts.Selector = DefaultSelector{}
	}
	if opts.Images == nil {
		reg := imagesrc.NewBlobRegistry(imagesrc.DefaultBlobCapacity)
		opts.Images = imagesrc.NewResolver(imagesrc.Options{
			Chain:    imagesrc.Chain{Registry: reg},
			Loader:   imagesrc.SchemeLoader{Data: imagesrc.DataURILoader{}, Blob: imagesrc.BlobLoader{Registry: reg}},
			Reporter: opts.Reporter,
		})
	}
	if opts.Language == "" {
		opts.Language = opts.DefaultLanguage
	}
	return &Renderer{opts: opts}
}

// Images returns the image resolver used by the renderer.
func (r *Renderer) Images() *imagesrc.Resolver { return r.opts.Images }

// Render lays out components inside frame. Components may be nested or
// flat (see banner.Roots). Image state of ids no longer present is dropped.
func (r *Renderer) Render(ctx context.Context, frame profile.Frame, components []banner.Node) *Tree {
	roots := banner.Roots(components)
	p := &pass{Renderer: r, ctx: ctx, images: make(map[string]bool)}
	tree := &Tree{
		Device:   r.opts.Device,
		Language: r.opts.Language,
		Frame:    frame,
		Stale:    !frame.Reference.Measured,
	}
	for i := range roots {
		if n := p.node(&roots[i], frame.Reference, false); n != nil {
			tree.Roots = append(tree.Roots, n)
		}
	}
	r.opts.Images.Retain(func(id string) bool { return p.images[id] })
	return tree
}

// pass holds per-render state.
type pass struct {
	*Renderer
	ctx    context.Context
	images map[string]bool
}

// node renders n against ref. It returns nil for unknown types.
func (p *pass) node(n *banner.Node, ref graphics.Reference, isChild bool) (out *Node) {
	style := banner.ResolveStyle(n, p.opts.Device)
	pos, _ := geometry.ResolvePosition(banner.ResolvePosition(n, p.opts.Device), ref)

	defer errors.RecoverNode(p.opts.Reporter, "render.node", n.ID, func(v any) {
		box := geometry.Sizer{Reference: ref, IsChild: isChild}.Size(style, graphics.Size{})
		out = &Node{
			ID:       n.ID,
			Type:     banner.ComponentType(n.Type),
			Bounds:   graphics.RectFromLTWH(pos.X, pos.Y, box.Size.Width, box.Size.Height),
			Style:    box.Style,
			Resolved: box.Resolved,
			Failed:   true,
			Message:  fmt.Sprint(v),
		}
	})

	comp, err := Decode(n)
	if err != nil {
		p.unknown(n, err)
		return nil
	}

	b := &builder{pass: p, node: n, style: style, sizer: geometry.Sizer{Reference: ref, IsChild: isChild}}
	comp.Accept(b)
	out = b.out
	out.ID = n.ID
	out.Type = comp.Type()
	out.Bounds = graphics.RectFromLTWH(pos.X, pos.Y, b.size.Width, b.size.Height)
	return out
}

func (p *pass) unknown(n *banner.Node, err error) {
	p.opts.Reporter.Report(&errors.BannerError{
		Op:     "render.node",
		Kind:   errors.KindUnknownComponentType,
		NodeID: n.ID,
		Err:    err,
	})
	if p.opts.Dev {
		log.Printf("WARNING: skipping node %q: %v", n.ID, err)
	}
}

// builder renders one decoded component.
type builder struct {
	pass  *pass
	node  *banner.Node
	style banner.StyleAttributes
	sizer geometry.Sizer

	out  *Node
	size graphics.Size
}

func (b *builder) finish(box geometry.Box, size graphics.Size) *Node {
	b.size = size
	b.out = &Node{Style: box.Style, Resolved: box.Resolved}
	return b.out
}

func (b *builder) display() string {
	return b.node.Content.Display(b.pass.opts.Language, b.pass.opts.DefaultLanguage)
}

func (b *builder) VisitText(c *Text) {
	m := b.pass.opts.Metrics
	text := b.display()

	first := b.sizer.Size(b.style, graphics.Size{Width: m.Advance(text), Height: m.LineHeight()})
	wrapped := m.Layout(text, first.Size.Width)
	box := b.sizer.Size(b.style, graphics.Size{Width: first.Size.Width, Height: wrapped.Size.Height})
	size := b.fitText(box)
	if size.Width != first.Size.Width {
		wrapped = m.Layout(text, size.Width)
	}

	visible := int(math.Floor(size.Height / wrapped.LineHeight))
	visible = min(max(visible, 1), len(wrapped.Lines))
	out := b.finish(box, size)
	out.Text = &TextBox{Value: text, Lines: wrapped.Lines, LineHeight: wrapped.LineHeight, Visible: visible}
}

// fitText applies the text floor, then caps the box at its own resolved
// max bounds and, for children, the containment limit.
func (b *builder) fitText(box geometry.Box) graphics.Size {
	w := math.Max(box.Size.Width, MinTextWidth)
	h := math.Max(box.Size.Height, MinTextHeight)
	if v, ok := geometry.Pixels(box.Style.MaxWidth); ok {
		w = math.Min(w, v)
	}
	if v, ok := geometry.Pixels(box.Style.MaxHeight); ok {
		h = math.Min(h, v)
	}
	if ref := b.sizer.Reference; b.sizer.IsChild && ref.Measured {
		w = math.Min(w, geometry.ContainmentLimit(ref.Size.Width))
		h = math.Min(h, geometry.ContainmentLimit(ref.Size.Height))
	}
	return graphics.Size{Width: w, Height: h}
}

func (b *builder) VisitButton(c *Button) {
	m := b.pass.opts.Metrics
	label := b.display()
	box := b.sizer.Size(b.style, graphics.Size{
		Width:  m.Advance(label) + 2*buttonPadding.Width,
		Height: m.LineHeight() + 2*buttonPadding.Height,
	})
	out := b.finish(box, box.Size)
	out.Button = &ButtonBox{Label: label, Action: c.Action}
}

func (b *builder) VisitImage(c *Image) {
	p := b.pass
	p.images[b.node.ID] = true
	st := p.opts.Images.Request(p.ctx, b.node.ID, imagesrc.Source{
		PreviewURL:      b.style.PreviewURL,
		BlobID:          b.style.BlobID,
		Content:         b.node.Content,
		DefaultLanguage: p.opts.DefaultLanguage,
	})

	intrinsic := imageSize
	if st.State == imagesrc.StateResolved && st.Info.Width > 0 && st.Info.Height > 0 {
		intrinsic = graphics.Size{Width: float64(st.Info.Width), Height: float64(st.Info.Height)}
	}
	box := b.sizer.Size(b.style, intrinsic)
	out := b.finish(box, box.Size)
	out.Image = &ImageBox{State: st.State, URL: st.URL, Strategy: st.Strategy}
	if st.State == imagesrc.StateFailed {
		out.Image.Message = ImageErrorMessage
	}
}

func (b *builder) VisitLanguageSelector(c *LanguageSelector) {
	opts := b.pass.opts
	box := b.sizer.Size(b.style, selectorSize)
	available := opts.Languages
	if len(available) == 0 && opts.DefaultLanguage != "" {
		available = []string{opts.DefaultLanguage}
	}
	props := SelectorProps{
		ID:        b.node.ID,
		Size:      box.Size,
		Current:   opts.Language,
		Available: available,
	}
	out := b.finish(box, box.Size)
	out.Selector = &SelectorBox{
		Current:   props.Current,
		Available: props.Available,
		Markup:    opts.Selector.RenderSelector(props),
	}
}

func (b *builder) VisitContainer(c *Container) {
	ref := b.sizer.Reference
	intrinsic := graphics.Size{Width: unmeasuredWidth, Height: containerHeight}
	if ref.Measured {
		intrinsic.Width = ref.Size.Width
	}
	box := b.sizer.Size(b.style, intrinsic)
	out := b.finish(box, box.Size)

	cfg := banner.ResolveContainerConfig(b.node, b.pass.opts.Device)
	out.Layout = &LayoutBox{Mode: cfg.Mode()}
	if len(c.Children()) == 0 {
		out.Layout.Placeholder = EmptyContainerMessage
		return
	}

	inner := graphics.Unmeasured
	if box.Resolved {
		inner = graphics.Measured(box.Size.Width, box.Size.Height)
	}
	for i := range b.node.Children {
		if child := b.pass.node(&b.node.Children[i], inner, true); child != nil {
			out.Children = append(out.Children, child)
		}
	}

	switch out.Layout.Mode {
	case banner.DisplayFlex:
		layoutFlex(out.Children, cfg, box.Size)
	case banner.DisplayGrid:
		b.reportTracks(cfg)
		layoutGrid(out.Children, cfg, box.Size)
	}
}

// reportTracks reports grid template tokens that fall back to auto tracks.
func (b *builder) reportTracks(cfg banner.ContainerConfig) {
	for _, tmpl := range []struct{ field, value string }{
		{"gridTemplateColumns", cfg.GridTemplateColumns},
		{"gridTemplateRows", cfg.GridTemplateRows},
	} {
		parseTracks(tmpl.value, func(tok string) {
			b.pass.opts.Reporter.Report(&errors.BannerError{
				Op:     "render.grid",
				Kind:   errors.KindParsing,
				NodeID: b.node.ID,
				Err:    &errors.ParseError{Field: tmpl.field, Value: tok, Reason: "unrecognised track, auto used"},
			})
		})
	}
}
