// Package profile turns a per-device layout profile into the banner's outer
// frame: its positioning declarations and the measured box the root
// components are laid out against.
package profile

import (
	stderrors "errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/geometry"
	"github.com/go-drift/bannerkit/pkg/graphics"
)

// Defaults substituted for missing profile fields.
const (
	DefaultBackground = "#ffffff"
	FloatingMargin    = 20
)

var (
	DefaultWidth     = banner.Percent(100)
	DefaultHeight    = banner.Auto()
	DefaultMinHeight = banner.Px(100)
)

// Viewport returns the full-screen preview size for a device.
func Viewport(d banner.Device) graphics.Size {
	switch d {
	case banner.Tablet:
		return graphics.Size{Width: 768, Height: 1024}
	case banner.Mobile:
		return graphics.Size{Width: 375, Height: 667}
	default:
		return graphics.Size{Width: 1280, Height: 800}
	}
}

// floatingMaxWidth is the widest a floating banner may be, relative to the
// viewport.
func floatingMaxWidth(d banner.Device) banner.Dimension {
	switch d {
	case banner.Mobile:
		return banner.Percent(85)
	case banner.Tablet:
		return banner.Percent(60)
	default:
		return banner.Percent(40)
	}
}

// modalMax returns the modal max-width and max-height for a device.
func modalMax(d banner.Device) (width, height banner.Dimension) {
	switch d {
	case banner.Mobile:
		return banner.Percent(90), banner.Percent(90)
	case banner.Tablet:
		return banner.Percent(80), banner.Percent(80)
	default:
		return banner.Px(600), banner.Percent(80)
	}
}

// HostKind distinguishes the two hosting contexts.
type HostKind int

const (
	// HostFullScreen renders against the device viewport.
	HostFullScreen HostKind = iota
	// HostInline renders inside the editor's preview panel.
	HostInline
)

// String returns a human-readable representation of the host kind.
func (k HostKind) String() string {
	switch k {
	case HostFullScreen:
		return "fullscreen"
	case HostInline:
		return "inline"
	default:
		return fmt.Sprintf("HostKind(%d)", int(k))
	}
}

// Host describes where the banner is shown.
type Host struct {
	Kind HostKind
	// Panel is the measured size of the inline preview panel. It is ignored
	// for full-screen hosts.
	Panel graphics.Reference
}

// FullScreen returns the full-screen host.
func FullScreen() Host { return Host{Kind: HostFullScreen} }

// Inline returns an inline host with a measured panel.
func Inline(width, height float64) Host {
	return Host{Kind: HostInline, Panel: graphics.Measured(width, height)}
}

// Container returns the box the frame is positioned inside.
func (h Host) Container(d banner.Device) graphics.Reference {
	if h.Kind == HostInline {
		return h.Panel
	}
	v := Viewport(d)
	return graphics.Measured(v.Width, v.Height)
}

// Frame is the resolved outer frame of a banner.
type Frame struct {
	Type     banner.LayoutType
	Position string
	// Declarations are the frame's CSS declarations in emission order.
	Declarations []banner.Property
	// Bounds is the frame's box inside the host container. It is only
	// meaningful when Reference is measured.
	Bounds graphics.Rect
	// Reference is the geometry root components resolve against.
	Reference graphics.Reference
}

// Declaration returns the value of a frame declaration.
func (f Frame) Declaration(name string) string {
	for _, d := range f.Declarations {
		if d.Name == name {
			return d.Value
		}
	}
	return ""
}

// Resolver resolves layout profiles and reports substituted defaults.
type Resolver struct {
	Reporter errors.Reporter
}

var errMissing = stderrors.New("field missing; default used")

// Resolve computes the frame for profile on device inside host.
func (r Resolver) Resolve(p banner.LayoutProfile, device banner.Device, host Host) Frame {
	p = r.withDefaults(p, device)
	container := host.Container(device)

	f := Frame{Type: p.Type, Position: strings.ToLower(p.Position)}
	decl := func(name, value string) {
		f.Declarations = append(f.Declarations, banner.Property{Name: name, Value: value})
	}
	decl("background", p.Background)

	width := frameWidth(p, device, host)
	height := p.Height
	minHeight := p.MinHeight

	var maxW, maxH banner.Dimension
	switch p.Type {
	case banner.LayoutBanner:
		decl("position", "absolute")
		decl("left", "0")
		switch f.Position {
		case "top":
			decl("top", "0")
		case "center":
			decl("top", "50%")
			decl("transform", "translateY(-50%)")
		default:
			f.Position = "bottom"
			decl("bottom", "0")
		}
	case banner.LayoutFloating:
		decl("position", "absolute")
		corner := f.Position
		if !isCorner(corner) {
			corner = "bottom-right"
		}
		f.Position = corner
		vert, horiz, _ := strings.Cut(corner, "-")
		decl(vert, fmt.Sprintf("%dpx", FloatingMargin))
		decl(horiz, fmt.Sprintf("%dpx", FloatingMargin))
		maxW = floatingMaxWidth(device)
	case banner.LayoutModal:
		decl("position", "absolute")
		decl("top", "50%")
		decl("left", "50%")
		decl("transform", "translate(-50%, -50%)")
		decl("overflow", "auto")
		f.Position = "center"
		maxW, maxH = modalMax(device)
	}

	decl("width", width.String())
	if maxW.IsSet() {
		decl("max-width", maxW.String())
	}
	decl("height", height.String())
	decl("min-height", minHeight.String())
	if maxH.IsSet() {
		decl("max-height", maxH.String())
	}

	if !container.Measured {
		r.Reporter.Report(&errors.BannerError{
			Op:   "profile.Resolve",
			Kind: errors.KindGeometryUnavailable,
			Err:  stderrors.New("host container not measured"),
		})
		return f
	}

	cw, ch := container.Size.Width, container.Size.Height
	style := banner.StyleAttributes{Width: width, Height: height, MinHeight: minHeight, MaxWidth: maxW, MaxHeight: maxH}
	box := geometry.Sizer{Reference: container}.Size(style, graphics.Size{Width: cw, Height: 0})
	w, h := box.Size.Width, box.Size.Height

	f.Bounds = place(f, w, h, cw, ch)
	f.Reference = graphics.Measured(w, h)
	return f
}

func (r Resolver) withDefaults(p banner.LayoutProfile, device banner.Device) banner.LayoutProfile {
	missing := func(field string) {
		r.Reporter.Report(&errors.BannerError{
			Op:   "profile.Resolve",
			Kind: errors.KindConfigurationMissing,
			Err:  fmt.Errorf("%s.%s: %w", device, field, errMissing),
		})
	}
	if p.Type == "" {
		missing("type")
	}
	p.Type = banner.LayoutType(strings.ToLower(string(p.Type)))
	if strings.TrimSpace(p.Background) == "" {
		missing("background")
		p.Background = DefaultBackground
	}
	if !p.Width.IsSet() {
		missing("width")
		p.Width = DefaultWidth
	}
	if !p.Height.IsSet() {
		missing("height")
		p.Height = DefaultHeight
	}
	if !p.MinHeight.IsSet() {
		missing("minHeight")
		p.MinHeight = DefaultMinHeight
	}
	return p
}

// frameWidth picks the declared frame width. Full-screen banners span the
// device breakpoint in fixed pixels; inline previews keep the relative width.
func frameWidth(p banner.LayoutProfile, device banner.Device, host Host) banner.Dimension {
	if p.Type == banner.LayoutBanner && host.Kind == HostFullScreen {
		return banner.Px(Viewport(device).Width)
	}
	return p.Width
}

func place(f Frame, w, h, cw, ch float64) graphics.Rect {
	switch f.Type {
	case banner.LayoutBanner:
		switch f.Position {
		case "top":
			return graphics.RectFromLTWH(0, 0, w, h)
		case "center":
			return graphics.RectFromLTWH(0, math.Round((ch-h)/2), w, h)
		default:
			return graphics.RectFromLTWH(0, ch-h, w, h)
		}
	case banner.LayoutFloating:
		left, top := float64(FloatingMargin), float64(FloatingMargin)
		if strings.HasSuffix(f.Position, "right") {
			left = cw - w - FloatingMargin
		}
		if strings.HasPrefix(f.Position, "bottom") {
			top = ch - h - FloatingMargin
		}
		return graphics.RectFromLTWH(left, top, w, h)
	case banner.LayoutModal:
		return graphics.RectFromLTWH(math.Round((cw-w)/2), math.Round((ch-h)/2), w, h)
	default:
		return graphics.RectFromLTWH(0, 0, w, h)
	}
}

func isCorner(p string) bool {
	switch p {
	case "top-left", "top-right", "bottom-left", "bottom-right":
		return true
	}
	return false
}
