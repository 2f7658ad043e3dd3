package geometry

import (
	"math"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/graphics"
)

// Box is the result of sizing one component against its reference.
type Box struct {
	// Style is the transformed style.
	Style banner.StyleAttributes
	// Size is the concrete pixel size chosen for the component.
	Size graphics.Size
	// Resolved reports whether the reference was measured. When false, Size
	// is a best-effort fallback and Style still carries relative values.
	Resolved bool
}

// Sizer computes a component's box from its style. Intrinsic supplies the
// size used for auto or unresolved dimensions.
type Sizer struct {
	Reference graphics.Reference
	IsChild   bool
}

// Size transforms style and picks concrete pixel dimensions.
//
// Explicit pixel sizes win, then the intrinsic size. The result honours the
// transformed min- and max- bounds and, for children, the containment limit.
func (s Sizer) Size(style banner.StyleAttributes, intrinsic graphics.Size) Box {
	ts := Transform(style, s.Reference, s.IsChild)
	w := pick(ts.Width, intrinsic.Width)
	h := pick(ts.Height, intrinsic.Height)

	w = bound(w, ts.MinWidth, ts.MaxWidth)
	h = bound(h, ts.MinHeight, ts.MaxHeight)

	if s.IsChild && s.Reference.Measured {
		w = math.Min(w, ContainmentLimit(s.Reference.Size.Width))
		h = math.Min(h, ContainmentLimit(s.Reference.Size.Height))
	}
	return Box{
		Style:    ts,
		Size:     graphics.Size{Width: math.Max(0, math.Round(w)), Height: math.Max(0, math.Round(h))},
		Resolved: s.Reference.Measured,
	}
}

func pick(d banner.Dimension, fallback float64) float64 {
	if v, ok := Pixels(d); ok {
		return v
	}
	return fallback
}

func bound(v float64, lo, hi banner.Dimension) float64 {
	if floor, ok := Pixels(lo); ok && v < floor {
		v = floor
	}
	if ceil, ok := Pixels(hi); ok && v > ceil {
		v = ceil
	}
	return v
}
