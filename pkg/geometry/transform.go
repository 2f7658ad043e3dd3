// Package geometry converts relative size expressions into pixel geometry
// against a measured reference box and enforces child containment.
package geometry

import (
	"math"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/graphics"
)

// ContainmentRatio is the largest fraction of its parent's inner box a
// child component may occupy in either dimension.
const ContainmentRatio = 0.95

// ContainmentLimit returns the largest whole-pixel size a child may have
// inside a reference dimension.
func ContainmentLimit(reference float64) float64 {
	return math.Floor(ContainmentRatio * reference)
}

// Transform resolves the size fields of style against ref.
//
// Percentages become round(p/100*ref) pixels and pixel values are rounded.
// When isChild is set every size field is clamped to ContainmentLimit of
// the reference; otherwise only the max- variants are clamped, to the
// reference itself. Auto, raw and unset values are left alone.
//
// An unmeasured reference returns style unchanged; the caller retries on a
// later pass. Transform is idempotent.
func Transform(style banner.StyleAttributes, ref graphics.Reference, isChild bool) banner.StyleAttributes {
	if !ref.Measured {
		return style
	}
	w, h := ref.Size.Width, ref.Size.Height
	out := style

	if isChild {
		wl, hl := ContainmentLimit(w), ContainmentLimit(h)
		out.Width = clamp(resolve(style.Width, w), wl)
		out.Height = clamp(resolve(style.Height, h), hl)
		out.MinWidth = clamp(resolve(style.MinWidth, w), wl)
		out.MinHeight = clamp(resolve(style.MinHeight, h), hl)
		out.MaxWidth = clamp(resolve(style.MaxWidth, w), wl)
		out.MaxHeight = clamp(resolve(style.MaxHeight, h), hl)
		return out
	}

	out.Width = resolve(style.Width, w)
	out.Height = resolve(style.Height, h)
	out.MinWidth = resolve(style.MinWidth, w)
	out.MinHeight = resolve(style.MinHeight, h)
	out.MaxWidth = clamp(resolve(style.MaxWidth, w), math.Round(w))
	out.MaxHeight = clamp(resolve(style.MaxHeight, h), math.Round(h))
	return out
}

// Resolve converts a single dimension against a reference length without
// clamping. Non-numeric dimensions are returned unchanged.
func Resolve(d banner.Dimension, reference float64) banner.Dimension {
	return resolve(d, reference)
}

func resolve(d banner.Dimension, reference float64) banner.Dimension {
	switch d.Unit {
	case banner.UnitPercent:
		return banner.Px(math.Round(d.Value / 100 * reference))
	case banner.UnitPx:
		return banner.Px(math.Round(d.Value))
	default:
		return d
	}
}

func clamp(d banner.Dimension, limit float64) banner.Dimension {
	if d.Unit != banner.UnitPx {
		return d
	}
	if limit < 0 {
		limit = 0
	}
	if d.Value > limit {
		return banner.Px(limit)
	}
	return d
}

// ResolvePosition converts a top/left position against ref. Unset, auto and
// raw offsets resolve to zero. An unmeasured reference resolves pixel values
// only and reports ok=false.
func ResolvePosition(pos banner.Position, ref graphics.Reference) (off graphics.Offset, ok bool) {
	top := offset(pos.Top, ref.Size.Height, ref.Measured)
	left := offset(pos.Left, ref.Size.Width, ref.Measured)
	return graphics.Offset{X: left, Y: top}, ref.Measured
}

func offset(d banner.Dimension, reference float64, measured bool) float64 {
	switch d.Unit {
	case banner.UnitPx:
		return math.Round(d.Value)
	case banner.UnitPercent:
		if measured {
			return math.Round(d.Value / 100 * reference)
		}
	}
	return 0
}

// Pixels returns the pixel value of a resolved dimension and whether it is
// one.
func Pixels(d banner.Dimension) (float64, bool) {
	if d.Unit == banner.UnitPx {
		return d.Value, true
	}
	return 0, false
}
