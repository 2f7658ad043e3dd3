// Package graphics defines the pixel geometry shared by the layout packages
// and a small text measurement helper.
package graphics

import "math"

// Offset represents a 2D point or vector in pixel coordinates.
type Offset struct {
	X float64
	Y float64
}

// Translate returns the offset moved by dx, dy.
func (o Offset) Translate(dx, dy float64) Offset {
	return Offset{X: o.X + dx, Y: o.Y + dy}
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Round returns the size with both dimensions rounded to whole pixels.
func (s Size) Round() Size {
	return Size{Width: math.Round(s.Width), Height: math.Round(s.Height)}
}

// Rect represents a rectangle using left, top, right, bottom coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Size returns the size of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Offset {
	return Offset{X: r.Left, Y: r.Top}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Offset {
	return Offset{
		X: (r.Left + r.Right) * 0.5,
		Y: (r.Top + r.Bottom) * 0.5,
	}
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.Left >= r.Left && other.Top >= r.Top &&
		other.Right <= r.Right && other.Bottom <= r.Bottom
}

// ContainsPoint reports whether p lies inside r. The right and bottom edges
// are exclusive.
func (r Rect) ContainsPoint(p Offset) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Shift returns r translated by o.
func (r Rect) Shift(o Offset) Rect {
	return Rect{Left: r.Left + o.X, Top: r.Top + o.Y, Right: r.Right + o.X, Bottom: r.Bottom + o.Y}
}

// Reference is the measured box that percentage sizes resolve against.
// The zero value is unmeasured.
type Reference struct {
	Size     Size
	Measured bool
}

// Measured returns a measured reference of the given size.
func Measured(width, height float64) Reference {
	return Reference{Size: Size{Width: width, Height: height}, Measured: true}
}

// Unmeasured is the reference used before the host has reported a box.
var Unmeasured = Reference{}
