package render

import (
	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/graphics"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/profile"
)

// EmptyContainerMessage is shown centered in a container with no children.
const EmptyContainerMessage = "Drop components here"

// ImageErrorMessage accompanies the error icon of a failed image.
const ImageErrorMessage = "Image could not be loaded"

// Tree is the output of one render pass.
type Tree struct {
	Device   banner.Device
	Language string
	Frame    profile.Frame
	Roots    []*Node
	// Stale reports that the frame reference was unmeasured, so sizes are
	// untransformed. The host should render again once it has measured.
	Stale bool
}

// Node is the rendered form of one component. Bounds are relative to the
// parent's inner box, or to the frame for roots.
type Node struct {
	ID   string
	Type banner.ComponentType
	// Bounds is the node's box. Its size honours the containment limit for
	// children.
	Bounds graphics.Rect
	// Style is the transformed style; Extra declarations pass through.
	Style banner.StyleAttributes
	// Resolved is false when the node was sized against an unmeasured
	// reference.
	Resolved bool

	Text     *TextBox
	Button   *ButtonBox
	Image    *ImageBox
	Selector *SelectorBox
	// Layout is set for containers.
	Layout *LayoutBox

	// Failed marks a node whose render panicked; Message explains it.
	Failed  bool
	Message string

	Children []*Node
}

// TextBox is the laid out content of a text node.
type TextBox struct {
	Value      string
	Lines      []string
	LineHeight float64
	// Visible is the number of lines that fit the box; the rest is clipped.
	Visible int
}

// ButtonBox is the label and action of a button.
type ButtonBox struct {
	Label  string
	Action banner.Action
}

// ImageBox is the resolution state of an image node.
type ImageBox struct {
	State    imagesrc.State
	URL      string
	Strategy imagesrc.Strategy
	// Message is set for the error placeholder.
	Message string
}

// Loading reports whether the image is still being resolved.
func (b *ImageBox) Loading() bool {
	return b.State == imagesrc.StateIdle || b.State == imagesrc.StateResolving
}

// SelectorBox holds what the selector collaborator drew.
type SelectorBox struct {
	Current   string
	Available []string
	Markup    string
}

// LayoutBox describes how a container placed its children.
type LayoutBox struct {
	Mode banner.DisplayMode
	// Placeholder is set when the container has no children.
	Placeholder string
}

// Walk visits every rendered node depth-first. Returning false from fn
// skips the node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
}

// Find returns the rendered node with the given id, or nil.
func (t *Tree) Find(id string) *Node {
	var found *Node
	Walk(t.Roots, func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
		}
		return found == nil
	})
	return found
}

// Count returns the number of rendered nodes.
func (t *Tree) Count() int {
	n := 0
	Walk(t.Roots, func(*Node, int) bool { n++; return true })
	return n
}
