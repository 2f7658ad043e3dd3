package testing

import (
	"context"
	"fmt"

	"github.com/go-drift/bannerkit/pkg/graphics"
	"github.com/go-drift/bannerkit/pkg/preview"
	"github.com/go-drift/bannerkit/pkg/render"
)

// Tap presses the first button matched by finder and returns the resulting
// visibility. Call Pump to see the effect in the tree.
func (t *BannerTester) Tap(finder Finder) (preview.Visibility, error) {
	result := t.Find(finder)
	if !result.Exists() {
		return t.Visibility(), fmt.Errorf("Tap: finder matched no nodes: %s", finder.Description())
	}
	n := result.First()
	if n.Button == nil || n.Failed {
		return t.Visibility(), fmt.Errorf("Tap: node %q is not a button: %s", n.ID, finder.Description())
	}
	return t.session.Dispatch(string(n.Button.Action)), nil
}

// TapAt presses the topmost button under pos, given in frame coordinates.
func (t *BannerTester) TapAt(pos graphics.Offset) (preview.Visibility, error) {
	tree := t.Tree()
	if tree == nil {
		return t.Visibility(), fmt.Errorf("TapAt: nothing rendered")
	}
	n := HitTest(tree, pos)
	if n == nil || n.Button == nil || n.Failed {
		return t.Visibility(), fmt.Errorf("TapAt: no button at (%g, %g)", pos.X, pos.Y)
	}
	return t.session.Dispatch(string(n.Button.Action)), nil
}

// SelectLanguage picks lang in the language selector.
func (t *BannerTester) SelectLanguage(lang string) error {
	return t.session.SetLanguage(context.Background(), lang)
}

// HitTest returns the deepest, last painted node containing pos, or nil.
// Pos is in frame coordinates.
func HitTest(tree *render.Tree, pos graphics.Offset) *render.Node {
	return hitTest(tree.Roots, graphics.Offset{}, pos)
}

func hitTest(nodes []*render.Node, origin, pos graphics.Offset) *render.Node {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		abs := n.Bounds.Shift(origin)
		if !abs.ContainsPoint(pos) {
			continue
		}
		if hit := hitTest(n.Children, abs.Origin(), pos); hit != nil {
			return hit
		}
		return n
	}
	return nil
}

// AbsoluteBounds returns the frame-relative box of the node with id.
func AbsoluteBounds(tree *render.Tree, id string) (graphics.Rect, bool) {
	var walk func(nodes []*render.Node, origin graphics.Offset) (graphics.Rect, bool)
	walk = func(nodes []*render.Node, origin graphics.Offset) (graphics.Rect, bool) {
		for _, n := range nodes {
			abs := n.Bounds.Shift(origin)
			if n.ID == id {
				return abs, true
			}
			if r, ok := walk(n.Children, abs.Origin()); ok {
				return r, true
			}
		}
		return graphics.Rect{}, false
	}
	return walk(tree.Roots, graphics.Offset{})
}
