package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/render"
)

// Finder locates nodes in a render tree.
type Finder interface {
	// Evaluate returns all matching nodes under roots (depth-first pre-order).
	Evaluate(roots []*render.Node) []*render.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []*render.Node
	finder Finder
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *render.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *render.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *render.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.description()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*render.Node { return r.nodes }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.nodes) }

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool { return len(r.nodes) > 0 }

// predicateFinder matches nodes satisfying a predicate.
type predicateFinder struct {
	fn   func(*render.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(roots []*render.Node) []*render.Node {
	return collectMatches(roots, f.fn)
}

func (f *predicateFinder) Description() string { return f.desc }

// ByID returns a finder that matches the node with the given component id.
func ByID(id string) Finder {
	return &predicateFinder{
		fn:   func(n *render.Node) bool { return n.ID == id },
		desc: fmt.Sprintf("ByID(%q)", id),
	}
}

// ByType returns a finder that matches nodes of the given component type.
func ByType(t banner.ComponentType) Finder {
	return &predicateFinder{
		fn:   func(n *render.Node) bool { return n.Type == t },
		desc: fmt.Sprintf("ByType(%s)", t),
	}
}

// ByText returns a finder that matches text nodes and buttons whose
// rendered content equals text.
func ByText(text string) Finder {
	return &predicateFinder{
		fn:   func(n *render.Node) bool { c, ok := content(n); return ok && c == text },
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining returns a finder that matches text nodes and buttons
// whose rendered content contains substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		fn:   func(n *render.Node) bool { c, ok := content(n); return ok && strings.Contains(c, substring) },
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// ByAction returns a finder that matches buttons bound to action.
func ByAction(action banner.Action) Finder {
	return &predicateFinder{
		fn:   func(n *render.Node) bool { return n.Button != nil && n.Button.Action == action },
		desc: fmt.Sprintf("ByAction(%s)", action),
	}
}

// Failed returns a finder that matches nodes whose render panicked.
func Failed() Finder {
	return &predicateFinder{
		fn:   func(n *render.Node) bool { return n.Failed },
		desc: "Failed()",
	}
}

// ByPredicate returns a finder that matches nodes satisfying fn.
func ByPredicate(fn func(*render.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds nodes matching 'matching' below nodes matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(roots []*render.Node) []*render.Node {
	var results []*render.Node
	seen := make(map[*render.Node]bool)
	for _, ancestor := range f.of.Evaluate(roots) {
		for _, match := range f.matching.Evaluate(ancestor.Children) {
			if !seen[match] {
				seen[match] = true
				results = append(results, match)
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches nodes satisfying 'matching'
// that are descendants of nodes matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

func content(n *render.Node) (string, bool) {
	switch {
	case n.Text != nil:
		return n.Text.Value, true
	case n.Button != nil:
		return n.Button.Label, true
	}
	return "", false
}

// collectMatches performs a depth-first pre-order traversal, collecting
// nodes that satisfy the predicate.
func collectMatches(roots []*render.Node, predicate func(*render.Node) bool) []*render.Node {
	var results []*render.Node
	render.Walk(roots, func(n *render.Node, _ int) bool {
		if predicate(n) {
			results = append(results, n)
		}
		return true
	})
	return results
}
