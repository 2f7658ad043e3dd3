package banner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Issue is one problem found by [Validate]. Issues never stop rendering;
// they describe where the engine will fall back to defaults.
type Issue struct {
	NodeID  string
	Message string
}

func (i Issue) String() string {
	if i.NodeID == "" {
		return i.Message
	}
	return i.NodeID + ": " + i.Message
}

// Validate checks a configuration against the tree invariants: unique ids,
// roots without ParentID, children whose ParentID names their container, and
// known types, actions, devices and display modes.
func Validate(cfg *Config) []Issue {
	var issues []Issue
	add := func(id, format string, args ...any) {
		issues = append(issues, Issue{NodeID: id, Message: fmt.Sprintf(format, args...)})
	}

	for device := range cfg.Layout {
		if !slices.Contains(Devices, device) {
			add("", "unknown device %q in layout", device)
		}
	}
	for _, device := range Devices {
		if _, ok := cfg.Layout[device]; !ok {
			add("", "no layout for %s; defaults will be used", device)
		}
	}

	known := make(map[string]bool)
	Walk(cfg.Components, func(n *Node, _ int) bool {
		known[n.ID] = true
		return true
	})

	seen := make(map[string]bool)
	var check func(nodes []Node, parent *Node, topLevel bool)
	check = func(nodes []Node, parent *Node, topLevel bool) {
		for i := range nodes {
			n := &nodes[i]
			if n.ID == "" {
				add("", "component without id")
			} else if seen[n.ID] {
				add(n.ID, "duplicate id")
			}
			seen[n.ID] = true

			switch {
			case parent != nil && n.ParentID != parent.ID:
				add(n.ID, "parentId %q does not match containing node %q", n.ParentID, parent.ID)
			case topLevel && n.ParentID != "" && !known[n.ParentID]:
				add(n.ID, "parent %q not found; component will not render", n.ParentID)
			}

			typ, ok := ParseComponentType(n.Type)
			if !ok {
				add(n.ID, "unknown component type %q%s", n.Type, suggestion(n.Type, typeNames()))
			}
			if len(n.Children) > 0 && typ != TypeContainer {
				add(n.ID, "%s cannot have children; they will be ignored", n.Type)
			}
			if typ == TypeButton {
				if _, ok := ParseAction(n.Action); !ok {
					add(n.ID, "unknown action %q%s", n.Action, suggestion(n.Action, actionNames()))
				}
			}
			for device, cc := range n.ContainerConfig {
				if cc.DisplayMode != "" && cc.Mode() != DisplayMode(strings.ToLower(string(cc.DisplayMode))) {
					add(n.ID, "unknown display mode %q for %s; free will be used", cc.DisplayMode, device)
				}
			}
			checkDevices(n, add)
			check(n.Children, n, false)
		}
	}
	check(cfg.Components, nil, true)
	return issues
}

func checkDevices(n *Node, add func(id, format string, args ...any)) {
	var keys []Device
	for d := range n.Style {
		keys = append(keys, d)
	}
	for d := range n.Position {
		keys = append(keys, d)
	}
	for d := range n.ContainerConfig {
		keys = append(keys, d)
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)
	for _, d := range keys {
		if !slices.Contains(Devices, d) {
			add(n.ID, "unknown device %q", d)
		}
	}
}

func typeNames() []string {
	names := make([]string, len(ComponentTypes))
	for i, t := range ComponentTypes {
		names[i] = string(t)
	}
	return names
}

func actionNames() []string {
	names := make([]string, len(Actions))
	for i, a := range Actions {
		names[i] = string(a)
	}
	return names
}

// Suggest returns the candidate closest to word by edit distance, or "" if
// nothing is within a third of the word's length.
func Suggest(word string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(word, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := max(2, len(word)/3)
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

func suggestion(word string, candidates []string) string {
	if s := Suggest(word, candidates); s != "" {
		return fmt.Sprintf(" (did you mean %q?)", s)
	}
	return ""
}
