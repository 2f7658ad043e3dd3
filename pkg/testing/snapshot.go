package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/bannerkit/pkg/render"
)

// UpdateEnv is the environment variable that rewrites golden files instead
// of comparing against them.
const UpdateEnv = "BANNERKIT_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the structure of a render tree.
type Snapshot struct {
	Device   string      `json:"device"`
	Language string      `json:"language,omitempty"`
	Stale    bool        `json:"stale,omitempty"`
	Frame    *FrameNode  `json:"frame"`
	Nodes    []*TreeNode `json:"nodes,omitempty"`
}

// FrameNode is the serialized outer frame.
type FrameNode struct {
	Type         string            `json:"type"`
	Position     string            `json:"position,omitempty"`
	Size         [2]float64        `json:"size"`
	Declarations map[string]string `json:"declarations,omitempty"`
}

// TreeNode represents a node in the serialized render tree.
type TreeNode struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Size       [2]float64     `json:"size"`
	Offset     [2]float64     `json:"offset"`
	Properties map[string]any `json:"props,omitempty"`
	Children   []*TreeNode    `json:"children,omitempty"`
}

// CaptureSnapshot captures the latest tree. It returns nil before the first
// pump.
func (t *BannerTester) CaptureSnapshot() *Snapshot {
	tree := t.Tree()
	if tree == nil {
		return nil
	}
	return CaptureTree(tree)
}

// CaptureTree converts tree into a snapshot.
func CaptureTree(tree *render.Tree) *Snapshot {
	snap := &Snapshot{
		Device:   string(tree.Device),
		Language: tree.Language,
		Stale:    tree.Stale,
		Frame: &FrameNode{
			Type:     string(tree.Frame.Type),
			Position: tree.Frame.Position,
			Size:     [2]float64{round2(tree.Frame.Reference.Size.Width), round2(tree.Frame.Reference.Size.Height)},
		},
	}
	if len(tree.Frame.Declarations) > 0 {
		snap.Frame.Declarations = make(map[string]string, len(tree.Frame.Declarations))
		for _, d := range tree.Frame.Declarations {
			snap.Frame.Declarations[d.Name] = d.Value
		}
	}
	for _, n := range tree.Roots {
		snap.Nodes = append(snap.Nodes, captureNode(n))
	}
	return snap
}

func captureNode(n *render.Node) *TreeNode {
	node := &TreeNode{
		ID:     n.ID,
		Type:   string(n.Type),
		Size:   [2]float64{round2(n.Bounds.Width()), round2(n.Bounds.Height())},
		Offset: [2]float64{round2(n.Bounds.Left), round2(n.Bounds.Top)},
	}
	if props := captureProperties(n); len(props) > 0 {
		node.Properties = props
	}
	for _, c := range n.Children {
		node.Children = append(node.Children, captureNode(c))
	}
	return node
}

func captureProperties(n *render.Node) map[string]any {
	props := make(map[string]any)
	if n.Failed {
		props["failed"] = n.Message
		return props
	}
	if !n.Resolved {
		props["unresolved"] = true
	}
	switch {
	case n.Text != nil:
		props["lines"] = n.Text.Lines
		if n.Text.Visible < len(n.Text.Lines) {
			props["visibleLines"] = n.Text.Visible
		}
	case n.Button != nil:
		props["label"] = n.Button.Label
		props["action"] = string(n.Button.Action)
	case n.Image != nil:
		props["state"] = n.Image.State.String()
		if n.Image.URL != "" {
			props["url"] = n.Image.URL
		}
		if n.Image.Message != "" {
			props["message"] = n.Image.Message
		}
	case n.Selector != nil:
		props["current"] = n.Selector.Current
		props["available"] = n.Selector.Available
	case n.Layout != nil:
		props["mode"] = string(n.Layout.Mode)
		if n.Layout.Placeholder != "" {
			props["placeholder"] = n.Layout.Placeholder
		}
	}
	return props
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// BANNERKIT_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other. Returns the
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e == a {
			continue
		}
		if i < len(expectedLines) {
			fmt.Fprintf(&buf, "-%s\n", e)
		}
		if i < len(actualLines) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
	}
	return buf.String()
}
