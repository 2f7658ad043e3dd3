package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/render"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Print the laid out component tree",
		Long: `Lay out a banner configuration and print the resulting tree with each
component's size, offset and content.

` + passFlags,
		Usage: "bannerpreview inspect <banner.yaml> [flags]",
		Run:   runInspect,
	})
}

var (
	colorFrame  = lipgloss.Color("#89b4fa")
	colorID     = lipgloss.Color("#cdd6f4")
	colorMuted  = lipgloss.Color("#7f849c")
	colorOK     = lipgloss.Color("#a6e3a1")
	colorWarn   = lipgloss.Color("#fab387")
	colorFailed = lipgloss.Color("#f38ba8")
)

func runInspect(args []string) error {
	opts, err := parsePassArgs(args, false)
	if err != nil {
		return fmt.Errorf("%w\n\nUsage: bannerpreview inspect <banner.yaml> [flags]", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := preparePass(ctx, opts)
	if err != nil {
		return err
	}
	res, err := p.session.Settle(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, formatTree(res.Tree))
	for _, line := range summarizeReports(p.reports) {
		fmt.Fprintln(stdout, lipgloss.NewStyle().Foreground(colorWarn).Render(line))
	}
	return nil
}

// formatTree renders t as an indented tree, one line per node.
func formatTree(t *render.Tree) string {
	frame := t.Frame
	root := fmt.Sprintf("%s %s %s", frame.Type, frame.Position, size(frame.Reference.Size.Width, frame.Reference.Size.Height))
	if t.Stale {
		root += " (unmeasured)"
	}
	out := tree.Root(lipgloss.NewStyle().Foreground(colorFrame).Bold(true).Render(strings.TrimSpace(root))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(colorMuted))
	for _, n := range t.Roots {
		out.Child(nodeTree(n))
	}
	return out.String()
}

func nodeTree(n *render.Node) any {
	label := nodeLabel(n)
	if len(n.Children) == 0 {
		return label
	}
	sub := tree.Root(label)
	for _, c := range n.Children {
		sub.Child(nodeTree(c))
	}
	return sub
}

func nodeLabel(n *render.Node) string {
	id := lipgloss.NewStyle().Foreground(colorID).Bold(true).Render(n.ID)
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	geom := muted.Render(fmt.Sprintf("%s %s @ (%s, %s)", n.Type, size(n.Bounds.Width(), n.Bounds.Height()), num(n.Bounds.Left), num(n.Bounds.Top)))
	parts := []string{id, geom}

	switch {
	case n.Failed:
		parts = append(parts, lipgloss.NewStyle().Foreground(colorFailed).Render("failed: "+n.Message))
	case n.Text != nil:
		detail := strconv.Quote(n.Text.Value)
		if n.Text.Visible < len(n.Text.Lines) {
			detail += fmt.Sprintf(" (%d/%d lines)", n.Text.Visible, len(n.Text.Lines))
		}
		parts = append(parts, detail)
	case n.Button != nil:
		parts = append(parts, strconv.Quote(n.Button.Label), muted.Render("-> "+string(n.Button.Action)))
	case n.Image != nil:
		parts = append(parts, imageLabel(n.Image))
	case n.Selector != nil:
		parts = append(parts, n.Selector.Current+" of "+strings.Join(n.Selector.Available, ","))
	case n.Layout != nil:
		detail := string(n.Layout.Mode)
		if n.Layout.Placeholder != "" {
			detail += " (empty)"
		}
		parts = append(parts, detail)
	}
	if !n.Resolved && !n.Failed {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorWarn).Render("unresolved"))
	}
	return strings.Join(parts, " ")
}

func imageLabel(img *render.ImageBox) string {
	switch img.State {
	case imagesrc.StateResolved:
		return lipgloss.NewStyle().Foreground(colorOK).Render(img.State.String()) + " " + img.Strategy.String() + " " + img.URL
	case imagesrc.StateFailed:
		return lipgloss.NewStyle().Foreground(colorFailed).Render(img.State.String())
	}
	return lipgloss.NewStyle().Foreground(colorWarn).Render(img.State.String())
}

func size(w, h float64) string {
	return num(w) + "x" + num(h)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
