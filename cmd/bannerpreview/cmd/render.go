package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Write a banner preview as HTML and CSS",
		Long: `Lay out a banner configuration and write the snapshot to the output
directory as index.html and banner.css.

Images are resolved before writing, so the snapshot shows loaded images or
their error placeholders rather than loading states.

` + passFlags + `
  --out DIR          Output directory (default: preview)`,
		Usage: "bannerpreview render <banner.yaml> [flags]",
		Run:   runRender,
	})
}

const pageTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Banner preview</title>
<link rel="stylesheet" href="banner.css">
</head>
<body>
%s</body>
</html>
`

func runRender(args []string) error {
	opts, err := parsePassArgs(args, true)
	if err != nil {
		return fmt.Errorf("%w\n\nUsage: bannerpreview render <banner.yaml> [flags]", err)
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

	outDir := p.settings.Render.OutDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	page := filepath.Join(outDir, "index.html")
	if err := os.WriteFile(page, []byte(fmt.Sprintf(pageTemplate, res.Snapshot.HTML)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "banner.css"), []byte(res.Snapshot.CSS), 0o644); err != nil {
		return err
	}

	tree := res.Tree
	fmt.Fprintf(stdout, "Snapshot %s\n", res.Snapshot.ID)
	fmt.Fprintf(stdout, "  device:   %s\n", tree.Device)
	fmt.Fprintf(stdout, "  language: %s\n", tree.Language)
	fmt.Fprintf(stdout, "  nodes:    %d\n", tree.Count())
	if tree.Stale {
		fmt.Fprintln(stdout, "  stale:    frame was not measured")
	}
	if lines := summarizeReports(p.reports); len(lines) > 0 {
		fmt.Fprintf(stdout, "  reports:  %s\n", strings.Join(lines, ", "))
	}
	fmt.Fprintf(stdout, "Wrote %s\n", page)
	return nil
}
