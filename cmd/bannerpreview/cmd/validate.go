package cmd

import (
	"fmt"

	"github.com/go-drift/bannerkit/pkg/banner"
)

func init() {
	RegisterCommand(&Command{
		Name:  "validate",
		Short: "Check a banner configuration",
		Long: `Check a banner configuration for duplicate ids, dangling parents and
unknown types, actions, devices or display modes.

Issues never stop rendering; each one marks a place where the engine falls
back to a default. The command exits non-zero when any issue is found.`,
		Usage: "bannerpreview validate <banner.yaml>",
		Run:   runValidate,
	})
}

func runValidate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("banner configuration path is required\n\nUsage: bannerpreview validate <banner.yaml>")
	}
	cfg, err := banner.Load(args[0])
	if err != nil {
		return err
	}

	issues := banner.Validate(cfg)
	if len(issues) == 0 {
		fmt.Fprintf(stdout, "%s: ok (%d components, schema %s)\n", args[0], len(cfg.Components), cfg.SchemaVersion)
		return nil
	}
	for _, issue := range issues {
		fmt.Fprintf(stdout, "%s: %s\n", args[0], issue)
	}
	return fmt.Errorf("%d issue(s) found", len(issues))
}
