// Command bannerpreview renders consent banner configurations to static
// HTML and CSS.
package main

import (
	"os"

	"github.com/go-drift/bannerkit/cmd/bannerpreview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
