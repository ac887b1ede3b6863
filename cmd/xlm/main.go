// Command xlm is a launcher and updater for XIVLauncher.Core, intended to
// run as a Steam compatibility tool on Linux.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/blooym/xlm/internal/cli"
	"github.com/blooym/xlm/pkg/version"
)

func main() {
	cmd := cli.NewRootCmd(version.GetVersion())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
