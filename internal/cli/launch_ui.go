package cli

import (
	"github.com/spf13/cobra"

	"github.com/blooym/xlm/internal/progress"
)

// NewLaunchUICmd creates the hidden status window command. The launch
// command re-invokes xlm with this subcommand and feeds it status lines
// over stdin; users never run it directly.
func NewLaunchUICmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:    progress.UISubcommand,
		Hidden: true,
		Run: func(_ *cobra.Command, _ []string) {
			progress.RunUI(ver)
		},
	}
}
