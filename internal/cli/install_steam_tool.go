package cli

import (
	"github.com/spf13/cobra"

	"github.com/blooym/xlm/internal/steamtool"
)

// NewInstallSteamToolCmd creates the install-steam-tool command.
func NewInstallSteamToolCmd() *cobra.Command {
	var opts steamtool.Options

	cmd := &cobra.Command{
		Use:   "install-steam-tool",
		Short: "Install XLM as a Steam compatibility tool",
		Long: `Installs XLM into Steam's compatibilitytools.d directory so the game can
be launched through it from Steam. Steam must be restarted afterwards for
the tool to appear.

The compatibilitytools.d location depends on the install method:

  Native/Steamdeck: ~/.steam/root/compatibilitytools.d
  Flatpak:          ~/.var/app/com.valvesoftware.Steam/.steam/root/compatibilitytools.d
  Snap:             ~/snap/steam/common/.steam/root/compatibilitytools.d`,
		Example: `  # Native Steam install
  xlm install-steam-tool --steam-compat-path ~/.steam/root/compatibilitytools.d

  # Pass extra flags to the launch command Steam runs
  xlm install-steam-tool --steam-compat-path ~/.steam/root/compatibilitytools.d \
    --extra-launch-args "--use-fallback-secret-provider"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := steamtool.Install(cmd.Context(), opts); err != nil {
				return err
			}
			cmd.Println("XLM compatibility tool installed. Restart Steam for it to appear.")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.CompatPath, "steam-compat-path", "",
		"path to Steam's compatibilitytools.d directory")
	cmd.Flags().StringVar(&opts.ExtraLaunchArgs, "extra-launch-args", "",
		"additional flags passed to the launch command when started from the tool")
	cmd.Flags().StringVar(&opts.ExtraEnvVars, "extra-env-vars", "",
		"additional environment variables set for the launch command when started from the tool")
	_ = cmd.MarkFlagRequired("steam-compat-path")

	return cmd
}
