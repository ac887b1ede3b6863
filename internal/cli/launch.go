package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blooym/xlm/internal/config"
	"github.com/blooym/xlm/internal/install"
	"github.com/blooym/xlm/internal/launcher"
	"github.com/blooym/xlm/internal/payload"
	"github.com/blooym/xlm/internal/release"
)

// NewLaunchCmd creates the launch command: install or update XIVLauncher as
// needed, then start it.
func NewLaunchCmd() *cobra.Command {
	var cfg config.LaunchConfig

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Install or update XIVLauncher and start it",
		Long: `Installs XIVLauncher into the install directory when missing, updates it
when a newer release is available, and starts it. Usually invoked by Steam
through the compatibility tool script rather than by hand.`,
		Example: `  # Launch with defaults (official GitHub releases)
  xlm launch

  # Launch from a self-hosted release mirror
  xlm launch --custom-xlcore-release https://example.com/xlcore/

  # Launch without checking for updates
  xlm launch --skip-update`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			applyConfigFile(cmd, &cfg, configFileLoaded)
			cfg.RepoExplicit = cmd.Flags().Changed("xlcore-repo-owner") ||
				cmd.Flags().Changed("xlcore-repo-name") ||
				cfg.RepoExplicit

			if cfg.InstallDirectory == "" {
				dir, err := config.DefaultInstallDir()
				if err != nil {
					return fmt.Errorf("resolving default install directory: %w", err)
				}
				cfg.InstallDirectory = dir
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			var source release.Source
			if cfg.CustomReleaseURL != "" {
				source = &release.WebSource{BaseURL: cfg.CustomReleaseURL, AssetName: cfg.ReleaseAsset}
			} else {
				source = &release.GitHubSource{
					Owner:     cfg.RepoOwner,
					Repo:      cfg.RepoName,
					AssetName: cfg.ReleaseAsset,
				}
			}

			ariaSource, err := payload.ParseSource(cfg.AriaSource)
			if err != nil {
				return fmt.Errorf("parsing --aria-download-url: %w", err)
			}

			l := &launcher.Launcher{
				Source:                    source,
				Payload:                   ariaSource,
				Manager:                   install.NewManager(cfg.InstallDirectory),
				SkipUpdate:                cfg.SkipUpdate,
				UseFallbackSecretProvider: cfg.UseFallbackSecretProvider,
			}
			return l.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.RepoOwner, "xlcore-repo-owner", config.DefaultRepoOwner,
		"GitHub repository owner to fetch XIVLauncher releases from")
	cmd.Flags().StringVar(&cfg.RepoName, "xlcore-repo-name", config.DefaultRepoName,
		"GitHub repository to fetch XIVLauncher releases from")
	cmd.Flags().StringVar(&cfg.ReleaseAsset, "xlcore-release-asset", config.DefaultReleaseAsset,
		"name of the release asset containing the XIVLauncher build")
	cmd.Flags().StringVar(&cfg.CustomReleaseURL, "custom-xlcore-release", "",
		"base URL of a web-hosted release (serving 'version' and the release asset); replaces GitHub")
	cmd.Flags().StringVar(&cfg.AriaSource, "aria-download-url", "embedded",
		"aria2c payload source: 'embedded', a URL, or a local file path")
	cmd.Flags().StringVar(&cfg.InstallDirectory, "install-directory", "",
		"install directory (defaults to the xlcore directory in the user's data directory)")
	cmd.Flags().BoolVar(&cfg.UseFallbackSecretProvider, "use-fallback-secret-provider", false,
		"store credentials in a file instead of the system secrets service")
	cmd.Flags().BoolVar(&cfg.SkipUpdate, "skip-update", false,
		"skip the update check when XIVLauncher is already installed")

	return cmd
}

// applyConfigFile seeds launch settings from the config file for every flag
// the user did not set on the command line. Flags always win.
func applyConfigFile(cmd *cobra.Command, cfg *config.LaunchConfig, file *config.File) {
	if file == nil {
		return
	}

	if !cmd.Flags().Changed("xlcore-repo-owner") && file.Launch.RepoOwner != "" {
		cfg.RepoOwner = file.Launch.RepoOwner
		cfg.RepoExplicit = true
	}
	if !cmd.Flags().Changed("xlcore-repo-name") && file.Launch.RepoName != "" {
		cfg.RepoName = file.Launch.RepoName
		cfg.RepoExplicit = true
	}
	if !cmd.Flags().Changed("xlcore-release-asset") && file.Launch.ReleaseAsset != "" {
		cfg.ReleaseAsset = file.Launch.ReleaseAsset
	}
	if !cmd.Flags().Changed("custom-xlcore-release") && file.Launch.CustomReleaseURL != "" {
		cfg.CustomReleaseURL = file.Launch.CustomReleaseURL
	}
	if !cmd.Flags().Changed("aria-download-url") && file.Launch.AriaSource != "" {
		cfg.AriaSource = file.Launch.AriaSource
	}
	if !cmd.Flags().Changed("install-directory") && file.Launch.InstallDirectory != "" {
		cfg.InstallDirectory = file.Launch.InstallDirectory
	}
}
