// Package cli wires xlm's cobra commands: launch, install-steam-tool, and
// the hidden status window entrypoint.
package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/blooym/xlm/internal/config"
	"github.com/blooym/xlm/internal/logging"
	"github.com/blooym/xlm/internal/progress"
	"github.com/blooym/xlm/internal/release"
	"github.com/blooym/xlm/internal/selfupdate"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// noticeStyle renders user-facing hints that are not log output.
var noticeStyle = lipgloss.NewStyle().Faint(true) //nolint:gochecknoglobals // Style constant.

// configFileLoaded holds the config file parsed during root setup so the
// launch command can seed flag defaults from it.
var configFileLoaded *config.File //nolint:gochecknoglobals // Shared between root setup and launch.

// rootFlags are the global flags shared by every subcommand.
type rootFlags struct {
	debug          bool
	updaterOwner   string
	updaterRepo    string
	updaterDisable bool
}

// NewRootCmd creates the root cobra command for xlm.
func NewRootCmd(ver string) *cobra.Command {
	var flags rootFlags
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:           "xlm",
		Short:         "XIVLauncher.Core launcher and updater for Steam",
		Long:          "XLM: installs, updates and launches XIVLauncher.Core as a Steam compatibility tool.",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The status window child must stay free of logging setup and
			// self-update noise: its stdout/stderr are nobody's terminal.
			if cmd.Name() == progress.UISubcommand {
				return nil
			}

			fileCfg, err := loadConfigFile(cmd)
			if err != nil {
				return err
			}
			configFileLoaded = fileCfg

			logResult = setupLogging(cmd, flags, fileCfg)

			runSelfUpdate(cmd, flags, ver)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logResult.Close()
		},
	}

	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.updaterOwner, "xlm-updater-repo-owner", "Blooym",
		"GitHub repository owner xlm self-updates from")
	cmd.PersistentFlags().StringVar(&flags.updaterRepo, "xlm-updater-repo-name", "xlm",
		"GitHub repository xlm self-updates from")
	cmd.PersistentFlags().BoolVar(&flags.updaterDisable, "xlm-updater-disable", false,
		"disable xlm's inbuilt self-updater (may result in an outdated binary)")

	cmd.AddCommand(NewLaunchCmd(), NewInstallSteamToolCmd(), NewLaunchUICmd(ver))

	return cmd
}

// loadConfigFile reads the optional config file. A missing file is fine; an
// unreadable or malformed one is an error the user should see.
func loadConfigFile(cmd *cobra.Command) (*config.File, error) {
	path, err := config.DefaultFilePath()
	if err != nil {
		// No home directory. Carry on with defaults.
		cmd.PrintErrf("Warning: could not locate config file: %v\n", err)
		return &config.File{}, nil
	}
	return config.LoadFile(path)
}

// setupLogging builds the process logger and attaches it, with a fresh
// trace ID, to the command context.
func setupLogging(cmd *cobra.Command, flags rootFlags, fileCfg *config.File) *logging.Result {
	cfg := logging.Config{
		Level:  "info",
		Format: "console",
		File:   config.DefaultLogFile(),
	}
	if fileCfg.Logging.Level != "" {
		cfg.Level = fileCfg.Logging.Level
	}
	switch fileCfg.Logging.File {
	case "":
	case "-":
		cfg.File = ""
	default:
		cfg.File = fileCfg.Logging.File
	}
	if flags.debug {
		cfg.Level = "debug"
	}

	result, _ := logging.New(cfg)
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.FilePath != "" && isTerminal(os.Stderr) {
		cmd.PrintErrln(noticeStyle.Render("Logging to " + result.FilePath))
	}

	traceID := logging.NewTraceID()
	ctx := logging.WithContext(cmd.Context(), result.Logger, traceID)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Str("trace_id", traceID).Msg("command started")
	return result
}

// runSelfUpdate keeps the xlm binary itself current before doing anything
// else. Failures are reported and ignored; an outdated launcher that works
// beats a current one that refuses to start.
func runSelfUpdate(cmd *cobra.Command, flags rootFlags, ver string) {
	if flags.updaterDisable {
		return
	}

	updater := &selfupdate.Updater{
		Client:         release.NewGitHubClient(),
		Owner:          flags.updaterOwner,
		Repo:           flags.updaterRepo,
		CurrentVersion: ver,
	}

	updated, err := updater.Run(cmd.Context())
	if err != nil {
		logger.Warn().Ctx(cmd.Context()).Err(err).Msg("self-update failed")
		return
	}
	if updated {
		cmd.PrintErrln(noticeStyle.Render("XLM has been updated; the new version takes effect on next start."))
	}
}
