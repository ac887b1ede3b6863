// Package launcher orchestrates the install/update decision and the final
// handoff to XIVLauncher.Core.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/blooym/xlm/internal/install"
	"github.com/blooym/xlm/internal/logging"
	"github.com/blooym/xlm/internal/payload"
	"github.com/blooym/xlm/internal/progress"
	"github.com/blooym/xlm/internal/release"
	"github.com/rs/zerolog"
)

// Action is the outcome of the install/update decision.
type Action int

const (
	// ActionLaunch starts XIVLauncher immediately.
	ActionLaunch Action = iota

	// ActionInstallThenLaunch runs a full install/update first.
	ActionInstallThenLaunch
)

// ErrChildProcess wraps failures spawning or waiting on XIVLauncher.
var ErrChildProcess = errors.New("launching XIVLauncher failed")

// Decide applies the update decision table. The main executable's presence
// is the authoritative installed signal; the version marker only informs
// the update decision, and versions compare by byte equality — any
// difference, whitespace included, triggers an update.
func Decide(installed, skipUpdate, markerFound bool, localVersion, remoteVersion string) Action {
	if !installed {
		return ActionInstallThenLaunch
	}
	if skipUpdate {
		return ActionLaunch
	}
	if markerFound && localVersion == remoteVersion {
		return ActionLaunch
	}
	return ActionInstallThenLaunch
}

// Launcher wires the resolvers, the install manager, and the progress
// channel into the launch flow.
type Launcher struct {
	Source  release.Source
	Payload payload.Source
	Manager *install.Manager

	SkipUpdate                bool
	UseFallbackSecretProvider bool

	// OpenProgress opens the status window for an install/update. Swapped
	// out in tests; defaults to progress.Open.
	OpenProgress func(ctx context.Context) *progress.Channel

	// run seam for tests: replaces the final process handoff.
	runChild func(ctx context.Context, path string, env []string) error
}

// Run resolves the latest release if needed, installs or updates the local
// installation per the decision table, and hands off to XIVLauncher,
// blocking until it exits. Install and launch never overlap.
func (l *Launcher) Run(ctx context.Context) error {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "launcher")

	installed := l.Manager.IsInstalled()

	// An up-to-date check is pointless when updates are skipped and the
	// launcher is already on disk; don't touch the network at all.
	if installed && l.SkipUpdate {
		log.Info().Ctx(ctx).Msg("skip update enabled, not checking for XIVLauncher updates")
		return l.launch(ctx, log)
	}

	info, err := l.Source.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolving latest release: %w", err)
	}
	log.Info().Ctx(ctx).Str("remote_version", info.Version).Msg("resolved latest release")

	localVersion, markerFound, err := l.Manager.ReadVersion()
	if err != nil {
		return err
	}

	if Decide(installed, l.SkipUpdate, markerFound, localVersion, info.Version) == ActionLaunch {
		log.Info().Ctx(ctx).Msg("XIVLauncher is up to date")
		return l.launch(ctx, log)
	}

	if err := l.installOrUpdate(ctx, log, info); err != nil {
		return err
	}

	return l.launch(ctx, log)
}

// installOrUpdate resolves the payload and drives the install manager with
// a live status window. The window is torn down before launch regardless of
// outcome.
func (l *Launcher) installOrUpdate(ctx context.Context, log zerolog.Logger, info release.Info) error {
	payloadBytes, err := l.Payload.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolving downloader payload: %w", err)
	}

	open := l.OpenProgress
	if open == nil {
		open = progress.Open
	}
	channel := open(ctx)
	defer channel.Close()

	report := func(phase string) {
		log.Info().Ctx(ctx).Str("phase", phase).Msg("install progress")
		channel.Send(phase)
	}

	if err := l.Manager.InstallOrUpdate(ctx, info, payloadBytes, report); err != nil {
		return err
	}

	log.Info().Ctx(ctx).Str("version", info.Version).Msg("XIVLauncher installed")
	return nil
}

// launch starts XIVLauncher.Core with the curated environment and blocks
// until it exits. The child's exit code is logged but deliberately not
// propagated as xlm's own.
func (l *Launcher) launch(ctx context.Context, log zerolog.Logger) error {
	exePath := filepath.Join(l.Manager.Root, install.MainExecutableName)
	env := buildChildEnv(os.Environ(), l.UseFallbackSecretProvider)

	log.Info().Ctx(ctx).Str("path", exePath).Msg("starting XIVLauncher")

	run := l.runChild
	if run == nil {
		run = runChildProcess
	}

	if err := run(ctx, exePath, env); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Info().Ctx(ctx).Int("exit_code", exitErr.ExitCode()).Msg("XIVLauncher exited")
			return nil
		}
		return fmt.Errorf("%w: %w", ErrChildProcess, err)
	}

	log.Info().Ctx(ctx).Int("exit_code", 0).Msg("XIVLauncher exited")
	return nil
}

// runChildProcess spawns the target executable attached to xlm's stdio.
func runChildProcess(ctx context.Context, path string, env []string) error {
	cmd := exec.CommandContext(ctx, path)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// buildChildEnv constructs XIVLauncher's environment from the parent's.
// LD_PRELOAD is captured into XL_PRELOAD and then removed: with it set, the
// Steam overlay corrupts the launcher's text rendering, but the launcher
// still wants the original value so it can re-apply it to the game process
// later. XL_SCT=1 switches XIVLauncher into compatibility-tool mode (it
// ignores XL_PRELOAD otherwise), and XL_SECRET_PROVIDER=FILE opts into
// file-backed credential storage when no system secrets service works.
func buildChildEnv(environ []string, useFallbackSecretProvider bool) []string {
	env := make([]string, 0, len(environ)+3)
	ldPreload := ""

	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "LD_PRELOAD="); ok {
			ldPreload = v
			continue
		}
		env = append(env, kv)
	}

	env = append(env, "XL_PRELOAD="+ldPreload, "XL_SCT=1")
	if useFallbackSecretProvider {
		env = append(env, "XL_SECRET_PROVIDER=FILE")
	}

	return env
}
