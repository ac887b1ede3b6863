// Package steamtool installs xlm into Steam as a compatibility tool so the
// game can be pointed at it from Steam's own UI.
package steamtool

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blooym/xlm/internal/logging"
)

//go:embed static/compatibilitytool.vdf
var compatibilityToolVDF []byte

//go:embed static/toolmanifest.vdf
var toolManifestVDF []byte

const (
	// toolDirName is the directory created inside compatibilitytools.d.
	toolDirName = "XLM"

	// binaryName is the filename the running executable is copied to.
	binaryName = "xlm"

	// launchScriptName is the entry script Steam invokes per toolmanifest.vdf.
	launchScriptName = "xlm.sh"

	compatibilityToolVDFName = "compatibilitytool.vdf"
	toolManifestVDFName      = "toolmanifest.vdf"
)

// ErrSteamNotFound indicates the parent of the given compatibilitytools.d
// path does not exist, which usually means Steam has never been run or the
// path belongs to a different install method (native vs flatpak vs snap).
var ErrSteamNotFound = errors.New("steam installation not found at the given compat path")

// Options configures a compatibility tool installation.
type Options struct {
	// CompatPath is Steam's compatibilitytools.d directory. It does not
	// need to exist yet, but its parent must.
	CompatPath string

	// ExtraLaunchArgs is appended verbatim to the launch command inside the
	// generated script.
	ExtraLaunchArgs string

	// ExtraEnvVars is prepended verbatim to the launch command inside the
	// generated script, e.g. "FOO=1 BAR=2".
	ExtraEnvVars string
}

// Install writes the compatibility tool directory: both Steam vdf manifests,
// the launch script, and a copy of the currently running executable. Steam
// needs a restart afterwards to pick the tool up.
func Install(ctx context.Context, opts Options) error {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "steamtool")

	parent := filepath.Dir(opts.CompatPath)
	if _, err := os.Stat(parent); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSteamNotFound, parent)
		}
		return fmt.Errorf("checking compat path parent: %w", err)
	}

	toolDir := filepath.Join(opts.CompatPath, toolDirName)
	log.Info().
		Ctx(ctx).
		Str("dir", toolDir).
		Str("extra_launch_args", opts.ExtraLaunchArgs).
		Str("extra_env_vars", opts.ExtraEnvVars).
		Msg("installing compatibility tool")

	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		return fmt.Errorf("creating tool directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(toolDir, compatibilityToolVDFName), compatibilityToolVDF, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", compatibilityToolVDFName, err)
	}
	if err := os.WriteFile(filepath.Join(toolDir, toolManifestVDFName), toolManifestVDF, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", toolManifestVDFName, err)
	}

	script := launchScript(opts.ExtraEnvVars, opts.ExtraLaunchArgs)
	if err := os.WriteFile(filepath.Join(toolDir, launchScriptName), []byte(script), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", launchScriptName, err)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own executable: %w", err)
	}
	if err := copyExecutable(exe, filepath.Join(toolDir, binaryName)); err != nil {
		return fmt.Errorf("copying executable: %w", err)
	}

	log.Info().Ctx(ctx).Msg("compatibility tool installed, restart Steam for it to appear")
	return nil
}

// launchScript renders the xlm.sh entry script. Steam calls it once with
// "waitforexitandrun" to launch and once with "run"; the second invocation
// is a near no-op so the launcher does not start twice. prelaunch.d and
// postlaunch.d hooks next to the script are sourced around the launch.
func launchScript(extraEnvVars, extraLaunchArgs string) string {
	var b strings.Builder
	b.WriteString(`#!/bin/env bash

# Prevents launching twice.
if [[ "$1" == "run" ]]; then sleep 1; exit; fi

tooldir="$(realpath "$(dirname "$0")")"

# XLM pre-launch scripts.
if [ -d $tooldir/prelaunch.d ]; then
    for extension in $tooldir/prelaunch.d/*; do
        if [ -f "$extension" ]; then
            echo "Running XLM prelaunch $extension"
            . "$extension"
        fi
    done
fi
unset extension

`)
	fmt.Fprintf(&b, "PATH=$PATH:$tooldir/xlcore %s $tooldir/xlm launch %s --install-directory $tooldir/xlcore $4\n", extraEnvVars, extraLaunchArgs)
	b.WriteString(`
# XLM post-launch scripts.
if [ -d $tooldir/postlaunch.d ]; then
    for extension in $tooldir/postlaunch.d/*; do
        if [ -f "$extension" ]; then
            echo "Running XLM postlaunch $extension"
            . "$extension"
        fi
    done
fi
unset extension
`)
	return b.String()
}

// copyExecutable copies src to dst with the executable bit set.
func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
