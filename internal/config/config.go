// Package config holds xlm's launch configuration: flag-level settings,
// defaults derived from the user's environment, and the optional config
// file that seeds those defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultRepoOwner is the GitHub owner of the target application.
	DefaultRepoOwner = "goatcorp"

	// DefaultRepoName is the GitHub repository of the target application.
	DefaultRepoName = "XIVLauncher.Core"

	// DefaultReleaseAsset is the release archive containing a
	// self-contained XIVLauncher build.
	DefaultReleaseAsset = "XIVLauncher.Core.tar.gz"

	// installDirName is the fixed subdirectory of the user's local data
	// directory holding the installation.
	installDirName = "xlcore"
)

// LaunchConfig collects everything the launch command needs to resolve,
// install, and start XIVLauncher.
type LaunchConfig struct {
	// RepoOwner/RepoName/ReleaseAsset select a GitHub-hosted release
	// source.
	RepoOwner    string
	RepoName     string
	ReleaseAsset string

	// CustomReleaseURL, when non-empty, selects a web-hosted release
	// source instead. It is mutually exclusive with explicitly configured
	// repository coordinates.
	CustomReleaseURL string

	// RepoExplicit records whether the repository coordinates were set by
	// the user rather than defaulted; only then does combining them with
	// CustomReleaseURL become a configuration error.
	RepoExplicit bool

	// AriaSource selects where the aria2c payload archive comes from:
	// "embedded", a URL, or a local file path.
	AriaSource string

	// InstallDirectory is the install root.
	InstallDirectory string

	// UseFallbackSecretProvider makes XIVLauncher store credentials in a
	// file instead of the system secrets service.
	UseFallbackSecretProvider bool

	// SkipUpdate suppresses the update check for an existing installation.
	SkipUpdate bool
}

// ErrConflictingSources is returned when both a web base URL and explicit
// repository coordinates are configured.
var ErrConflictingSources = errors.New("--custom-xlcore-release cannot be combined with --xlcore-repo-owner/--xlcore-repo-name")

// Validate rejects contradictory source configuration. A web base URL makes
// repository coordinates meaningless, so supplying both is refused here, at
// configuration time, rather than surfacing as a confusing resolution
// failure later.
func (c *LaunchConfig) Validate() error {
	if c.CustomReleaseURL != "" && c.RepoExplicit {
		return ErrConflictingSources
	}
	if c.InstallDirectory == "" {
		return errors.New("install directory must not be empty")
	}
	if c.AriaSource == "" {
		return errors.New("aria download source must not be empty")
	}
	return nil
}

// DefaultInstallDir returns the per-user default install root:
// $XDG_DATA_HOME/xlcore, falling back to ~/.local/share/xlcore.
func DefaultInstallDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, installDirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", installDirName), nil
}

// DefaultLogFile returns the path of xlm's debug log in the temp directory.
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "xlm.log")
}
