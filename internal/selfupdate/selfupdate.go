// Package selfupdate keeps the xlm binary itself current by replacing it
// in place with the newest GitHub release. A failed update is never fatal:
// launching the game with an older xlm beats not launching at all.
package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/blooym/xlm/internal/logging"
	"github.com/blooym/xlm/internal/release"
)

// assetName is the release asset holding the prebuilt binary.
const assetName = "xlm"

// ErrNoBinaryAsset is returned when the latest release carries no asset
// named after the binary.
var ErrNoBinaryAsset = errors.New("release has no binary asset")

// Updater replaces the running executable with the latest released build.
type Updater struct {
	Client *release.GitHubClient
	Owner  string
	Repo   string

	// CurrentVersion is the running build's version string, as set at link
	// time. Non-semver values (such as "dev") disable updating.
	CurrentVersion string
}

// Run checks for and applies an update. It returns true when the binary was
// replaced; the caller should note that the new version takes effect on the
// next start. Development builds and already-current binaries return false
// without touching the filesystem.
func (u *Updater) Run(ctx context.Context) (bool, error) {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "selfupdate")

	current, err := semver.NewVersion(strings.TrimPrefix(u.CurrentVersion, "v"))
	if err != nil {
		log.Debug().Ctx(ctx).Str("version", u.CurrentVersion).Msg("not a release build, skipping self-update")
		return false, nil
	}

	client := u.Client
	if client == nil {
		client = release.NewGitHubClient()
	}

	rel, err := client.LatestRelease(ctx, u.Owner, u.Repo)
	if err != nil {
		return false, fmt.Errorf("checking for xlm updates: %w", err)
	}

	latest, err := semver.NewVersion(strings.TrimPrefix(rel.TagName, "v"))
	if err != nil {
		return false, fmt.Errorf("parsing release tag %q: %w", rel.TagName, err)
	}

	if !latest.GreaterThan(current) {
		log.Debug().Ctx(ctx).Str("version", u.CurrentVersion).Msg("xlm is up to date")
		return false, nil
	}

	var assetURL string
	for _, asset := range rel.Assets {
		if asset.Name == assetName {
			assetURL = asset.BrowserDownloadURL
			break
		}
	}
	if assetURL == "" {
		return false, fmt.Errorf("release %s: %w", rel.TagName, ErrNoBinaryAsset)
	}

	log.Info().
		Ctx(ctx).
		Str("current", current.String()).
		Str("latest", latest.String()).
		Msg("updating xlm")

	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("resolving own executable: %w", err)
	}

	if err := u.replaceBinary(ctx, client, assetURL, exe); err != nil {
		return false, err
	}

	log.Info().Ctx(ctx).Str("version", latest.String()).Msg("xlm updated, new version takes effect on next start")
	return true, nil
}

// replaceBinary downloads the asset next to the target and swaps it in with
// a rename so the executable is never left half-written.
func (u *Updater) replaceBinary(ctx context.Context, client *release.GitHubClient, assetURL, target string) error {
	body, err := client.DownloadAsset(ctx, assetURL)
	if err != nil {
		return fmt.Errorf("downloading xlm update: %w", err)
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".xlm-update-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing xlm update: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing xlm update: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o755); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("marking update executable: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing executable: %w", err)
	}

	return nil
}
