// Package release resolves the latest XIVLauncher.Core release from one of
// two interchangeable sources: the GitHub releases API or a plain web server
// exposing a version file next to the release archive.
package release

import (
	"context"
	"errors"
)

var (
	// ErrReleaseNotFound indicates the release listing itself could not be
	// obtained (network failure, non-success API status).
	ErrReleaseNotFound = errors.New("release not found")

	// ErrAssetNotFound indicates the release exists but carries no asset
	// with the configured filename. This usually means the upstream
	// project changed its packaging and xlm needs an update.
	ErrAssetNotFound = errors.New("release asset not found")

	// ErrRemoteVersionUnavailable indicates a web-hosted source responded
	// with a non-success status for its version file.
	ErrRemoteVersionUnavailable = errors.New("remote version unavailable")
)

// Info describes a resolved release. Version is an opaque tag compared only
// for byte equality against the locally recorded version; xlm performs no
// semantic version ordering on the target application.
type Info struct {
	DownloadURL string
	Version     string
}

// Source yields release information for the latest available release.
type Source interface {
	// Resolve queries the source and returns the download URL and version
	// of the most recent release. The URL is not fetched here; the install
	// manager downloads it only when an install or update actually runs.
	Resolve(ctx context.Context) (Info, error)
}
