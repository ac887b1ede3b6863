// Package install owns the on-disk XIVLauncher.Core installation: the
// version marker, archive extraction, post-extraction validation, and
// wholesale directory replacement on update.
package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/blooym/xlm/internal/logging"
	"github.com/blooym/xlm/internal/release"
)

const (
	// VersionFileName is the plain-text marker recording the last version
	// that installed completely. It is written last, so its presence
	// implies both archives extracted successfully.
	VersionFileName = "versiondata"

	// MainExecutableName must exist directly under the install root after
	// extracting the release archive. Its presence on disk is the
	// authoritative "is installed" signal.
	MainExecutableName = "XIVLauncher.Core"

	// PayloadBinaryName must exist directly under the install root after
	// extracting the payload archive.
	PayloadBinaryName = "aria2c"
)

var (
	// ErrDirectoryCreate indicates the install root could not be recreated.
	ErrDirectoryCreate = errors.New("creating install directory failed")

	// ErrArchiveExtract indicates an archive failed to decompress or
	// unpack. The install root is left in an indeterminate state; there is
	// no rollback.
	ErrArchiveExtract = errors.New("archive extraction failed")

	// ErrIncompatibleRelease indicates the release archive extracted but
	// did not contain the expected main executable. The upstream release
	// no longer matches xlm's expectations; retrying will not help.
	ErrIncompatibleRelease = errors.New("release archive missing " + MainExecutableName)

	// ErrIncompatiblePayload indicates the payload archive extracted but
	// did not contain the expected downloader binary.
	ErrIncompatiblePayload = errors.New("payload archive missing " + PayloadBinaryName)

	// ErrReleaseDownload indicates the release archive could not be
	// downloaded from its resolved URL.
	ErrReleaseDownload = errors.New("release download failed")
)

// maxArchiveBytes caps the downloaded release archive (2 GB).
const maxArchiveBytes = 2 << 30

// Manager performs install and update operations on a single install root.
// The root is exclusively owned by xlm while an operation runs; concurrent
// invocations against the same root are not supported.
type Manager struct {
	// Root is the install directory, e.g. ~/.local/share/xlcore.
	Root string

	// HTTPClient downloads the release archive. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// NewManager creates a Manager for the given install root.
func NewManager(root string) *Manager {
	return &Manager{Root: root, HTTPClient: http.DefaultClient}
}

// IsInstalled reports whether the main executable exists directly under the
// install root. The version marker plays no part in this decision.
func (m *Manager) IsInstalled() bool {
	info, err := os.Stat(filepath.Join(m.Root, MainExecutableName))
	return err == nil && !info.IsDir()
}

// ReadVersion returns the recorded version string and whether a marker was
// found. A missing marker is normal first-run state, not an error.
func (m *Manager) ReadVersion() (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(m.Root, VersionFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading version marker: %w", err)
	}
	return string(data), true, nil
}

// WriteVersion records version in the marker file, truncating any prior
// content. The raw bytes are written with no added formatting.
func (m *Manager) WriteVersion(version string) error {
	path := filepath.Join(m.Root, VersionFileName)
	if err := os.WriteFile(path, []byte(version), 0o644); err != nil {
		return fmt.Errorf("writing version marker: %w", err)
	}
	return nil
}

// InstallOrUpdate replaces the install root with a fresh installation of
// the given release plus the payload archive. Each phase is narrated to
// progress before it begins. On any error the operation stops; a failed
// extraction leaves the root incomplete and unmarked, so the next run
// reinstalls from scratch.
func (m *Manager) InstallOrUpdate(ctx context.Context, info release.Info, payloadArchive []byte, progress func(string)) error {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "install")
	if progress == nil {
		progress = func(string) {}
	}

	progress("Downloading XIVLauncher")
	log.Info().Ctx(ctx).Str("url", info.DownloadURL).Msg("downloading release archive")
	releaseArchive, err := m.downloadArchive(ctx, info.DownloadURL)
	if err != nil {
		return err
	}

	// Both archives must at least be readable gzip streams before the old
	// installation is destroyed.
	progress("Preparing release archive")
	if err := probeGzip(releaseArchive); err != nil {
		return fmt.Errorf("release archive: %w: %w", ErrArchiveExtract, err)
	}
	progress("Preparing downloader archive")
	if err := probeGzip(payloadArchive); err != nil {
		return fmt.Errorf("payload archive: %w: %w", ErrArchiveExtract, err)
	}

	progress("Removing old installation")
	if err := os.RemoveAll(m.Root); err != nil {
		// Best effort: a partially removable directory must not abort the
		// install. Stale leftovers surface as extraction or validation
		// failures below if they actually conflict.
		log.Warn().Ctx(ctx).Err(err).Str("path", m.Root).Msg("could not fully remove old installation")
	}

	if err := os.MkdirAll(m.Root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDirectoryCreate, m.Root, err)
	}

	progress("Unpacking XIVLauncher")
	log.Info().Ctx(ctx).Str("path", m.Root).Msg("unpacking release archive")
	if err := extractTarGz(bytes.NewReader(releaseArchive), m.Root); err != nil {
		return fmt.Errorf("release archive: %w: %w", ErrArchiveExtract, err)
	}

	progress("Validating XIVLauncher")
	if !m.IsInstalled() {
		return ErrIncompatibleRelease
	}

	progress("Unpacking downloader")
	log.Info().Ctx(ctx).Str("path", m.Root).Msg("unpacking payload archive")
	if err := extractTarGz(bytes.NewReader(payloadArchive), m.Root); err != nil {
		return fmt.Errorf("payload archive: %w: %w", ErrArchiveExtract, err)
	}

	progress("Validating downloader")
	payloadInfo, err := os.Stat(filepath.Join(m.Root, PayloadBinaryName))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrIncompatiblePayload
		}
		return fmt.Errorf("validating payload binary: %w", err)
	}
	if payloadInfo.IsDir() {
		return ErrIncompatiblePayload
	}

	progress("Recording installed version")
	if err := m.WriteVersion(info.Version); err != nil {
		return err
	}
	log.Info().Ctx(ctx).Str("version", info.Version).Msg("installation complete")

	return nil
}

// downloadArchive fetches the release archive into memory.
func (m *Manager) downloadArchive(ctx context.Context, url string) ([]byte, error) {
	client := m.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading release from %s: %w: %w", url, ErrReleaseDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading release from %s: unexpected status %d: %w",
			url, resp.StatusCode, ErrReleaseDownload)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes))
	if err != nil {
		return nil, fmt.Errorf("downloading release from %s: %w: %w", url, ErrReleaseDownload, err)
	}

	return data, nil
}

// probeGzip verifies data begins a valid gzip stream without extracting it.
func probeGzip(data []byte) error {
	gz, err := gzipReader(data)
	if err != nil {
		return err
	}
	return gz.Close()
}
