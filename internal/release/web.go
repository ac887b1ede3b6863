package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/blooym/xlm/internal/logging"
)

// versionFileName is the fixed filename a web-hosted source serves its
// current version under, joined onto the base URL.
const versionFileName = "version"

// maxVersionBytes caps the version file body; version strings are short.
const maxVersionBytes = 4 << 10

// WebSource resolves releases from a plain web server. The server exposes
// two files under a base URL: "{base}/version" with the current version as
// text, and "{base}/{asset}" with the release archive.
type WebSource struct {
	HTTPClient *http.Client
	BaseURL    string
	AssetName  string
}

// Resolve implements Source. Only the version URL is fetched; the asset URL
// is returned for the install manager to download later.
func (s *WebSource) Resolve(ctx context.Context) (Info, error) {
	log := logging.FromContext(ctx)

	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return Info{}, fmt.Errorf("parsing release base URL %q: %w", s.BaseURL, err)
	}

	versionURL := base.JoinPath(versionFileName).String()
	assetURL := base.JoinPath(s.AssetName).String()

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, http.NoBody)
	if err != nil {
		return Info{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("fetching version from %s: %w: %w", versionURL, ErrRemoteVersionUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Info{}, fmt.Errorf("fetching version from %s: unexpected status %d: %w",
			versionURL, resp.StatusCode, ErrRemoteVersionUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVersionBytes))
	if err != nil {
		return Info{}, fmt.Errorf("reading version from %s: %w", versionURL, err)
	}

	version := strings.TrimSpace(string(body))
	log.Debug().
		Ctx(ctx).
		Str("component", "release").
		Str("version", version).
		Str("asset_url", assetURL).
		Msg("resolved release from web source")

	return Info{DownloadURL: assetURL, Version: version}, nil
}
