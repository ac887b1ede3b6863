package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/blooym/xlm/internal/logging"
)

// maxAPIResponseBytes caps GitHub API response bodies (10 MB) so a
// misbehaving server cannot exhaust memory.
const maxAPIResponseBytes = 10 << 20

// GitHubRelease is the subset of the GitHub release API response xlm reads.
type GitHubRelease struct {
	TagName string         `json:"tag_name"`
	Name    string         `json:"name"`
	Assets  []ReleaseAsset `json:"assets"`
}

// ReleaseAsset is a single downloadable file attached to a release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// GitHubClient queries the GitHub releases API. BaseURL and HTTPClient are
// exported so tests can point the client at an httptest server.
type GitHubClient struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// NewGitHubClient creates a client against the public GitHub API.
func NewGitHubClient() *GitHubClient {
	return &GitHubClient{
		BaseURL:    "https://api.github.com",
		HTTPClient: http.DefaultClient,
		UserAgent:  "xlm",
	}
}

// LatestRelease fetches the most recent published release of owner/repo.
func (c *GitHubClient) LatestRelease(ctx context.Context, owner, repo string) (*GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.BaseURL, owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release for %s/%s: %w: %w", owner, repo, ErrReleaseNotFound, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching latest release for %s/%s: unexpected status %d: %w",
			owner, repo, resp.StatusCode, ErrReleaseNotFound)
	}

	var release GitHubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIResponseBytes)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release for %s/%s: %w", owner, repo, err)
	}

	return &release, nil
}

// DownloadAsset streams the file at assetURL. The caller owns the returned
// body and must close it.
func (c *GitHubClient) DownloadAsset(ctx context.Context, assetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading asset: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("downloading asset: unexpected status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// GitHubSource resolves releases from a GitHub repository. The release tag
// is used verbatim as the version string.
type GitHubSource struct {
	Client    *GitHubClient
	Owner     string
	Repo      string
	AssetName string
}

// Resolve implements Source.
func (s *GitHubSource) Resolve(ctx context.Context) (Info, error) {
	log := logging.FromContext(ctx)

	client := s.Client
	if client == nil {
		client = NewGitHubClient()
	}

	release, err := client.LatestRelease(ctx, s.Owner, s.Repo)
	if err != nil {
		return Info{}, err
	}

	for _, asset := range release.Assets {
		if asset.Name == s.AssetName {
			log.Debug().
				Ctx(ctx).
				Str("component", "release").
				Str("tag", release.TagName).
				Str("asset", asset.Name).
				Msg("resolved release from GitHub")
			return Info{DownloadURL: asset.BrowserDownloadURL, Version: release.TagName}, nil
		}
	}

	return Info{}, fmt.Errorf("asset %q in release %s of %s/%s: %w",
		s.AssetName, release.TagName, s.Owner, s.Repo, ErrAssetNotFound)
}
