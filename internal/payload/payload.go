// Package payload resolves the aria2c downloader-tool archive that is
// installed alongside XIVLauncher.Core. The archive is always a gzip'd tar;
// the source only determines where the bytes come from.
package payload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	_ "embed"

	"github.com/blooym/xlm/internal/logging"
)

//go:embed static/aria2c-static.tar.gz
var embeddedArchive []byte

var (
	// ErrFetchFailed indicates a remote payload could not be downloaded.
	ErrFetchFailed = errors.New("payload fetch failed")

	// ErrFileUnreadable indicates a local payload path does not exist or
	// cannot be read.
	ErrFileUnreadable = errors.New("payload file unreadable")
)

// maxPayloadBytes caps remote payload downloads (500 MB).
const maxPayloadBytes = 500 << 20

// Source is a closed set of payload origins: Embedded, Remote, or Local.
// Exactly one is chosen at configuration time via ParseSource.
type Source interface {
	// Resolve returns the raw payload archive bytes.
	Resolve(ctx context.Context) ([]byte, error)

	// String describes the source for logging.
	String() string
}

// Embedded serves the aria2c archive compiled into the xlm binary. No
// network or filesystem access is performed.
type Embedded struct{}

// Resolve implements Source.
func (Embedded) Resolve(ctx context.Context) ([]byte, error) {
	logging.FromContext(ctx).Debug().
		Ctx(ctx).
		Str("component", "payload").
		Int("bytes", len(embeddedArchive)).
		Msg("using embedded aria2c archive")
	return embeddedArchive, nil
}

func (Embedded) String() string { return "embedded" }

// Remote fetches the payload archive from a URL at run time.
type Remote struct {
	URL        string
	HTTPClient *http.Client
}

// Resolve implements Source.
func (r Remote) Resolve(ctx context.Context) ([]byte, error) {
	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching payload from %s: %w: %w", r.URL, ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching payload from %s: unexpected status %d: %w",
			r.URL, resp.StatusCode, ErrFetchFailed)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("reading payload from %s: %w: %w", r.URL, ErrFetchFailed, err)
	}

	return data, nil
}

func (r Remote) String() string { return r.URL }

// Local reads the payload archive from a filesystem path at run time.
type Local struct {
	Path string
}

// Resolve implements Source.
func (l Local) Resolve(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("reading payload file %s: %w: %w", l.Path, ErrFileUnreadable, err)
	}
	return data, nil
}

func (l Local) String() string { return l.Path }

// ParseSource maps the user-facing selector string onto a Source variant:
// the literal "embedded", an http(s) URL, or a local file path.
func ParseSource(s string) (Source, error) {
	switch {
	case s == "":
		return nil, errors.New("payload source must not be empty")
	case strings.EqualFold(s, "embedded"):
		return Embedded{}, nil
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return Remote{URL: s}, nil
	default:
		return Local{Path: s}, nil
	}
}
