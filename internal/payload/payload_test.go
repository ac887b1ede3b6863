package payload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "embedded", in: "embedded", want: "embedded"},
		{name: "embedded is case insensitive", in: "EMBEDDED", want: "embedded"},
		{name: "https url", in: "https://example.com/aria2c.tar.gz", want: "https://example.com/aria2c.tar.gz"},
		{name: "http url", in: "http://example.com/aria2c.tar.gz", want: "http://example.com/aria2c.tar.gz"},
		{name: "local path", in: "/tmp/aria2c.tar.gz", want: "/tmp/aria2c.tar.gz"},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := ParseSource(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, source.String())
		})
	}
}

func TestParseSourceVariants(t *testing.T) {
	source, err := ParseSource("embedded")
	require.NoError(t, err)
	assert.IsType(t, Embedded{}, source)

	source, err = ParseSource("https://example.com/a.tar.gz")
	require.NoError(t, err)
	assert.IsType(t, Remote{}, source)

	source, err = ParseSource("./a.tar.gz")
	require.NoError(t, err)
	assert.IsType(t, Local{}, source)
}

func TestEmbeddedResolve(t *testing.T) {
	data, err := Embedded{}.Resolve(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// The embedded archive must be a gzip stream.
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])
}

func TestRemoteResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload-bytes"))
	}))
	t.Cleanup(server.Close)

	data, err := Remote{URL: server.URL, HTTPClient: server.Client()}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "payload-bytes", string(data))
}

func TestRemoteResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := Remote{URL: server.URL, HTTPClient: server.Client()}.Resolve(context.Background())
	require.ErrorIs(t, err, ErrFetchFailed)
}

func TestLocalResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria2c.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("local-bytes"), 0o644))

	data, err := Local{Path: path}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local-bytes", string(data))
}

func TestLocalResolveMissingFile(t *testing.T) {
	_, err := Local{Path: filepath.Join(t.TempDir(), "nope.tar.gz")}.Resolve(context.Background())
	require.ErrorIs(t, err, ErrFileUnreadable)
}
