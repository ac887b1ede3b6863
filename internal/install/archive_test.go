package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tarEntry describes one entry for makeTarGz.
type tarEntry struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	linkname string
}

// makeTarGz builds a gzip'd tar archive in memory.
func makeTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		typeflag := e.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     mode,
			Typeflag: typeflag,
			Linkname: e.linkname,
			Size:     int64(len(e.body)),
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestSanitizePath(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "valid path", path: "subdir/file.txt"},
		{name: "simple filename", path: "file.txt"},
		{name: "traversal attempt", path: "../../../etc/passwd", wantErr: true},
		{name: "hidden traversal", path: "foo/../../../etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sanitizePath(tmpDir, tt.path)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestExtractTarGz(t *testing.T) {
	dest := t.TempDir()
	archive := makeTarGz(t, []tarEntry{
		{name: "dir/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "dir/nested.txt", body: "nested"},
		{name: "XIVLauncher.Core", body: "#!/bin/sh\n", mode: 0o755},
		{name: "link", typeflag: tar.TypeSymlink, linkname: "XIVLauncher.Core"},
	})

	require.NoError(t, extractTarGz(bytes.NewReader(archive), dest))

	data, err := os.ReadFile(filepath.Join(dest, "dir", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested", string(data))

	info, err := os.Stat(filepath.Join(dest, "XIVLauncher.Core"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dest, "link"))
	require.NoError(t, err)
	assert.Equal(t, "XIVLauncher.Core", target)
}

func TestExtractTarGzDotSlashEntries(t *testing.T) {
	// `tar -C dir -czf out.tar.gz .` produces archives whose entries are
	// prefixed with "./", including a "./" entry for the root itself.
	dest := t.TempDir()
	archive := makeTarGz(t, []tarEntry{
		{name: "./", typeflag: tar.TypeDir, mode: 0o755},
		{name: "./XIVLauncher.Core", body: "launcher", mode: 0o755},
		{name: "./sub/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "./sub/file.txt", body: "nested"},
	})

	require.NoError(t, extractTarGz(bytes.NewReader(archive), dest))

	assert.FileExists(t, filepath.Join(dest, "XIVLauncher.Core"))
	data, err := os.ReadFile(filepath.Join(dest, "sub", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested", string(data))
}

func TestExtractTarGzRejectsTraversal(t *testing.T) {
	dest := t.TempDir()
	archive := makeTarGz(t, []tarEntry{
		{name: "../evil.txt", body: "evil"},
	})

	require.Error(t, extractTarGz(bytes.NewReader(archive), dest))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil.txt"))
}

func TestExtractTarGzRejectsEscapingSymlink(t *testing.T) {
	dest := t.TempDir()

	archive := makeTarGz(t, []tarEntry{
		{name: "link", typeflag: tar.TypeSymlink, linkname: "../../outside"},
	})
	require.Error(t, extractTarGz(bytes.NewReader(archive), dest))

	archive = makeTarGz(t, []tarEntry{
		{name: "link", typeflag: tar.TypeSymlink, linkname: "/etc/passwd"},
	})
	require.Error(t, extractTarGz(bytes.NewReader(archive), dest))
}

func TestExtractTarGzNotGzip(t *testing.T) {
	require.Error(t, extractTarGz(bytes.NewReader([]byte("not a gzip stream")), t.TempDir()))
}

func TestProbeGzip(t *testing.T) {
	archive := makeTarGz(t, []tarEntry{{name: "f", body: "x"}})
	require.NoError(t, probeGzip(archive))
	require.Error(t, probeGzip([]byte("plainly not gzip")))
}
