package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// gzipReader opens a gzip stream over in-memory archive bytes.
func gzipReader(data []byte) (*gzip.Reader, error) {
	return gzip.NewReader(bytes.NewReader(data))
}

// maxFileSize caps a single extracted file (500 MB) to guard against
// decompression bombs.
const maxFileSize = 500 << 20

// sanitizePath joins name onto destDir and rejects entries that would
// escape the destination via path traversal. An entry that resolves to the
// destination itself is allowed: archives packed as `tar -C dir -czf ... .`
// carry a leading "./" entry for the root directory.
func sanitizePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	clean := filepath.Clean(destDir)
	if target == clean {
		return target, nil
	}
	if !strings.HasPrefix(target, clean+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return target, nil
}

// extractTarGz unpacks a gzip-compressed tar stream into destDir,
// preserving file modes. Directories, regular files, and symlinks are
// supported; other entry types are skipped.
func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := sanitizePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)&os.ModePerm|0o700); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFileEntry(tr, target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			// Reject absolute or escaping link targets, same policy as
			// regular entries.
			if filepath.IsAbs(hdr.Linkname) {
				return fmt.Errorf("archive symlink %q has absolute target %q", hdr.Name, hdr.Linkname)
			}
			if _, err := sanitizePath(filepath.Dir(target), hdr.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating directory for symlink %s: %w", target, err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("creating symlink %s: %w", target, err)
			}
		default:
			// Character devices, FIFOs and the like have no business in a
			// release archive.
			continue
		}
	}
}

// writeFileEntry writes one regular file from the tar stream.
func writeFileEntry(tr *tar.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode&os.ModePerm)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", target, err)
	}

	if _, err := io.Copy(f, io.LimitReader(tr, maxFileSize)); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing file %s: %w", target, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", target, err)
	}

	return nil
}
