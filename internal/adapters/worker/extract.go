package worker

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/zerr"
)

const execPerm = 0o755

// extractTarball unpacks a gzipped npm tarball into dir, dropping the
// top-level directory every entry lives under ("package/" for npm).
func extractTarball(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, "failed to open gzip stream")
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return zerr.With(domain.ErrUnsafeArchivePath, "entry", hdr.Name)
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read tarball")
		}

		rel, ok := stripTopLevel(hdr.Name)
		if !ok {
			continue
		}
		if !filepath.IsLocal(rel) {
			return zerr.With(domain.ErrUnsafeArchivePath, "entry", hdr.Name)
		}
		target := filepath.Join(dir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return zerr.Wrap(err, "failed to create directory")
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Links and devices are not part of a plugin payload.
		}
	}
}

// stripTopLevel removes the first path component of a tar entry name.
func stripTopLevel(name string) (string, bool) {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	_, rest, found := strings.Cut(name, "/")
	if !found || rest == "" {
		return "", false
	}
	return filepath.FromSlash(rest), true
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create directory")
	}

	perm := os.FileMode(domain.FilePerm)
	if mode&0o111 != 0 {
		perm = execPerm
	}

	//nolint:gosec // G304: target is checked to stay inside the staging directory
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", target)
	}
	//nolint:gosec // G110: tarball size is bounded by the registry artifact
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", target)
	}
	return f.Close()
}
