// Package manifest reads package.json files from package directories.
package manifest

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestReader = (*Reader)(nil)

// EnginesKey is the engines entry holding the host range.
const EnginesKey = "devd"

type packageJSON struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Main    string            `json:"main"`
	Engines map[string]string `json:"engines"`
}

// Reader implements ports.ManifestReader.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read returns the manifest in dir.
func (r *Reader) Read(dir string) (domain.Manifest, error) {
	path := filepath.Join(dir, domain.ManifestFileName)

	//nolint:gosec // G304: path is a store or configured package directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Manifest{Range: domain.AnyRange, Main: domain.DefaultEntryFile}, nil
		}
		return domain.Manifest{}, zerr.With(zerr.Wrap(err, domain.ErrManifestInvalid.Error()), "path", path)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return domain.Manifest{}, zerr.With(zerr.Wrap(err, domain.ErrManifestInvalid.Error()), "path", path)
	}

	m := domain.Manifest{
		Name:    pkg.Name,
		Version: strings.TrimSpace(pkg.Version),
		Range:   strings.TrimSpace(pkg.Engines[EnginesKey]),
		Main:    strings.TrimSpace(pkg.Main),
	}
	if m.Range == "" {
		m.Range = domain.AnyRange
	}
	if m.Main == "" {
		m.Main = domain.DefaultEntryFile
	}
	return m, nil
}
