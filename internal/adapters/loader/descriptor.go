package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ModuleLoader = (*DescriptorLoader)(nil)

// Descriptor is the capability of a package the binary does not link.
// It tells an external runtime where the package lives and what it declares.
type Descriptor struct {
	Name     string
	Version  string
	Root     string
	Entry    string
	Manifest domain.Manifest
}

// DescriptorLoader builds Descriptors from the package manifest.
type DescriptorLoader struct {
	manifests ports.ManifestReader
}

// NewDescriptorLoader creates a DescriptorLoader.
func NewDescriptorLoader(manifests ports.ManifestReader) *DescriptorLoader {
	return &DescriptorLoader{manifests: manifests}
}

// Load implements ports.ModuleLoader.
func (l *DescriptorLoader) Load(_ context.Context, pkg domain.ResolvedPackage) (domain.Capability, error) {
	manifest, err := l.manifests.Read(pkg.Path)
	if err != nil {
		return nil, err
	}

	entry := pkg.EntryPath()
	if _, err := os.Stat(entry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.With(domain.ErrNoLoader, "package", pkg.Name), "entry", entry)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat entry file"), "entry", entry)
	}

	return &Descriptor{
		Name:     pkg.Name,
		Version:  pkg.Version,
		Root:     pkg.Path,
		Entry:    entry,
		Manifest: manifest,
	}, nil
}
