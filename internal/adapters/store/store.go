// Package store implements the on-disk versioned package store.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/devd/internal/core/policy"
	"go.trai.ch/devd/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.VersionStore = (*Store)(nil)

// Store implements ports.VersionStore with one directory per version.
type Store struct {
	manifests ports.ManifestReader
}

// NewStore creates a Store that uses manifests to locate entry files.
func NewStore(manifests ports.ManifestReader) *Store {
	return &Store{manifests: manifests}
}

// EnsureRoot creates root if it does not exist.
func (s *Store) EnsureRoot(root string) error {
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "root", root)
	}
	return nil
}

// ListVersions returns the child directories of root whose names are semantic versions.
func (s *Store) ListVersions(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "root", root)
	}

	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !policy.Valid(entry.Name()) {
			continue
		}
		versions = append(versions, entry.Name())
	}
	return versions, nil
}

// Exists reports whether root/version holds the entry file named by its manifest.
func (s *Store) Exists(root, version string) bool {
	if !policy.Valid(version) {
		return false
	}
	dir := filepath.Join(root, version)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}

	m, err := s.manifests.Read(dir)
	if err != nil {
		return false
	}
	entry := domain.ResolvedPackage{Path: dir, Main: m.Main}.EntryPath()
	info, err = os.Stat(entry)
	return err == nil && !info.IsDir()
}

// Remove deletes root/version.
func (s *Store) Remove(root, version string) error {
	if !policy.Valid(version) {
		return zerr.With(domain.ErrPackageNotInstalled, "version", version)
	}
	dir := filepath.Join(root, version)
	if _, err := os.Stat(dir); err != nil {
		return zerr.With(zerr.With(domain.ErrPackageNotInstalled, "version", version), "root", root)
	}
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreRemoveFailed.Error()), "path", dir)
	}
	return nil
}

// RemoveAll deletes root and everything below it. A missing root is not an error.
func (s *Store) RemoveAll(root string) error {
	if err := os.RemoveAll(root); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreRemoveFailed.Error()), "path", root)
	}
	return nil
}

// ListPackages returns the package directory names below root, sorted.
// Scope directories ("@acme") contribute "@acme/<name>" entries.
func (s *Store) ListPackages(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "root", root)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !strings.HasPrefix(entry.Name(), "@") {
			names = append(names, entry.Name())
			continue
		}
		scoped, err := os.ReadDir(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		for _, child := range scoped {
			if child.IsDir() {
				names = append(names, entry.Name()+"/"+child.Name())
			}
		}
	}
	slices.Sort(names)
	return names, nil
}
