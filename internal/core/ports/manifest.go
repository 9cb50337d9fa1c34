package ports

import "go.trai.ch/devd/internal/core/domain"

//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks

// ManifestReader reads the manifest of a package directory.
type ManifestReader interface {
	// Read returns the manifest in dir. A missing manifest is not an error:
	// the result has an empty version and the "*" range.
	Read(dir string) (domain.Manifest, error)
}
