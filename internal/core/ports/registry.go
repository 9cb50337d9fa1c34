package ports

import (
	"context"

	"go.trai.ch/devd/internal/core/domain"
)

//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks

// Registry queries a remote package registry.
type Registry interface {
	// QueryVersions returns every published version with its declared host range.
	QueryVersions(ctx context.Context, name string) ([]domain.CandidateVersion, error)
	// DistTags returns the package's dist-tags, such as "latest".
	DistTags(ctx context.Context, name string) (map[string]string, error)
}

// RegistryOpener connects to the registry at a base URL.
type RegistryOpener interface {
	Open(baseURL string) (Registry, error)
}
