package ports

import (
	"context"

	"go.trai.ch/devd/internal/core/domain"
)

//go:generate mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks

// Installer materializes one version of a package into the store.
type Installer interface {
	// Install blocks until the version is placed under req.DestinationRoot.
	Install(ctx context.Context, req domain.InstallRequest) (domain.InstalledLocation, error)
}
