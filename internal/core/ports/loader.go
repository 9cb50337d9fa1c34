package ports

import (
	"context"

	"go.trai.ch/devd/internal/core/domain"
)

//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks

// ModuleLoader turns a resolved package into a usable capability.
type ModuleLoader interface {
	Load(ctx context.Context, pkg domain.ResolvedPackage) (domain.Capability, error)
}
