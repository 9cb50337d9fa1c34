package ports

import "go.trai.ch/devd/internal/core/domain"

//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks

// ConfigLoader defines the interface for loading configuration.
type ConfigLoader interface {
	// Load discovers devd.yaml from cwd upwards and resolves the environment.
	Load(cwd string) (*domain.Config, error)
}
