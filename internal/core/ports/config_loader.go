package ports

import "go.trai.ch/porcelain/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration for the given working directory and resolves defaults.
	// A missing configuration file is not an error; the working directory becomes the build root.
	Load(cwd string) (*domain.Config, error)
}
