package ports

import (
	"io"

	"go.trai.ch/cplan/internal/core/domain"
)

// ConfigLoader defines the interface for locating and loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Find walks up from cwd and returns the path of the first build.toml or build.yaml.
	Find(cwd string) (string, error)
	// Load reads the configuration file at path and applies defaults.
	Load(path string) (*domain.Config, error)
	// Dump writes cfg, defaults included, in the TOML file format.
	Dump(w io.Writer, cfg *domain.Config) error
}
