package ports

import (
	"time"

	"go.trai.ch/pynix/internal/core/domain"
)

// Config is the resolved application configuration.
type Config struct {
	// Namespace is the synthetic namespace prefix (default "nixpkgs").
	Namespace string

	// Interpreter is the target Python interpreter.
	Interpreter domain.Interpreter

	// Source is the nixpkgs source the evaluator consults.
	Source domain.Source

	// CacheDir is the root cache directory.
	CacheDir string

	// CatalogTTL is how long a cached catalog stays fresh.
	CatalogTTL time.Duration

	// DaemonEnabled controls whether CLI commands may use the daemon.
	DaemonEnabled bool

	// DaemonIdleTimeout is how long the daemon stays alive without requests.
	DaemonIdleTimeout time.Duration

	// Path is the config file the values were loaded from, or "" when
	// running on built-in defaults.
	Path string
}

// ConfigLoader defines the interface for loading the application configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers and reads the configuration starting from cwd, walking
	// upward to the filesystem root and falling back to the user-global
	// config file, then to built-in defaults. An explicit path set via
	// SetPath skips discovery.
	Load(cwd string) (*Config, error)

	// SetPath pins the loader to an explicit config file path.
	SetPath(path string)
}
