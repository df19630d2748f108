// Package config provides the configuration loader for pynix.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultNamespace is the synthetic namespace prefix.
	DefaultNamespace = "nixpkgs"

	// DefaultCatalogTTL is how long a cached catalog stays fresh.
	DefaultCatalogTTL = 24 * time.Hour

	// DefaultDaemonIdleTimeout is how long the daemon stays alive without
	// requests.
	DefaultDaemonIdleTimeout = 30 * time.Minute

	// probeTimeout bounds the interpreter version probe during Load.
	probeTimeout = 5 * time.Second
)

// Loader implements ports.ConfigLoader: explicit path, else upward
// discovery of pynix.yaml, else the user-global config file, else built-in
// defaults. The interpreter version falls back to probing python3 when the
// file does not pin one.
type Loader struct {
	logger ports.Logger
	prober ports.InterpreterProber

	path string
}

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger, prober ports.InterpreterProber) *Loader {
	return &Loader{
		logger: logger,
		prober: prober,
	}
}

// SetPath pins the loader to an explicit config file path.
func (l *Loader) SetPath(path string) {
	l.path = path
}

// Load discovers and reads the configuration starting from cwd.
func (l *Loader) Load(cwd string) (*ports.Config, error) {
	path, err := l.configPath(cwd)
	if err != nil {
		return nil, err
	}

	var file File
	if path != "" {
		if err := readFile(path, &file); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}

	return l.build(&file, path)
}

// configPath returns the file to load, or "" for built-in defaults.
func (l *Loader) configPath(cwd string) (string, error) {
	if l.path != "" {
		if _, err := os.Stat(l.path); err != nil {
			return "", zerr.With(domain.ErrConfigNotFound, "path", l.path)
		}
		return l.path, nil
	}

	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	if user := domain.DefaultUserConfigPath(); user != "" {
		if info, err := os.Stat(user); err == nil && !info.IsDir() {
			return user, nil
		}
	}

	return "", nil
}

// build turns the parsed file into the resolved configuration, applying
// defaults field by field.
func (l *Loader) build(file *File, path string) (*ports.Config, error) {
	cfg := &ports.Config{
		Namespace:         DefaultNamespace,
		Source:            domain.DefaultSource(),
		CacheDir:          domain.DefaultCachePath(),
		CatalogTTL:        DefaultCatalogTTL,
		DaemonEnabled:     true,
		DaemonIdleTimeout: DefaultDaemonIdleTimeout,
		Path:              path,
	}

	if file.Namespace != "" {
		if err := domain.ValidatePackageName(domain.PackageName(file.Namespace)); err != nil {
			return nil, fieldError("namespace", file.Namespace, err)
		}
		cfg.Namespace = file.Namespace
	}

	if file.Nixpkgs.Channel != "" {
		cfg.Source.Channel = file.Nixpkgs.Channel
	}
	cfg.Source.Rev = file.Nixpkgs.Rev

	if file.Cache.Dir != "" {
		cfg.CacheDir = file.Cache.Dir
	}

	if file.Cache.CatalogTTL != "" {
		ttl, err := time.ParseDuration(file.Cache.CatalogTTL)
		if err != nil {
			return nil, fieldError("cache.catalog_ttl", file.Cache.CatalogTTL, err)
		}
		cfg.CatalogTTL = ttl
	}

	if file.Daemon.Enabled != nil {
		cfg.DaemonEnabled = *file.Daemon.Enabled
	}

	if file.Daemon.IdleTimeout != "" {
		timeout, err := time.ParseDuration(file.Daemon.IdleTimeout)
		if err != nil {
			return nil, fieldError("daemon.idle_timeout", file.Daemon.IdleTimeout, err)
		}
		cfg.DaemonIdleTimeout = timeout
	}

	interp, err := l.interpreter(file.Python.Version)
	if err != nil {
		return nil, err
	}
	cfg.Interpreter = interp

	return cfg, nil
}

// interpreter resolves the target interpreter: the configured version wins,
// otherwise the system python3 is probed, otherwise the built-in default.
func (l *Loader) interpreter(version string) (domain.Interpreter, error) {
	if version != "" {
		interp, err := domain.ParseInterpreter(version)
		if err != nil {
			return domain.Interpreter{}, fieldError("python.version", version, err)
		}
		return interp, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	interp, err := l.prober.Probe(ctx)
	if err != nil {
		l.logger.Debug(fmt.Sprintf(
			"interpreter probe failed, using default %s: %v",
			domain.DefaultInterpreter.Version(), err,
		))
		return domain.DefaultInterpreter, nil
	}
	return interp, nil
}

// readFile reads and strictly decodes a pynix.yaml; unknown keys are
// rejected. An empty file counts as all-defaults.
func readFile(path string, target *File) error {
	//nolint:gosec // path comes from discovery or an explicit user flag
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

// fieldError builds a parse error that names the offending field and value.
func fieldError(field, value string, err error) error {
	parseErr := zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, err), fmt.Sprintf("invalid value for %s", field))
	return zerr.With(parseErr, "value", value)
}
