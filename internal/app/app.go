// Package app implements the application layer for pynix.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/pynix/internal/adapters/daemon"
	"go.trai.ch/pynix/internal/adapters/nix"
	"go.trai.ch/pynix/internal/adapters/resolver"
	"go.trai.ch/pynix/internal/adapters/watcher"
	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/pynix/internal/engine/catalog"
	"go.trai.ch/pynix/internal/engine/gateway"
	"go.trai.ch/pynix/internal/modsys"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// connectorFactory builds a daemon connector for a cache directory. It is a
// field so tests can substitute a fake daemon.
type connectorFactory func(cacheDir string, logger ports.Logger) (ports.DaemonConnector, error)

// App represents the main application logic. Engines that depend on the
// effective configuration (evaluator, resolver, catalog, daemon pieces) are
// constructed per operation after the config is loaded; only the
// config-independent adapters are injected.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	tracer       ports.Tracer
	deriver      ports.PathDeriver
	importer     ports.ModuleImporter
	watcher      ports.Watcher

	newConnector connectorFactory

	stdout  io.Writer
	stderr  io.Writer
	noColor bool
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	tracer ports.Tracer,
	deriver ports.PathDeriver,
	importer ports.ModuleImporter,
	w ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       log,
		tracer:       tracer,
		deriver:      deriver,
		importer:     importer,
		watcher:      w,
		newConnector: func(cacheDir string, log ports.Logger) (ports.DaemonConnector, error) {
			return daemon.NewConnector(cacheDir, log)
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects the App's output streams.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithConnectorFactory substitutes the daemon connector constructor.
// This is primarily used for testing.
func (a *App) WithConnectorFactory(f func(cacheDir string, logger ports.Logger) (ports.DaemonConnector, error)) *App {
	a.newConnector = f
	return a
}

// Configure applies the root-level flags before a command runs.
func (a *App) Configure(logLevel string, logJSON, noColor bool, configPath string) {
	if logLevel != "" {
		a.logger.SetLevel(logLevel)
	}
	a.logger.SetJSON(logJSON)
	a.noColor = noColor
	if configPath != "" {
		a.configLoader.SetPath(configPath)
	}
}

// ResolveOptions configuration for the Resolve method.
type ResolveOptions struct {
	JSON     bool
	NoDaemon bool
}

// Resolve resolves each named package to its module search paths and prints
// them. Packages unknown to the package set are reported in the output and
// turn into a non-nil error once everything has been printed, so scripted
// callers see a failing exit.
func (a *App) Resolve(ctx context.Context, packages []string, opts ResolveOptions) error {
	if len(packages) == 0 {
		return domain.ErrNoPackagesSpecified
	}

	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	res, cleanup, err := a.resolverFor(ctx, cfg, opts.NoDaemon)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := a.resolveAll(ctx, res, packages)
	if err != nil {
		return err
	}

	if opts.JSON {
		if err := writeJSON(a.stdout, results); err != nil {
			return zerr.Wrap(err, "failed to encode results")
		}
	} else {
		a.printResolutions(results)
	}

	if unknown := unknownPackages(results); len(unknown) > 0 {
		return zerr.Wrap(domain.ErrUnknownPackage, fmt.Sprintf("not in the package set: %s", strings.Join(unknown, ", ")))
	}
	return nil
}

// Exec resolves the named packages and runs command with PYTHONPATH
// extended by the derived search paths, in package order.
func (a *App) Exec(ctx context.Context, packages []string, command []string) error {
	if len(packages) == 0 {
		return domain.ErrNoPackagesSpecified
	}
	if len(command) == 0 {
		return domain.ErrNoCommandSpecified
	}

	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	res, cleanup, err := a.resolverFor(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := a.resolveAll(ctx, res, packages)
	if err != nil {
		return err
	}
	if unknown := unknownPackages(results); len(unknown) > 0 {
		return zerr.Wrap(domain.ErrUnknownPackage, fmt.Sprintf("not in the package set: %s", strings.Join(unknown, ", ")))
	}

	return a.executor.Execute(ctx, command, mergePaths(results), a.stdout, a.stderr)
}

// ImportOptions configuration for the Import method.
type ImportOptions struct {
	JSON     bool
	NoDaemon bool
}

// Import drives the import machinery end to end: it installs the namespace
// finder into a fresh module system, imports each dotted name through it, and
// reports what loaded. Names without the namespace prefix are qualified
// first, so "numpy" and "nixpkgs.numpy" request the same module. Names that
// fail to import are reported in the output and turn into a non-nil error
// once everything has been printed.
func (a *App) Import(ctx context.Context, names []string, opts ImportOptions) error {
	if len(names) == 0 {
		return domain.ErrNoPackagesSpecified
	}

	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	res, cleanup, err := a.resolverFor(ctx, cfg, opts.NoDaemon)
	if err != nil {
		return err
	}
	defer cleanup()

	sys := modsys.NewSystem(a.importer)
	handle, err := gateway.Initialize(sys, res, a.importer, a.logger, a.tracer, cfg.Namespace)
	if err != nil {
		return zerr.Wrap(err, "failed to install the namespace finder")
	}
	defer handle.Dispose()

	results := make([]importResult, len(names))
	for i, name := range names {
		qualified := name
		if !strings.HasPrefix(name, cfg.Namespace+".") {
			qualified = cfg.Namespace + "." + name
		}

		mod, err := sys.Import(ctx, qualified)
		if err != nil {
			if !errors.Is(err, domain.ErrModuleNotFound) {
				return err
			}
			a.logger.Debug(fmt.Sprintf("import of %s failed: %v", qualified, err))
			results[i] = importResult{Module: qualified}
			continue
		}
		results[i] = importResult{
			Module:  qualified,
			Found:   true,
			Kind:    string(mod.Kind()),
			Origin:  mod.Path(),
			Members: mod.Members(),
		}
	}

	if opts.JSON {
		if err := writeJSON(a.stdout, results); err != nil {
			return zerr.Wrap(err, "failed to encode results")
		}
	} else {
		a.printImports(results)
	}

	if missing := missingModules(results); len(missing) > 0 {
		return zerr.Wrap(domain.ErrModuleNotFound, fmt.Sprintf("failed to import: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// ListOptions configuration for the List method.
type ListOptions struct {
	Filter  string
	Refresh bool
}

// List prints the package catalog, optionally filtered by a substring.
func (a *App) List(ctx context.Context, opts ListOptions) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	engine := a.buildCatalog(cfg)
	cat, err := engine.Catalog(ctx, opts.Refresh)
	if err != nil {
		return err
	}

	a.printCatalog(cat.Filter(opts.Filter), cat.FetchedAt)
	return nil
}

// Clean removes the disk caches: persisted resolutions and the catalog. A
// running daemon is told to drop its memo as well so the next resolution is
// genuinely fresh.
func (a *App) Clean(ctx context.Context) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(domain.ResolutionsPath(cfg.CacheDir), "resolution cache")
	remove(domain.CatalogPath(cfg.CacheDir), "catalog cache")

	a.invalidateDaemon(ctx, cfg)

	return errs
}

// invalidateDaemon drops a running daemon's memo. Best effort: a missing or
// unresponsive daemon is not an error for clean.
func (a *App) invalidateDaemon(ctx context.Context, cfg *ports.Config) {
	conn, err := a.newConnector(cfg.CacheDir, a.logger)
	if err != nil || !conn.IsRunning() {
		return
	}

	client := conn.Dial()
	defer func() { _ = client.Close() }()

	if err := client.InvalidateAll(ctx); err != nil {
		a.logger.Warn(fmt.Sprintf("failed to invalidate daemon cache: %v", err))
		return
	}
	a.logger.Info("daemon cache invalidated")
}

// ServeDaemonOptions configuration for the ServeDaemon method.
type ServeDaemonOptions struct {
	// Spawned marks a daemon started by the connector rather than by hand;
	// its output goes to the log file, so switch to JSON lines.
	Spawned bool
}

// ServeDaemon runs the resolution daemon in the foreground until the idle
// timer fires, a shutdown is requested, or the context is canceled. While
// serving, a change to the config file on disk swaps in a freshly built
// resolver engine.
func (a *App) ServeDaemon(ctx context.Context, opts ServeDaemonOptions) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if opts.Spawned {
		a.logger.SetJSON(true)
	}

	lifecycle := daemon.NewLifecycle(cfg.DaemonIdleTimeout)
	server := daemon.NewServer(lifecycle, a.buildEngine(cfg), a.logger, cfg.CacheDir)

	if cfg.Path != "" {
		cw := watcher.NewConfigWatcher(a.watcher, a.logger, cfg.Path, watcher.DefaultDebounceWindow, func() {
			a.reloadDaemonConfig(server)
		})
		if err := cw.Start(ctx); err != nil {
			a.logger.Warn(fmt.Sprintf("config watching disabled: %v", err))
		} else {
			defer func() { _ = cw.Stop() }()
		}
	} else {
		a.logger.Debug("running on built-in defaults, no config file to watch")
	}

	return server.Serve(ctx)
}

// reloadDaemonConfig re-reads the configuration and swaps a fresh engine
// into the server. Resolutions against an unchanged source warm-start from
// the disk layer; a changed source or interpreter yields new resolution IDs
// and re-resolves.
func (a *App) reloadDaemonConfig(server *daemon.Server) {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		a.logger.Warn(fmt.Sprintf("config reload failed, keeping previous configuration: %v", err))
		return
	}

	server.SwapResolver(a.buildEngine(cfg))
	a.logger.Info("configuration reloaded, resolution memo cleared")
}

// DaemonStatus prints the daemon's state. Asking never spawns a daemon.
func (a *App) DaemonStatus(ctx context.Context) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	conn, err := a.newConnector(cfg.CacheDir, a.logger)
	if err != nil {
		return err
	}

	if !conn.IsRunning() {
		a.printDaemonStopped()
		return nil
	}

	client := conn.Dial()
	defer func() { _ = client.Close() }()

	status, err := client.Status(ctx)
	if err != nil {
		return zerr.Wrap(err, "failed to query daemon status")
	}

	a.printDaemonStatus(status)
	return nil
}

// StopDaemon asks a running daemon to shut down.
func (a *App) StopDaemon(ctx context.Context) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	conn, err := a.newConnector(cfg.CacheDir, a.logger)
	if err != nil {
		return err
	}

	if !conn.IsRunning() {
		a.printDaemonStopped()
		return nil
	}

	client := conn.Dial()
	defer func() { _ = client.Close() }()

	if err := client.Shutdown(ctx); err != nil {
		return zerr.Wrap(err, "failed to stop daemon")
	}

	// The daemon acknowledges before it tears down. Wait for the socket to
	// stop answering so a follow-up command cannot race the exiting process.
	deadline := time.Now().Add(2 * time.Second)
	for conn.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	fmt.Fprintln(a.stdout, "daemon stopped")
	return nil
}

// resolveResult is one package's outcome, in request order.
type resolveResult struct {
	Package string   `json:"package"`
	Known   bool     `json:"known"`
	Paths   []string `json:"paths"`
}

// importResult is one module request's outcome, in request order.
type importResult struct {
	Module  string   `json:"module"`
	Found   bool     `json:"found"`
	Kind    string   `json:"kind,omitempty"`
	Origin  string   `json:"origin,omitempty"`
	Members []string `json:"members,omitempty"`
}

// resolveAll fans the packages out over the resolver, bounded by the CPU
// count. Results keep request order regardless of completion order.
func (a *App) resolveAll(ctx context.Context, res ports.PackageResolver, packages []string) ([]resolveResult, error) {
	results := make([]resolveResult, len(packages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, name := range packages {
		g.Go(func() error {
			paths, err := res.GetOrResolve(ctx, domain.PackageName(name))
			if err != nil {
				return err
			}
			results[i] = resolveResult{
				Package: name,
				Known:   paths != nil,
				Paths:   append([]string{}, paths...),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolverFor prefers a warm daemon and falls back to in-process
// resolution. The fallback is silent beyond a debug line; resolution must
// not depend on daemon health.
func (a *App) resolverFor(ctx context.Context, cfg *ports.Config, noDaemon bool) (ports.PackageResolver, func(), error) {
	if cfg.DaemonEnabled && !noDaemon {
		if client := a.daemonResolver(ctx, cfg); client != nil {
			return client, func() { _ = client.Close() }, nil
		}
	}
	return a.buildEngine(cfg), func() {}, nil
}

func (a *App) daemonResolver(ctx context.Context, cfg *ports.Config) ports.DaemonClient {
	conn, err := a.newConnector(cfg.CacheDir, a.logger)
	if err != nil {
		a.logger.Debug(fmt.Sprintf("daemon connector unavailable: %v", err))
		return nil
	}

	client, err := conn.Connect(ctx)
	if err != nil {
		a.logger.Debug(fmt.Sprintf("falling back to in-process resolution: %v", err))
		return nil
	}

	a.logger.Debug("resolving through the daemon")
	return client
}

// buildEngine assembles the in-process resolution pipeline for cfg.
func (a *App) buildEngine(cfg *ports.Config) *resolver.Engine {
	return resolver.NewEngine(
		nix.NewEvaluator(cfg.Source, cfg.Interpreter),
		nix.NewStore(cfg.Source, cfg.Interpreter),
		a.deriver,
		a.logger,
		a.tracer,
		cfg.Source,
		cfg.Interpreter,
		cfg.CacheDir,
	)
}

// buildCatalog assembles the catalog engine for cfg.
func (a *App) buildCatalog(cfg *ports.Config) *catalog.Engine {
	return catalog.NewEngine(
		nix.NewEvaluator(cfg.Source, cfg.Interpreter),
		a.logger,
		cfg.CacheDir,
		cfg.CatalogTTL,
	)
}

func unknownPackages(results []resolveResult) []string {
	var unknown []string
	for _, r := range results {
		if !r.Known {
			unknown = append(unknown, r.Package)
		}
	}
	return unknown
}

func missingModules(results []importResult) []string {
	var missing []string
	for _, r := range results {
		if !r.Found {
			missing = append(missing, r.Module)
		}
	}
	return missing
}

// mergePaths concatenates result paths in request order, dropping
// duplicates while keeping the first occurrence.
func mergePaths(results []resolveResult) domain.SearchPathSet {
	seen := make(map[string]struct{})
	var merged domain.SearchPathSet
	for _, r := range results {
		for _, p := range r.Paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}
