package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pynix/internal/adapters/pysite"
	"go.trai.ch/pynix/internal/adapters/telemetry"
	"go.trai.ch/pynix/internal/app"
	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/pynix/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// fixture wires an App against mocks, with the daemon connector seam
// replaced so no real daemon or nix binary is ever touched.
type fixture struct {
	app       *app.App
	loader    *mocks.MockConfigLoader
	executor  *mocks.MockExecutor
	connector *mocks.MockDaemonConnector
	client    *mocks.MockDaemonClient
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

func newFixture(t *testing.T, cfg *ports.Config) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	log.EXPECT().SetJSON(gomock.Any()).AnyTimes()
	log.EXPECT().SetLevel(gomock.Any()).AnyTimes()

	f := &fixture{
		loader:    mocks.NewMockConfigLoader(ctrl),
		executor:  mocks.NewMockExecutor(ctrl),
		connector: mocks.NewMockDaemonConnector(ctrl),
		client:    mocks.NewMockDaemonClient(ctrl),
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
	}
	if cfg != nil {
		f.loader.EXPECT().Load(".").Return(cfg, nil).AnyTimes()
	}

	f.app = app.New(
		f.loader,
		f.executor,
		log,
		telemetry.NewNoOpTracer(),
		mocks.NewMockPathDeriver(ctrl),
		pysite.NewImporter(),
		mocks.NewMockWatcher(ctrl),
	).
		WithOutput(f.stdout, f.stderr).
		WithConnectorFactory(func(string, ports.Logger) (ports.DaemonConnector, error) {
			return f.connector, nil
		})
	return f
}

func daemonConfig(t *testing.T) *ports.Config {
	t.Helper()
	return &ports.Config{
		Namespace:     "nixpkgs",
		Interpreter:   domain.Interpreter{Major: 3, Minor: 12},
		Source:        domain.DefaultSource(),
		CacheDir:      t.TempDir(),
		CatalogTTL:    time.Hour,
		DaemonEnabled: true,
	}
}

func TestResolveRequiresPackages(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	err := f.app.Resolve(context.Background(), nil, app.ResolveOptions{})
	require.ErrorIs(t, err, domain.ErrNoPackagesSpecified)
}

func TestResolveConfigError(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.loader.EXPECT().Load(".").Return(nil, errors.New("bad config"))

	err := f.app.Resolve(context.Background(), []string{"numpy"}, app.ResolveOptions{})
	require.ErrorContains(t, err, "failed to load configuration")
}

func TestResolvePrintsSearchPaths(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("numpy")).
		Return(domain.SearchPathSet{"/nix/store/abc-pysite/lib/python3.12/site-packages"}, nil)
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Resolve(context.Background(), []string{"numpy"}, app.ResolveOptions{})
	require.NoError(t, err)

	out := f.stdout.String()
	assert.Contains(t, out, "numpy")
	assert.Contains(t, out, "/nix/store/abc-pysite/lib/python3.12/site-packages")
}

func TestResolveJSON(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("requests")).
		Return(domain.SearchPathSet{"/site/requests"}, nil)
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Resolve(context.Background(), []string{"requests"}, app.ResolveOptions{JSON: true})
	require.NoError(t, err)

	var results []struct {
		Package string   `json:"package"`
		Known   bool     `json:"known"`
		Paths   []string `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "requests", results[0].Package)
	assert.True(t, results[0].Known)
	assert.Equal(t, []string{"/site/requests"}, results[0].Paths)
}

func TestResolveUnknownPackageFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("left-pad")).Return(nil, nil)
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Resolve(context.Background(), []string{"left-pad"}, app.ResolveOptions{})
	require.ErrorIs(t, err, domain.ErrUnknownPackage)
	assert.Contains(t, err.Error(), "left-pad")
	assert.Contains(t, f.stdout.String(), "not in the package set")
}

func TestResolveKeepsRequestOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("scipy")).
		Return(domain.SearchPathSet{"/site/scipy"}, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("numpy")).
		Return(domain.SearchPathSet{"/site/numpy"}, nil)
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Resolve(context.Background(), []string{"scipy", "numpy"}, app.ResolveOptions{JSON: true})
	require.NoError(t, err)

	var results []struct {
		Package string `json:"package"`
	}
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "scipy", results[0].Package)
	assert.Equal(t, "numpy", results[1].Package)
}

func TestExecRequiresPackages(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	err := f.app.Exec(context.Background(), nil, []string{"python3"})
	require.ErrorIs(t, err, domain.ErrNoPackagesSpecified)
}

func TestExecRequiresCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	err := f.app.Exec(context.Background(), []string{"numpy"}, nil)
	require.ErrorIs(t, err, domain.ErrNoCommandSpecified)
}

func TestExecMergesPathsInRequestOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("numpy")).
		Return(domain.SearchPathSet{"/site/numpy", "/site/shared"}, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("scipy")).
		Return(domain.SearchPathSet{"/site/scipy", "/site/shared"}, nil)
	f.client.EXPECT().Close().Return(nil)

	command := []string{"python3", "-c", "import numpy"}
	var got domain.SearchPathSet
	f.executor.EXPECT().
		Execute(gomock.Any(), command, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []string, paths domain.SearchPathSet, _, _ io.Writer) error {
			got = paths
			return nil
		})

	err := f.app.Exec(context.Background(), []string{"numpy", "scipy"}, command)
	require.NoError(t, err)
	assert.Equal(t, domain.SearchPathSet{"/site/numpy", "/site/shared", "/site/scipy"}, got)
}

func TestExecRefusesUnknownPackages(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("left-pad")).Return(nil, nil)
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Exec(context.Background(), []string{"left-pad"}, []string{"python3"})
	require.ErrorIs(t, err, domain.ErrUnknownPackage)
}

func TestImportRequiresNames(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	err := f.app.Import(context.Background(), nil, app.ImportOptions{})
	require.ErrorIs(t, err, domain.ErrNoPackagesSpecified)
}

func TestImportShallowPackageAggregates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))

	site := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(site, "numpy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "numpy", "__init__.py"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(site, "helpers.py"), nil, 0o644))

	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("numpy")).
		Return(domain.SearchPathSet{site}, nil)
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Import(context.Background(), []string{"numpy"}, app.ImportOptions{})
	require.NoError(t, err)

	out := f.stdout.String()
	assert.Contains(t, out, "nixpkgs.numpy")
	assert.Contains(t, out, "(namespace)")
	assert.Contains(t, out, "members: helpers, numpy")
}

func TestImportDeepSubmodule(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))

	site := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(site, "linalg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "linalg", "__init__.py"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(site, "linalg", "solve.py"), nil, 0o644))

	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	// The parent chain asks for the package once per synthetic parent.
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("numpy")).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Import(context.Background(), []string{"numpy.linalg.solve"}, app.ImportOptions{JSON: true})
	require.NoError(t, err)

	var results []struct {
		Module string `json:"module"`
		Found  bool   `json:"found"`
		Kind   string `json:"kind"`
		Origin string `json:"origin"`
	}
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "nixpkgs.numpy.linalg.solve", results[0].Module)
	assert.True(t, results[0].Found)
	assert.Equal(t, "source", results[0].Kind)
	assert.Equal(t, filepath.Join(site, "linalg", "solve.py"), results[0].Origin)
}

func TestImportUnknownPackageFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().Connect(gomock.Any()).Return(f.client, nil)
	f.client.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("left-pad")).
		Return(nil, nil).AnyTimes()
	f.client.EXPECT().Close().Return(nil)

	err := f.app.Import(context.Background(), []string{"left-pad"}, app.ImportOptions{})
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
	assert.Contains(t, err.Error(), "left-pad")
	assert.Contains(t, f.stdout.String(), "module not found")
}

func TestListServesCachedCatalog(t *testing.T) {
	t.Parallel()
	cfg := daemonConfig(t)
	f := newFixture(t, cfg)

	cat := &domain.Catalog{
		Entries: []domain.CatalogEntry{
			{Name: "numpy", Description: "Scientific computing"},
			{Name: "requests", Description: "HTTP for humans"},
		},
		FetchedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(cat)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(domain.CatalogPath(cfg.CacheDir), data, 0o644))

	require.NoError(t, f.app.List(context.Background(), app.ListOptions{}))

	out := f.stdout.String()
	assert.Contains(t, out, "numpy")
	assert.Contains(t, out, "HTTP for humans")
	assert.Contains(t, out, "2 packages")
}

func TestListFilter(t *testing.T) {
	t.Parallel()
	cfg := daemonConfig(t)
	f := newFixture(t, cfg)

	cat := &domain.Catalog{
		Entries: []domain.CatalogEntry{
			{Name: "numpy", Description: "Scientific computing"},
			{Name: "requests", Description: "HTTP for humans"},
		},
		FetchedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(cat)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(domain.CatalogPath(cfg.CacheDir), data, 0o644))

	require.NoError(t, f.app.List(context.Background(), app.ListOptions{Filter: "num"}))

	out := f.stdout.String()
	assert.Contains(t, out, "numpy")
	assert.NotContains(t, out, "requests")
	assert.Contains(t, out, "1 package ")
}

func TestCleanRemovesDiskCaches(t *testing.T) {
	t.Parallel()
	cfg := daemonConfig(t)
	f := newFixture(t, cfg)
	f.connector.EXPECT().IsRunning().Return(false)

	resolutions := domain.ResolutionsPath(cfg.CacheDir)
	require.NoError(t, os.MkdirAll(resolutions, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(resolutions, "res.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(domain.CatalogPath(cfg.CacheDir), []byte("{}"), 0o644))

	require.NoError(t, f.app.Clean(context.Background()))

	assert.NoDirExists(t, resolutions)
	assert.NoFileExists(t, domain.CatalogPath(cfg.CacheDir))
}

func TestCleanInvalidatesRunningDaemon(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().IsRunning().Return(true)
	f.connector.EXPECT().Dial().Return(f.client)
	f.client.EXPECT().InvalidateAll(gomock.Any()).Return(nil)
	f.client.EXPECT().Close().Return(nil)

	require.NoError(t, f.app.Clean(context.Background()))
}

func TestDaemonStatusStopped(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().IsRunning().Return(false)

	require.NoError(t, f.app.DaemonStatus(context.Background()))
	assert.Contains(t, f.stdout.String(), "daemon is not running")
}

func TestDaemonStatusRunning(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().IsRunning().Return(true)
	f.connector.EXPECT().Dial().Return(f.client)
	f.client.EXPECT().Status(gomock.Any()).Return(&ports.DaemonStatus{
		Running:        true,
		PID:            4242,
		Uptime:         90 * time.Second,
		LastActivity:   time.Now().Add(-2 * time.Second),
		IdleRemaining:  4 * time.Minute,
		CachedPackages: 3,
	}, nil)
	f.client.EXPECT().Close().Return(nil)

	require.NoError(t, f.app.DaemonStatus(context.Background()))

	out := f.stdout.String()
	assert.Contains(t, out, "daemon running")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "cached packages")
}

func TestStopDaemon(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().IsRunning().Return(true)
	f.connector.EXPECT().Dial().Return(f.client)
	f.client.EXPECT().Shutdown(gomock.Any()).Return(nil)
	// The post-shutdown wait polls until the socket goes quiet.
	f.connector.EXPECT().IsRunning().Return(false)
	f.client.EXPECT().Close().Return(nil)

	require.NoError(t, f.app.StopDaemon(context.Background()))
	assert.Contains(t, f.stdout.String(), "daemon stopped")
}

func TestStopDaemonNotRunning(t *testing.T) {
	t.Parallel()
	f := newFixture(t, daemonConfig(t))
	f.connector.EXPECT().IsRunning().Return(false)

	require.NoError(t, f.app.StopDaemon(context.Background()))
	assert.Contains(t, f.stdout.String(), "daemon is not running")
}
