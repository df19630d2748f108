package gateway_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pynix/internal/adapters/pysite"
	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/pynix/internal/core/ports/mocks"
	"go.trai.ch/pynix/internal/engine/gateway"
	"go.trai.ch/pynix/internal/modsys"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// buildSite lays out a site directory: map keys ending in "/" become
// packages with an __init__.py, other keys become files with the given
// content.
func buildSite(t *testing.T, entries map[string]string) string {
	t.Helper()
	site := t.TempDir()
	for name, content := range entries {
		path := filepath.Join(site, name)
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o750))
			require.NoError(t, os.WriteFile(filepath.Join(path, "__init__.py"), nil, 0o644))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return site
}

func newTracer(t *testing.T) ports.Tracer {
	t.Helper()
	ctrl := gomock.NewController(t)

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		}).AnyTimes()
	return tracer
}

func newLogger(t *testing.T) ports.Logger {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

// newGateway wires a real module system and site importer to a mocked
// resolver and installs the namespace hook.
func newGateway(t *testing.T, resolver ports.PackageResolver) (*modsys.System, *gateway.Handle) {
	t.Helper()
	sys := modsys.NewSystem(pysite.NewImporter())

	handle, err := gateway.Initialize(sys, resolver, pysite.NewImporter(), newLogger(t), newTracer(t), "nixpkgs")
	require.NoError(t, err)
	t.Cleanup(handle.Dispose)
	return sys, handle
}

func TestGateway_ShallowImportAggregatesSite(t *testing.T) {
	site := buildSite(t, map[string]string{
		"scipy/":       "",
		"helperlib.py": "",
	})

	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("scipy")).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()

	sys, _ := newGateway(t, resolver)

	mod, err := sys.Import(t.Context(), "nixpkgs.scipy")
	require.NoError(t, err)
	assert.Equal(t, domain.KindNamespace, mod.Kind())
	assert.Equal(t, []string{"helperlib", "scipy"}, mod.Members())

	// Each member is also visible under its bare name, and the member and
	// the bare registration are the same object.
	bare, ok := sys.Lookup("scipy")
	require.True(t, ok)
	member, ok := mod.Member("scipy")
	require.True(t, ok)
	assert.Same(t, bare, member)
	assert.Equal(t, domain.KindPackage, bare.Kind())
	assert.Equal(t, filepath.Join(site, "scipy"), bare.Path())

	_, ok = sys.Lookup("helperlib")
	assert.True(t, ok)
}

func TestGateway_DeepImportAliasesOrdinaryModule(t *testing.T) {
	site := buildSite(t, map[string]string{
		"sub/":       "",
		"sub/mod.py": "",
	})

	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("pkg")).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()

	sys, _ := newGateway(t, resolver)

	synthetic, err := sys.Import(t.Context(), "nixpkgs.pkg.sub.mod")
	require.NoError(t, err)
	assert.Equal(t, domain.KindSource, synthetic.Kind())
	assert.Equal(t, filepath.Join(site, "sub", "mod.py"), synthetic.Path())

	// An ordinary import of the remainder with the site dir on the path
	// yields the very same module object.
	restore := sys.Path().Extend([]string{site})
	defer restore()
	ordinary, err := sys.Import(t.Context(), "sub.mod")
	require.NoError(t, err)
	assert.Same(t, ordinary, synthetic)

	// The synthetic intermediate aliases the bare package as well.
	syntheticSub, ok := sys.Lookup("nixpkgs.pkg.sub")
	require.True(t, ok)
	bareSub, ok := sys.Lookup("sub")
	require.True(t, ok)
	assert.Same(t, bareSub, syntheticSub)
}

func TestGateway_SearchPathRestoredOnSuccessAndFailure(t *testing.T) {
	site := buildSite(t, map[string]string{"sub/": ""})

	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("pkg")).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()

	sys, _ := newGateway(t, resolver)
	before := sys.Path().Dirs()

	_, err := sys.Import(t.Context(), "nixpkgs.pkg")
	require.NoError(t, err)
	assert.Equal(t, before, sys.Path().Dirs())

	// The deep remainder does not exist, so the loader fails after having
	// extended the path; the extension must still unwind.
	_, err = sys.Import(t.Context(), "nixpkgs.pkg.nosuchsub")
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
	assert.Equal(t, before, sys.Path().Dirs())
}

func TestGateway_UnknownPackageFailsPlainly(t *testing.T) {
	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("numpy")).
		Return(nil, nil).AnyTimes()

	sys, _ := newGateway(t, resolver)

	_, err := sys.Import(t.Context(), "nixpkgs.numpy")
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestGateway_ResolutionErrorDefersToNormalImports(t *testing.T) {
	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("scipy")).
		Return(nil, zerr.New("evaluator unavailable")).AnyTimes()

	sys, _ := newGateway(t, resolver)

	// The finder declines instead of escaping the error, so the import
	// fails with the ordinary not-found.
	_, err := sys.Import(t.Context(), "nixpkgs.scipy")
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestGateway_EmptySiteBindsEmptyNamespace(t *testing.T) {
	site := t.TempDir()

	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("emptypkg")).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()

	sys, _ := newGateway(t, resolver)

	mod, err := sys.Import(t.Context(), "nixpkgs.emptypkg")
	require.NoError(t, err)
	assert.Equal(t, domain.KindNamespace, mod.Kind())
	assert.Empty(t, mod.Members())

	_, ok := sys.Lookup("nixpkgs.emptypkg")
	assert.True(t, ok)
}

func TestGateway_PthEntriesJoinTheSearchPath(t *testing.T) {
	site := buildSite(t, map[string]string{
		"pkg/":          "",
		"deps.pth":      "extra\n",
		"extra/only.py": "",
	})

	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), domain.PackageName("pkg")).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()

	sys, _ := newGateway(t, resolver)

	// "only" lives in site/extra, reachable only because the .pth file put
	// that directory on the extended path during the load.
	mod, err := sys.Import(t.Context(), "nixpkgs.pkg.only")
	require.NoError(t, err)
	assert.Equal(t, domain.KindSource, mod.Kind())
	assert.Equal(t, filepath.Join(site, "extra", "only.py"), mod.Path())
}

func TestGateway_DisposeRemovesHook(t *testing.T) {
	site := buildSite(t, map[string]string{"sub/": ""})

	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), gomock.Any()).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()

	sys := modsys.NewSystem(pysite.NewImporter())
	handle, err := gateway.Initialize(sys, resolver, pysite.NewImporter(), newLogger(t), newTracer(t), "nixpkgs")
	require.NoError(t, err)

	_, err = sys.Import(t.Context(), "nixpkgs.pkg")
	require.NoError(t, err)

	handle.Dispose()
	handle.Dispose()

	// The finder and the root binding are gone; a fresh synthetic name has
	// nothing to resolve it.
	_, err = sys.Import(t.Context(), "nixpkgs.otherpkg")
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
	_, ok := sys.Lookup("nixpkgs")
	assert.False(t, ok)
}

func TestGateway_SecondHandleSharesRoot(t *testing.T) {
	site := buildSite(t, map[string]string{"sub/": ""})

	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	resolver.EXPECT().GetOrResolve(gomock.Any(), gomock.Any()).
		Return(domain.SearchPathSet{site}, nil).AnyTimes()

	sys := modsys.NewSystem(pysite.NewImporter())

	first, err := gateway.Initialize(sys, resolver, pysite.NewImporter(), newLogger(t), newTracer(t), "nixpkgs")
	require.NoError(t, err)
	defer first.Dispose()

	second, err := gateway.Initialize(sys, resolver, pysite.NewImporter(), newLogger(t), newTracer(t), "nixpkgs")
	require.NoError(t, err)

	// Disposing the non-owning handle keeps the root binding and the first
	// finder working.
	second.Dispose()

	_, err = sys.Import(t.Context(), "nixpkgs.pkg")
	require.NoError(t, err)
	_, ok := sys.Lookup("nixpkgs")
	assert.True(t, ok)
}

func TestGateway_InvalidNamespaceRejected(t *testing.T) {
	resolver := mocks.NewMockPackageResolver(gomock.NewController(t))
	sys := modsys.NewSystem(pysite.NewImporter())

	_, err := gateway.Initialize(sys, resolver, pysite.NewImporter(), newLogger(t), newTracer(t), "bad.ns")
	require.ErrorIs(t, err, domain.ErrInvalidPackageName)
}
