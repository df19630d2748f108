package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownPackage is returned when the evaluator has no attribute for the requested package.
	ErrUnknownPackage = zerr.New("unknown package")

	// ErrInvalidPackageName is returned when a package name is empty or contains separators.
	ErrInvalidPackageName = zerr.New("invalid package name")

	// ErrResolutionFailed is returned when the closure evaluation fails for a reason other than an unknown attribute.
	ErrResolutionFailed = zerr.New("failed to resolve package closure")

	// ErrEvalOutputParseFailed is returned when the evaluator's JSON output cannot be parsed.
	ErrEvalOutputParseFailed = zerr.New("failed to parse evaluator output")

	// ErrEvaluatorUnavailable is returned when the evaluator process cannot be started at all.
	ErrEvaluatorUnavailable = zerr.New("evaluator unavailable")

	// ErrMaterializationFailed is returned when the primary output cannot be realized.
	ErrMaterializationFailed = zerr.New("failed to materialize store path")

	// ErrStoreUnavailable is returned when the builder cannot be reached, as opposed to a failed build.
	ErrStoreUnavailable = zerr.New("store unavailable")

	// ErrPrimaryOutputMissing is returned when a build reports success but the primary output is absent on disk.
	ErrPrimaryOutputMissing = zerr.New("primary output missing after build")

	// ErrModuleNotFound is the standard "cannot import" signal. Every failure
	// at the finder/loader boundary is translated into this.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrInvalidModuleName is returned when a dotted module name is malformed.
	ErrInvalidModuleName = zerr.New("invalid module name")

	// ErrInvalidInterpreterVersion is returned when an interpreter version string cannot be parsed.
	ErrInvalidInterpreterVersion = zerr.New("invalid interpreter version, expected 'major.minor'")

	// ErrInterpreterProbeFailed is returned when probing the system interpreter's version fails.
	ErrInterpreterProbeFailed = zerr.New("failed to probe interpreter version")

	// ErrCacheMiss is returned when a requested item is not found in the cache.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrCacheReadFailed is returned when reading from the resolution cache fails.
	ErrCacheReadFailed = zerr.New("failed to read from resolution cache")

	// ErrCacheWriteFailed is returned when writing to the resolution cache fails.
	ErrCacheWriteFailed = zerr.New("failed to write to resolution cache")

	// ErrCacheMarshalFailed is returned when marshaling cache data fails.
	ErrCacheMarshalFailed = zerr.New("failed to marshal cache data")

	// ErrCacheUnmarshalFailed is returned when unmarshaling cache data fails.
	ErrCacheUnmarshalFailed = zerr.New("failed to unmarshal cache data")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = zerr.New("config file not found")

	// ErrCatalogUnavailable is returned when the package catalog can be neither fetched nor loaded from cache.
	ErrCatalogUnavailable = zerr.New("package catalog unavailable")

	// ErrDaemonUnavailable is returned when the daemon cannot be reached over its socket.
	ErrDaemonUnavailable = zerr.New("daemon unavailable")

	// ErrDaemonStartFailed is returned when spawning the daemon process fails.
	ErrDaemonStartFailed = zerr.New("failed to start daemon")

	// ErrDaemonNotRunning is returned when a command requires a running daemon and none is found.
	ErrDaemonNotRunning = zerr.New("daemon is not running")

	// ErrExecutionFailed is returned when a command run under a resolved environment fails.
	ErrExecutionFailed = zerr.New("command execution failed")

	// ErrNoPackagesSpecified is returned when a command requires package arguments and none were given.
	ErrNoPackagesSpecified = zerr.New("no packages specified")

	// ErrNoCommandSpecified is returned when exec is invoked without a command.
	ErrNoCommandSpecified = zerr.New("no command specified")
)
