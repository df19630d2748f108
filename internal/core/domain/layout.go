package domain

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the name of the pynix directory under the user cache dir.
	AppDirName = "pynix"

	// ResolutionsDirName is the name of the resolution cache directory.
	ResolutionsDirName = "resolutions"

	// CatalogFileName is the name of the cached package catalog file.
	CatalogFileName = "catalog.json"

	// DaemonDirName is the name of the daemon runtime directory.
	DaemonDirName = "daemon"

	// SocketFileName is the name of the daemon's Unix domain socket.
	SocketFileName = "pynix.sock"

	// PIDFileName is the name of the daemon's PID file.
	PIDFileName = "pynix.pid"

	// LogFileName is the name of the daemon's log file.
	LogFileName = "pynix.log"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "pynix.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600

	// SocketPerm is the permission for the daemon socket (rw-------).
	SocketPerm = 0o600
)

// DefaultCachePath returns the default root cache directory
// ($XDG_CACHE_HOME/pynix on Linux). It falls back to the system temp
// directory when the user cache dir cannot be determined.
func DefaultCachePath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppDirName)
}

// ResolutionsPath returns the resolution cache directory under cacheDir.
func ResolutionsPath(cacheDir string) string {
	return filepath.Join(cacheDir, ResolutionsDirName)
}

// CatalogPath returns the cached catalog file under cacheDir.
func CatalogPath(cacheDir string) string {
	return filepath.Join(cacheDir, CatalogFileName)
}

// DaemonSocketPath returns the daemon socket path under cacheDir.
func DaemonSocketPath(cacheDir string) string {
	return filepath.Join(cacheDir, DaemonDirName, SocketFileName)
}

// DaemonPIDPath returns the daemon PID file path under cacheDir.
func DaemonPIDPath(cacheDir string) string {
	return filepath.Join(cacheDir, DaemonDirName, PIDFileName)
}

// DaemonLogPath returns the daemon log file path under cacheDir.
func DaemonLogPath(cacheDir string) string {
	return filepath.Join(cacheDir, DaemonDirName, LogFileName)
}

// DefaultUserConfigPath returns the user-global config file path
// ($XDG_CONFIG_HOME/pynix/pynix.yaml on Linux), or "" when the user config
// dir cannot be determined.
func DefaultUserConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, AppDirName, ConfigFileName)
}
