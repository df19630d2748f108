package resolver

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/zerr"
)

// LoadResolution reads a persisted resolution. It returns
// domain.ErrCacheMiss when no entry exists at path.
func LoadResolution(path string) (*domain.Resolution, error) {
	if path == "" {
		return nil, domain.ErrCacheMiss
	}

	//nolint:gosec // Path is constructed from the trusted cache directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}

	var res domain.Resolution
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCacheUnmarshalFailed.Error())
	}

	return &res, nil
}

// SaveResolution persists a resolution with a write-temp-then-rename so
// concurrent readers never observe a partial entry.
func SaveResolution(path string, res *domain.Resolution) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create resolution cache directory")
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheMarshalFailed.Error())
	}

	tmpFile, err := os.CreateTemp(dir, "resolution-*.json")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp cache file")
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	if err := tmpFile.Close(); err != nil {
		return zerr.Wrap(err, "failed to close temp cache file")
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to chmod cache file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return zerr.Wrap(err, "failed to rename temp cache file")
	}

	return nil
}
