package daemon

import (
	"errors"
	"net/http"

	"go.trai.ch/pynix/internal/core/domain"
)

// Wire types for the daemon's HTTP/JSON API. Server and client always ship
// in the same binary, so the surface stays private and minimal.

// ResolveRequest asks the daemon for one package's search paths.
type ResolveRequest struct {
	Package string `json:"package"`
}

// ResolveResponse carries the outcome of a resolution. Known is false when
// the package does not exist in the package set; Paths is empty then.
type ResolveResponse struct {
	Package  string   `json:"package"`
	Known    bool     `json:"known"`
	Paths    []string `json:"paths,omitempty"`
	CacheHit bool     `json:"cache_hit"`
}

// InvalidateRequest drops one cached resolution, or every resolution when
// Package is empty.
type InvalidateRequest struct {
	Package string `json:"package,omitempty"`
}

// InvalidateResponse acknowledges an invalidation.
type InvalidateResponse struct {
	Invalidated bool `json:"invalidated"`
}

// PingResponse reports daemon liveness.
type PingResponse struct {
	IdleRemainingSeconds int64 `json:"idle_remaining_seconds"`
}

// StatusResponse reports daemon state.
type StatusResponse struct {
	Running              bool  `json:"running"`
	PID                  int   `json:"pid"`
	UptimeSeconds        int64 `json:"uptime_seconds"`
	LastActivityUnix     int64 `json:"last_activity_unix"`
	IdleRemainingSeconds int64 `json:"idle_remaining_seconds"`
	CachedPackages       int   `json:"cached_packages"`
}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	ShuttingDown bool `json:"shutting_down"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes crossing the wire. Resolution failures collapse to one code;
// the full cause chain travels in the message text.
const (
	codeInvalidPackageName = "invalid_package_name"
	codeResolutionFailed   = "resolution_failed"
)

func codeFor(err error) (code string, status int) {
	if errors.Is(err, domain.ErrInvalidPackageName) {
		return codeInvalidPackageName, http.StatusBadRequest
	}
	return codeResolutionFailed, http.StatusInternalServerError
}

func sentinelFor(code string) error {
	switch code {
	case codeInvalidPackageName:
		return domain.ErrInvalidPackageName
	case codeResolutionFailed:
		return domain.ErrResolutionFailed
	}
	return nil
}
