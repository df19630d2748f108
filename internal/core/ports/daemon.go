package ports

import (
	"context"
	"time"
)

//go:generate mockgen -source=daemon.go -destination=mocks/mock_daemon.go -package=mocks

// DaemonStatus represents the current state of the daemon.
type DaemonStatus struct {
	Running       bool
	PID           int
	Uptime        time.Duration
	LastActivity  time.Time
	IdleRemaining time.Duration
	// CachedPackages is the number of resolutions held in the daemon's
	// memo at the time of the status call.
	CachedPackages int
}

// DaemonClient defines the interface for communicating with the daemon. It
// carries the resolver port so a warm daemon is a drop-in replacement for
// the in-process engine.
type DaemonClient interface {
	PackageResolver

	// Ping checks if the daemon is alive and resets the inactivity timer.
	Ping(ctx context.Context) error

	// Status returns the current daemon status.
	Status(ctx context.Context) (*DaemonStatus, error)

	// Shutdown requests a graceful daemon shutdown.
	Shutdown(ctx context.Context) error

	// Close releases client resources.
	Close() error
}

// DaemonConnector manages daemon lifecycle from the CLI perspective.
type DaemonConnector interface {
	// Connect returns a client to the daemon, spawning it if necessary.
	Connect(ctx context.Context) (DaemonClient, error)

	// Dial returns a client for the daemon socket without spawning.
	Dial() DaemonClient

	// IsRunning checks if the daemon process is currently running.
	IsRunning() bool

	// Spawn starts a new daemon process in the background.
	Spawn(ctx context.Context) error
}
