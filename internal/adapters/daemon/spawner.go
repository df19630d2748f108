package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	pollInterval    = 100 * time.Millisecond
	maxPollDuration = 5 * time.Second
)

// Connector implements ports.DaemonConnector. It dials a running daemon and
// spawns one when nothing answers.
type Connector struct {
	executablePath string
	cacheDir       string
	logger         ports.Logger
}

var _ ports.DaemonConnector = (*Connector)(nil)

// NewConnector creates a connector for the daemon socket under cacheDir.
func NewConnector(cacheDir string, logger ports.Logger) (*Connector, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine executable path")
	}
	return &Connector{executablePath: exe, cacheDir: cacheDir, logger: logger}, nil
}

// Connect returns a client to the daemon, spawning one if necessary.
func (c *Connector) Connect(ctx context.Context) (ports.DaemonClient, error) {
	client := Dial(c.cacheDir)
	if err := client.Ping(ctx); err == nil {
		return client, nil
	}
	_ = client.Close()

	if err := c.Spawn(ctx); err != nil {
		return nil, err
	}

	client = Dial(c.cacheDir)
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, zerr.Wrap(errors.Join(domain.ErrDaemonUnavailable, err), "daemon started but is not responsive")
	}
	return client, nil
}

// Dial returns a client for the daemon socket without spawning anything.
// Status and stop commands use it so asking about the daemon never starts
// one.
func (c *Connector) Dial() ports.DaemonClient {
	return Dial(c.cacheDir)
}

// IsRunning reports whether a daemon is answering on the socket.
func (c *Connector) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return c.ping(ctx)
}

// Spawn starts a daemon process in the background and waits until it
// answers pings.
func (c *Connector) Spawn(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(c.cacheDir, domain.DaemonDirName), domain.DirPerm); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to create daemon directory")
	}

	logPath := domain.DaemonLogPath(c.cacheDir)
	//nolint:gosec // G304: logPath derives from the cache dir, not user input
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.PrivateFilePerm)
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to open daemon log")
	}

	// The child inherits our working directory on purpose: it must discover
	// the same project config this process resolved.
	//nolint:gosec // G204: executablePath is our own binary, args are literals
	cmd := exec.Command(c.executablePath, "daemon", "serve", "--spawned")
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to start daemon process")
	}
	c.logger.Debug(fmt.Sprintf("spawned daemon pid %d", cmd.Process.Pid))

	go func() {
		_ = cmd.Wait()
		_ = logFile.Close()
	}()

	return c.waitForStartup(ctx)
}

func (c *Connector) ping(ctx context.Context) bool {
	client := Dial(c.cacheDir)
	defer func() { _ = client.Close() }()
	return client.Ping(ctx) == nil
}

func (c *Connector) waitForStartup(ctx context.Context) error {
	deadline := time.Now().Add(maxPollDuration)
	for time.Now().Before(deadline) {
		if c.ping(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return zerr.Wrap(domain.ErrDaemonStartFailed, "daemon did not answer within startup timeout")
}
