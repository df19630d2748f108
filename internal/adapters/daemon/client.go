// Package daemon implements the background resolution daemon: an HTTP/JSON
// server and client over a Unix domain socket, plus the connector that
// spawns the daemon on demand.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
)

// baseURL is a placeholder; the transport dials the socket whatever the
// host part says.
const baseURL = "http://pynix"

// Client talks to a running daemon over its Unix domain socket. It
// implements both ports.DaemonClient and ports.PackageResolver, so CLI
// commands can use a warm daemon as a drop-in resolver.
type Client struct {
	http       *http.Client
	socketPath string
}

var _ ports.DaemonClient = (*Client)(nil)

// Dial prepares a client for the daemon socket under cacheDir. No
// connection is made until the first request.
func Dial(cacheDir string) *Client {
	socketPath := domain.DaemonSocketPath(cacheDir)
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &Client{
		http:       &http.Client{Transport: transport},
		socketPath: socketPath,
	}
}

// Ping implements ports.DaemonClient.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/ping", nil, nil)
}

// Status implements ports.DaemonClient.
func (c *Client) Status(ctx context.Context) (*ports.DaemonStatus, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/status", nil, &resp); err != nil {
		return nil, err
	}
	return &ports.DaemonStatus{
		Running:        resp.Running,
		PID:            resp.PID,
		Uptime:         time.Duration(resp.UptimeSeconds) * time.Second,
		LastActivity:   time.Unix(resp.LastActivityUnix, 0),
		IdleRemaining:  time.Duration(resp.IdleRemainingSeconds) * time.Second,
		CachedPackages: resp.CachedPackages,
	}, nil
}

// Shutdown implements ports.DaemonClient.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/shutdown", nil, nil)
}

// Close implements ports.DaemonClient.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// GetOrResolve implements ports.PackageResolver against the daemon. A
// package unknown to the package set comes back as (nil, nil), matching the
// in-process engine.
func (c *Client) GetOrResolve(ctx context.Context, name domain.PackageName) (domain.SearchPathSet, error) {
	var resp ResolveResponse
	err := c.do(ctx, http.MethodPost, "/v1/resolve", ResolveRequest{Package: string(name)}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Known {
		return nil, nil
	}
	return domain.SearchPathSet(resp.Paths), nil
}

// Invalidate implements ports.PackageResolver against the daemon.
func (c *Client) Invalidate(ctx context.Context, name domain.PackageName) error {
	return c.do(ctx, http.MethodPost, "/v1/invalidate", InvalidateRequest{Package: string(name)}, nil)
}

// InvalidateAll implements ports.PackageResolver against the daemon.
func (c *Client) InvalidateAll(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/invalidate", InvalidateRequest{}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return zerr.Wrap(err, "failed to encode daemon request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return zerr.Wrap(err, "failed to build daemon request")
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrDaemonUnavailable, err), "daemon request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp, path)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return zerr.Wrap(err, "failed to decode daemon response")
		}
	}
	return nil
}

// decodeError rebuilds a resolution error from an ErrorResponse, restoring
// the domain sentinel its wire code stands for.
func decodeError(resp *http.Response, path string) error {
	var apiErr ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
		return zerr.New(fmt.Sprintf("daemon replied %d to %s", resp.StatusCode, path))
	}
	cause := errors.New(apiErr.Error)
	if sentinel := sentinelFor(apiErr.Code); sentinel != nil {
		return errors.Join(sentinel, cause)
	}
	return cause
}
