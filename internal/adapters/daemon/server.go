package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.trai.ch/pynix/internal/core/domain"
	"go.trai.ch/pynix/internal/core/ports"
	"go.trai.ch/zerr"
)

const shutdownGrace = 5 * time.Second

// Server serves the resolution API over a Unix domain socket. It wraps the
// in-process resolver engine so every CLI invocation on the same machine
// shares one warm cache.
type Server struct {
	lifecycle *Lifecycle
	resolver  ports.PackageResolver
	logger    ports.Logger
	cacheDir  string

	// seen tracks which names the resolver has already memoized, so replies
	// can carry a cache-hit flag and status a cache size.
	mu   sync.Mutex
	seen map[domain.PackageName]struct{}
}

// NewServer creates a daemon server backed by the given resolver.
func NewServer(lifecycle *Lifecycle, resolver ports.PackageResolver, logger ports.Logger, cacheDir string) *Server {
	return &Server{
		lifecycle: lifecycle,
		resolver:  resolver,
		logger:    logger,
		cacheDir:  cacheDir,
		seen:      make(map[domain.PackageName]struct{}),
	}
}

// SwapResolver replaces the resolution backend and clears the seen set. The
// daemon swaps in a freshly built engine when the configuration changes on
// disk, so resolutions against the old source are not served anymore.
func (s *Server) SwapResolver(resolver ports.PackageResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = resolver
	s.seen = make(map[domain.PackageName]struct{})
}

func (s *Server) currentResolver() ports.PackageResolver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver
}

// Serve binds the socket and serves until the context is canceled, the idle
// timer fires, or a shutdown request arrives. The socket and PID file are
// removed on exit.
func (s *Server) Serve(ctx context.Context) error {
	socketPath := domain.DaemonSocketPath(s.cacheDir)

	if err := os.MkdirAll(filepath.Dir(socketPath), domain.DirPerm); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to create daemon directory")
	}

	// An instance that died without cleanup leaves its socket behind and
	// listening on it would fail with "address already in use".
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to remove stale socket")
	}

	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to listen on daemon socket")
	}

	if err := os.Chmod(socketPath, domain.SocketPerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to set socket permissions")
	}

	if err := s.writePIDFile(); err != nil {
		_ = lis.Close()
		return err
	}
	defer s.cleanup()

	httpServer := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(lis)
	}()

	s.logger.Info(fmt.Sprintf("daemon listening on %s", socketPath))

	select {
	case <-ctx.Done():
		s.stop(httpServer)
		return ctx.Err()
	case <-s.lifecycle.ShutdownChan():
		s.logger.Info("daemon shutting down")
		s.stop(httpServer)
		return nil
	case err := <-errCh:
		return zerr.Wrap(err, "daemon server failed")
	}
}

func (s *Server) stop(httpServer *http.Server) {
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = httpServer.Shutdown(sctx)
}

func (s *Server) cleanup() {
	_ = os.Remove(domain.DaemonSocketPath(s.cacheDir))
	_ = os.Remove(domain.DaemonPIDPath(s.cacheDir))
}

func (s *Server) writePIDFile() error {
	pid := fmt.Sprintf("%d", os.Getpid())
	if err := os.WriteFile(domain.DaemonPIDPath(s.cacheDir), []byte(pid), domain.PrivateFilePerm); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrDaemonStartFailed, err), "failed to write PID file")
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/ping", s.handlePing)
	r.Get("/v1/status", s.handleStatus)
	r.Post("/v1/resolve", s.handleResolve)
	r.Post("/v1/invalidate", s.handleInvalidate)
	r.Post("/v1/shutdown", s.handleShutdown)
	return r
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	s.lifecycle.ResetTimer()
	writeJSON(w, http.StatusOK, PingResponse{
		IdleRemainingSeconds: int64(s.lifecycle.IdleRemaining().Seconds()),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.lifecycle.ResetTimer()
	writeJSON(w, http.StatusOK, StatusResponse{
		Running:              true,
		PID:                  os.Getpid(),
		UptimeSeconds:        int64(s.lifecycle.Uptime().Seconds()),
		LastActivityUnix:     s.lifecycle.LastActivity().Unix(),
		IdleRemainingSeconds: int64(s.lifecycle.IdleRemaining().Seconds()),
		CachedPackages:       s.cachedCount(),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	s.lifecycle.ResetTimer()

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
		return
	}

	name := domain.PackageName(req.Package)
	cacheHit := s.wasSeen(name)

	paths, err := s.currentResolver().GetOrResolve(r.Context(), name)
	if err != nil {
		s.logger.Debug(fmt.Sprintf("resolve %s failed: %v", req.Package, err))
		code, status := codeFor(err)
		writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	s.markSeen(name)

	writeJSON(w, http.StatusOK, ResolveResponse{
		Package:  req.Package,
		Known:    paths != nil,
		Paths:    paths,
		CacheHit: cacheHit,
	})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.lifecycle.ResetTimer()

	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
		return
	}

	if req.Package == "" {
		if err := s.currentResolver().InvalidateAll(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		s.forgetAll()
	} else {
		name := domain.PackageName(req.Package)
		if err := s.currentResolver().Invalidate(r.Context(), name); err != nil {
			code, status := codeFor(err)
			writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
			return
		}
		s.forget(name)
	}

	writeJSON(w, http.StatusOK, InvalidateResponse{Invalidated: true})
}

func (s *Server) handleShutdown(w http.ResponseWriter, _ *http.Request) {
	// Reply before triggering shutdown; the graceful stop drains this
	// connection so the client still receives the acknowledgement.
	writeJSON(w, http.StatusOK, ShutdownResponse{ShuttingDown: true})
	s.lifecycle.Shutdown()
}

func (s *Server) wasSeen(name domain.PackageName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[name]
	return ok
}

func (s *Server) markSeen(name domain.PackageName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[name] = struct{}{}
}

func (s *Server) forget(name domain.PackageName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, name)
}

func (s *Server) forgetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[domain.PackageName]struct{})
}

func (s *Server) cachedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
