// Package server runs an HTTP handler until its context ends, then drains
// connections. SIGHUP triggers a reload callback instead of a restart.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/scout/pkg/logging"
)

// ReloadFunc reloads whatever the server serves.
type ReloadFunc func(ctx context.Context) error

// Options tunes the HTTP server. Zero values take the defaults below.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Logger          logging.Logger
}

func (o Options) withDefaults() Options {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 15 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 30 * time.Second
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 120 * time.Second
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server       *http.Server
	opts         Options
	logger       logging.Logger
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error

	reloadMu sync.RWMutex
	reloadFn ReloadFunc
	reloads  sync.Mutex
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, opts Options) *GracefulServer {
	opts = opts.withDefaults()
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
			IdleTimeout:    opts.IdleTimeout,
			MaxHeaderBytes: 1 << 20,
		},
		opts:       opts,
		logger:     opts.Logger.With(logging.Component("http")),
		shutdownCh: make(chan struct{}),
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// done.
func (gs *GracefulServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	return gs.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or Shutdown is called, then drains
// in-flight requests for up to the shutdown timeout. SIGHUP received while
// serving runs the reload function.
func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	gs.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	sigCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	go gs.handleReloads(sigCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return gs.shutdownErr
		}
		return err
	case <-ctx.Done():
		gs.logger.Info("shutdown requested", logging.String("cause", context.Cause(ctx).Error()))
	case <-gs.shutdownCh:
	}

	err := gs.Shutdown(gs.opts.ShutdownTimeout)
	<-errCh
	return err
}

// Shutdown initiates a graceful shutdown. Later calls return the first
// call's result.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		timer := logging.StartTimer(gs.logger, "graceful shutdown", logging.Duration("timeout", timeout))
		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownErr = err
			timer.EndError(err)
			return
		}
		timer.End()
	})
	return gs.shutdownErr
}

// handleReloads runs the reload function on each SIGHUP until ctx ends.
func (gs *GracefulServer) handleReloads(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			gs.logger.Info("received SIGHUP")
			if err := gs.Reload(ctx); err != nil {
				gs.logger.Error("reload failed", logging.Error(err))
			}
		}
	}
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetReloadFunc sets the function run on SIGHUP.
func (gs *GracefulServer) SetReloadFunc(fn ReloadFunc) {
	gs.reloadMu.Lock()
	defer gs.reloadMu.Unlock()
	gs.reloadFn = fn
}

// Reload runs the reload function. Concurrent reloads run one at a time.
func (gs *GracefulServer) Reload(ctx context.Context) error {
	gs.reloadMu.RLock()
	fn := gs.reloadFn
	gs.reloadMu.RUnlock()

	if fn == nil {
		gs.logger.Warn("reload requested but not configured")
		return nil
	}

	gs.reloads.Lock()
	defer gs.reloads.Unlock()

	timer := logging.StartTimer(gs.logger, "reload")
	if err := fn(ctx); err != nil {
		timer.EndError(err)
		return err
	}
	timer.End()
	return nil
}
