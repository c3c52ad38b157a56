// Package server provides shared HTTP server utilities.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Timeouts bounds the lifetime of connections and of graceful shutdown.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
}

// DefaultTimeouts are the timeouts used by the serve command.
var DefaultTimeouts = Timeouts{
	ReadHeader: 1 * time.Second,
	Read:       5 * time.Second,
	Write:      15 * time.Second,
	Idle:       60 * time.Second,
	Shutdown:   10 * time.Second,
}

// apply sets the connection timeouts on srv.
func (t Timeouts) apply(srv *http.Server) {
	srv.ReadHeaderTimeout = t.ReadHeader
	srv.ReadTimeout = t.Read
	srv.WriteTimeout = t.Write
	srv.IdleTimeout = t.Idle
}

// Listen creates a TCP listener on the given address.
// Use "127.0.0.1:0" for a random available port.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}

// Serve starts an HTTP server on the given listener and registers graceful
// shutdown when the context is canceled. Any error returned by srv is routed
// through grp.
func Serve(
	ctx context.Context,
	grp *errgroup.Group,
	logger *slog.Logger,
	srv *http.Server,
	listener net.Listener,
	timeouts Timeouts,
) {
	timeouts.apply(srv)
	srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)

	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		logger.InfoContext(ctx, "shutting down server", slog.String("address", listener.Addr().String()))
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
