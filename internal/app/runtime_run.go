package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

func (r *Runtime) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", r.cfg.HTTPAddr)
	if err != nil {
		return err
	}
	return r.Serve(ctx, listener)
}

// Serve runs the API on listener until ctx is canceled, then shuts down gracefully.
func (r *Runtime) Serve(ctx context.Context, listener net.Listener) error {
	r.logger.Info("action server starting", "addr", listener.Addr().String(), "actions", r.actions.Names())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		r.heartbeat.Starting("api", "listening")
		r.heartbeat.Beat("api", "serving")
		err := r.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			r.heartbeat.Stopped("api", "stopped")
			return nil
		}
		r.heartbeat.Degrade("api", "server failed", err)
		return err
	})
	group.Go(func() error {
		return r.beatWhileServing(groupCtx, "api")
	})
	group.Go(func() error {
		return r.heartbeatMonitor.Start(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	err := group.Wait()
	r.logger.Info("action server stopped")
	return err
}

func (r *Runtime) beatWhileServing(ctx context.Context, component string) error {
	interval := time.Duration(r.cfg.HeartbeatIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.heartbeat.Beat(component, "serving")
		}
	}
}
