package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/taskboard/taskboard-api/internal/jobs"
	"golang.org/x/sync/errgroup"
)

// Run listens on the configured port and serves until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return app.serve(ctx, ln, app.router())
}

// serve runs the HTTP server, the job runner and the cleanup scheduler
// until ctx is cancelled or one of them fails, then shuts everything down
// within the configured grace period.
func (app *application) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	if err := app.jobRunner.Start(); err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if interval := app.config.Jobs.CleanupInterval(); interval > 0 {
		scheduler := jobs.NewScheduler(interval,
			jobs.CleanupJobFactory(app.taskService, app.config.Jobs.TaskRetentionDays, app.logger),
			app.jobRunner, app.logger)
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout())
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
		}
		if err := app.jobRunner.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("job runner shutdown failed: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	app.logger.Info("server shutdown completed")
	return nil
}
