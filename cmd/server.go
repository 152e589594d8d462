package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/siahsang/yatube/internal/cache"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

func (app *application) serve() error {
	server := &http.Server{
		Addr:         app.config.Addr,
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if memory, ok := app.cache.(*cache.MemoryStore); ok {
		app.doInBackground(func() { app.sweepCache(ctx, memory) })
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	app.doInBackground(func() { app.clearCacheOnSignal(ctx, hup) })

	shutdownError := make(chan error, 1)
	go func() {
		<-ctx.Done()
		app.logger.Info("Shutting down server...", "addr", server.Addr)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err == nil {
			app.logger.Info("Completing background tasks", "addr", server.Addr)
			app.wg.Wait()
		}
		shutdownError <- err
	}()

	app.logger.Info("Server running", "addr", server.Addr, "env", app.config.Env)
	err := server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownError; err != nil {
		return err
	}
	app.logger.Info("Server stopped", "addr", server.Addr, "pid", os.Getpid())
	return nil
}

// sweepCache drops expired page entries until ctx is done.
func (app *application) sweepCache(ctx context.Context, memory *cache.MemoryStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := memory.Sweep(); n > 0 {
				app.logger.Debug("Swept expired cache entries", "count", n)
			}
		}
	}
}

// clearCacheOnSignal empties the page cache each time a signal arrives on sig.
// It lets clear-cache reach a memory cache that only the server process can see.
func (app *application) clearCacheOnSignal(ctx context.Context, sig <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if err := app.cache.Clear(ctx); err != nil {
				app.logger.Error("Could not clear cache", "error", err.Error())
				continue
			}
			app.logger.Info("Cache cleared", "trigger", "signal")
		}
	}
}
