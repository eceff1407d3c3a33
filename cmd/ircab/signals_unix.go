//go:build unix

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/ircab/engine"
)

// handleControlSignals reloads the IR on SIGHUP and toggles the filter on
// SIGUSR1 until ctx is done or the returned stop function is called.
func handleControlSignals(ctx context.Context, eng *engine.Engine, logger *slog.Logger) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					logger.Info("received reload signal")
					_ = eng.Reload()
				case syscall.SIGUSR1:
					logFilterState(logger, eng.ToggleFilter())
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
