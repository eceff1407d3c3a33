//go:build !unix

package main

import (
	"context"
	"log/slog"

	"github.com/cwbudde/ircab/engine"
)

func handleControlSignals(context.Context, *engine.Engine, *slog.Logger) func() {
	return func() {}
}
