package main

import (
	"fmt"

	"github.com/metalagman/llmpipe"
	"github.com/spf13/cobra"
)

type solverFactory func(c llmpipe.Completer, cfg llmpipe.Config) llmpipe.Solver

// serve builds the completer once, then runs the line loop on the command's streams.
// Configuration errors are reported before the handshake.
func serve(cmd *cobra.Command, a *app, newSolver solverFactory) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	completer, err := a.newCompleter(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("create completer: %w", err)
	}

	solver := newSolver(completer, cfg)

	a.logger.Debug().
		Str("variant", solver.Name()).
		Str("provider", cfg.Provider).
		Str("model", cfg.ModelOrDefault()).
		Int("max_tokens", cfg.MaxTokens).
		Msg("starting bridge")

	bridge := llmpipe.NewBridge(solver, llmpipe.WithLogger(a.logger))

	return bridge.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
