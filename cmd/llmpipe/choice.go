package main

import (
	"github.com/metalagman/llmpipe"
	"github.com/spf13/cobra"
)

func newChoiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "choice",
		Short: "Answer multiple-choice questions with A-E or Unknown, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.v.BindPFlag("match", cmd.Flags().Lookup("match")); err != nil {
				return err
			}

			return serve(cmd, a, func(c llmpipe.Completer, cfg llmpipe.Config) llmpipe.Solver {
				return llmpipe.NewChoiceSolver(c, cfg.Match)
			})
		},
	}

	cmd.Flags().String("match", llmpipe.MatchSubstring, "label matching: substring or token")

	return cmd
}
