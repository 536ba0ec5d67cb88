package main

import (
	"github.com/metalagman/llmpipe"
	"github.com/spf13/cobra"
)

func newBlankCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "blank",
		Short: "Guess words from length,first_letter,hint_word lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd, a, func(c llmpipe.Completer, _ llmpipe.Config) llmpipe.Solver {
				return llmpipe.NewBlankSolver(c)
			})
		},
	}
}
