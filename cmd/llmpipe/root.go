package main

import (
	"context"

	"github.com/metalagman/llmpipe"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds state shared by all subcommands of one root command.
type app struct {
	v          *viper.Viper
	configFile string
	logLevel   string
	logFormat  string
	logger     zerolog.Logger

	newCompleter func(ctx context.Context, cfg llmpipe.Config) (llmpipe.Completer, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{
		v:            viper.New(),
		logger:       zerolog.Nop(),
		newCompleter: llmpipe.NewCompleter,
	})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "llmpipe",
		Short:         "Answer line-delimited prompts with a hosted LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(a.logLevel, a.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.logger = logger

			return nil
		},
	}

	addConfigFlags(root, a)

	root.AddCommand(newChoiceCmd(a))
	root.AddCommand(newBlankCmd(a))
	root.AddCommand(newAskCmd(a))
	root.AddCommand(newQuickstartCmd())

	return root
}
