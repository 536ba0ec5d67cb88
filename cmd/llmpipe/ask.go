package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/metalagman/llmpipe"
	"github.com/spf13/cobra"
)

type askOptions struct {
	useTTY       bool
	readyTimeout time.Duration
}

func newAskCmd(a *app) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask -- <bridge cmd>",
		Short: "Start a bridge process and relay stdin lines to it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, a, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.useTTY, "tty", false, "run the bridge in a pseudo-terminal")
	cmd.Flags().DurationVar(&opts.readyTimeout, "ready-timeout", llmpipe.DefaultReadyTimeout, "wait limit for the READY handshake")

	return cmd
}

func runAsk(cmd *cobra.Command, a *app, argv []string, opts *askOptions) error {
	p, err := llmpipe.StartProcess(
		cmd.Context(),
		argv,
		llmpipe.WithTTY(opts.useTTY),
		llmpipe.WithReadyTimeout(opts.readyTimeout),
		llmpipe.WithStderr(cmd.ErrOrStderr()),
		llmpipe.WithProcessLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("start bridge: %w", err)
	}

	relayErr := relay(cmd, p)
	closeErr := p.Close()

	return errors.Join(relayErr, closeErr)
}

func relay(cmd *cobra.Command, p *llmpipe.Process) error {
	sc := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.EqualFold(line, llmpipe.DefaultExitCommand) {
			return nil
		}

		answer, err := p.Ask(cmd.Context(), line)

		var answerErr *llmpipe.AnswerError

		switch {
		case errors.As(err, &answerErr):
			answer = llmpipe.ErrorPrefix + answerErr.Message
		case err != nil:
			return fmt.Errorf("ask: %w", err)
		}

		if _, err := fmt.Fprintln(out, answer); err != nil {
			return fmt.Errorf("write answer: %w", err)
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	return nil
}
