package llmpipe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultHandshake is written before the first line is read.
	DefaultHandshake = "READY"
	// DefaultExitCommand ends the loop, compared case-insensitively.
	DefaultExitCommand = "exit"
	// ErrorPrefix starts every error line.
	ErrorPrefix = "Error: "
)

// Bridge reads prompts line by line and writes exactly one answer line per prompt.
type Bridge struct {
	solver    Solver
	logger    zerolog.Logger
	handshake string
	exit      string
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the logger. Logs never go to the answer stream.
func WithLogger(l zerolog.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = l
	}
}

// WithHandshake overrides the readiness line.
func WithHandshake(s string) BridgeOption {
	return func(b *Bridge) {
		b.handshake = s
	}
}

// WithExitCommand overrides the termination command.
func WithExitCommand(s string) BridgeOption {
	return func(b *Bridge) {
		b.exit = s
	}
}

// NewBridge returns a bridge answering lines with solver.
func NewBridge(solver Solver, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		solver:    solver,
		logger:    zerolog.Nop(),
		handshake: DefaultHandshake,
		exit:      DefaultExitCommand,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Serve writes the handshake, then answers lines from in until end of input,
// the exit command, or ctx is done. End of input and the exit command return nil.
func (b *Bridge) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)

	if err := writeLine(w, b.handshake); err != nil {
		return fmt.Errorf("write handshake: %w", err)
	}

	b.logger.Debug().Str("variant", b.solver.Name()).Msg("bridge ready")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := r.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read line: %w", readErr)
		}

		if raw == "" && readErr != nil {
			b.logger.Debug().Msg("end of input")

			return nil
		}

		line := strings.TrimSpace(raw)
		if strings.EqualFold(line, b.exit) {
			b.logger.Debug().Msg("exit command received")

			return nil
		}

		if err := writeLine(w, b.answer(ctx, line)); err != nil {
			return fmt.Errorf("write answer: %w", err)
		}

		if readErr != nil {
			b.logger.Debug().Msg("end of input")

			return nil
		}
	}
}

func (b *Bridge) answer(ctx context.Context, line string) string {
	start := time.Now()
	log := b.logger.With().
		Str("request_id", uuid.NewString()).
		Str("variant", b.solver.Name()).
		Logger()

	out, err := b.solver.Solve(ctx, line)

	switch {
	case err == nil:
		log.Debug().Dur("dur", time.Since(start)).Str("answer", out).Msg("answered")

		return out
	case errors.Is(err, ErrRemoteCall):
		log.Warn().Err(err).Dur("dur", time.Since(start)).Msg("remote call failed")
	default:
		log.Info().Err(err).Str("line", line).Msg("rejected input")
	}

	return ErrorPrefix + err.Error()
}

// writeLine writes s as one line and flushes. Embedded line breaks are folded
// into spaces so that every answer stays on a single line.
func writeLine(w *bufio.Writer, s string) error {
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }), " ")

	if _, err := w.WriteString(s + "\n"); err != nil {
		return err
	}

	return w.Flush()
}
