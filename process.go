package llmpipe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	// DefaultReadyTimeout bounds the wait for the handshake line.
	DefaultReadyTimeout = 30 * time.Second

	closeGrace    = 5 * time.Second
	maxAnswerSize = 1 << 20
)

type processOptions struct {
	tty          bool
	readyTimeout time.Duration
	stderr       io.Writer
	dir          string
	env          []string
	logger       zerolog.Logger
}

// ProcessOption configures StartProcess.
type ProcessOption func(*processOptions)

// WithTTY runs the bridge in a pseudo-terminal instead of pipes.
func WithTTY(enabled bool) ProcessOption {
	return func(o *processOptions) {
		o.tty = enabled
	}
}

// WithReadyTimeout sets how long to wait for the handshake.
func WithReadyTimeout(d time.Duration) ProcessOption {
	return func(o *processOptions) {
		o.readyTimeout = d
	}
}

// WithStderr forwards the bridge's stderr to w.
func WithStderr(w io.Writer) ProcessOption {
	return func(o *processOptions) {
		o.stderr = w
	}
}

// WithDir sets the working directory of the bridge.
func WithDir(dir string) ProcessOption {
	return func(o *processOptions) {
		o.dir = dir
	}
}

// WithEnv sets the environment of the bridge. Nil inherits the current environment.
func WithEnv(env []string) ProcessOption {
	return func(o *processOptions) {
		o.env = env
	}
}

// WithProcessLogger sets the logger used for lifecycle events.
func WithProcessLogger(l zerolog.Logger) ProcessOption {
	return func(o *processOptions) {
		o.logger = l
	}
}

type lineResult struct {
	line string
	err  error
}

// Process is a running bridge driven over its line protocol.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	ptmx   *os.File
	lines  chan lineResult
	logger zerolog.Logger

	mu     sync.Mutex
	broken error
	closed bool
}

// StartProcess starts argv and waits for its handshake. ctx bounds the whole
// lifetime of the child, not only the start.
func StartProcess(ctx context.Context, argv []string, opts ...ProcessOption) (*Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("bridge command is empty")
	}

	o := processOptions{
		readyTimeout: DefaultReadyTimeout,
		stderr:       io.Discard,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = o.dir
	cmd.Env = o.env
	cmd.Stderr = o.stderr
	cmd.WaitDelay = closeGrace

	p := &Process{
		cmd:    cmd,
		lines:  make(chan lineResult),
		logger: o.logger.With().Str("bridge", argv[0]).Logger(),
	}

	var out io.Reader

	if o.tty {
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, fmt.Errorf("start pty: %w", err)
		}

		// Raw mode turns off echo and CRLF translation on the line stream.
		if _, err := term.MakeRaw(int(ptmx.Fd())); err != nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			_ = ptmx.Close()

			return nil, fmt.Errorf("raw pty: %w", err)
		}

		p.ptmx = ptmx
		p.stdin = ptmx
		out = ptmx
	} else {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %w", err)
		}

		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("cmd start: %w", err)
		}

		p.stdin = stdin
		out = stdout
	}

	go p.readLines(out)

	if err := p.waitReady(ctx, o.readyTimeout); err != nil {
		_ = p.kill()

		return nil, err
	}

	p.logger.Debug().Int("pid", cmd.Process.Pid).Bool("tty", o.tty).Msg("bridge ready")

	return p, nil
}

func (p *Process) readLines(r io.Reader) {
	defer close(p.lines)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxAnswerSize)

	for sc.Scan() {
		p.lines <- lineResult{line: strings.TrimRight(sc.Text(), "\r")}
	}

	err := sc.Err()
	if err == nil || p.ptmx != nil {
		// A pty reports EIO once the child is gone.
		err = ErrProcessClosed
	}

	p.lines <- lineResult{err: err}
}

func (p *Process) waitReady(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case res, ok := <-p.lines:
			if !ok || res.err != nil {
				return fmt.Errorf("%w: output closed before handshake", ErrNotReady)
			}

			if strings.TrimSpace(res.line) == DefaultHandshake {
				return nil
			}

			p.logger.Debug().Str("line", res.line).Msg("skipping output before handshake")
		case <-timer.C:
			return fmt.Errorf("%w: no handshake within %s", ErrNotReady, timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ask sends one prompt and returns the answer line. An "Error: " line is
// returned as *AnswerError. After a cancelled Ask the process is unusable.
func (p *Process) Ask(ctx context.Context, prompt string) (string, error) {
	if strings.ContainsAny(prompt, "\r\n") {
		return "", ErrMultilinePrompt
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return "", ErrProcessClosed
	}

	if p.broken != nil {
		return "", p.broken
	}

	if _, err := io.WriteString(p.stdin, prompt+"\n"); err != nil {
		p.broken = fmt.Errorf("write prompt: %w", err)

		return "", p.broken
	}

	select {
	case res, ok := <-p.lines:
		if !ok {
			p.broken = ErrProcessClosed

			return "", p.broken
		}

		if res.err != nil {
			p.broken = res.err

			return "", p.broken
		}

		line := strings.TrimSpace(res.line)
		if msg, found := strings.CutPrefix(line, ErrorPrefix); found {
			return "", &AnswerError{Message: msg}
		}

		return line, nil
	case <-ctx.Done():
		p.broken = fmt.Errorf("%w: abandoned answer: %v", ErrProcessClosed, ctx.Err())

		return "", ctx.Err()
	}
}

// Close sends the exit command and waits for the bridge to stop. A bridge that
// does not stop within a few seconds is killed.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	_, _ = io.WriteString(p.stdin, DefaultExitCommand+"\n")

	if p.ptmx == nil {
		_ = p.stdin.Close()
	}

	drained := make(chan struct{})

	go func() {
		for range p.lines {
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(closeGrace):
		p.logger.Warn().Msg("bridge ignored exit, killing")

		_ = p.cmd.Process.Kill()
	}

	err := p.cmd.Wait()

	if p.ptmx != nil {
		_ = p.ptmx.Close()
	}

	<-drained

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("bridge exit code %d: %w", exitErr.ExitCode(), err)
		}

		return fmt.Errorf("cmd wait: %w", err)
	}

	return nil
}

func (p *Process) kill() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	_ = p.cmd.Process.Kill()

	if p.ptmx != nil {
		_ = p.ptmx.Close()
	}

	go func() {
		for range p.lines {
		}
	}()

	return p.cmd.Wait()
}

// ProcessSolver answers lines by forwarding them to a running bridge.
type ProcessSolver struct {
	p    *Process
	name string
}

// NewProcessSolver returns a Solver backed by p. Closing p stays with the caller.
func NewProcessSolver(p *Process, name string) *ProcessSolver {
	return &ProcessSolver{p: p, name: name}
}

func (s *ProcessSolver) Name() string { return s.name }

// Solve sends line to the bridge. Rejections from the bridge come back as *AnswerError.
func (s *ProcessSolver) Solve(ctx context.Context, line string) (string, error) {
	return s.p.Ask(ctx, line)
}
