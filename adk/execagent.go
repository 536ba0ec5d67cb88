package adk

import (
	"context"
	"fmt"

	"github.com/metalagman/llmpipe"
)

// ExecAgent is a SolverAgent whose answers come from an external bridge process.
type ExecAgent struct {
	*SolverAgent
	process *llmpipe.Process
}

// NewExecAgent starts cmd as a bridge and wraps it as an agent. The process
// lives until Close, so one agent serves many invocations.
func NewExecAgent(
	ctx context.Context,
	name string,
	description string,
	cmd []string,
	processOpts []llmpipe.ProcessOption,
	setters ...OptSolverAgentOptionsSetter,
) (*ExecAgent, error) {
	p, err := llmpipe.StartProcess(ctx, cmd, processOpts...)
	if err != nil {
		return nil, fmt.Errorf("start bridge: %w", err)
	}

	sa, err := NewSolverAgent(name, description, llmpipe.NewProcessSolver(p, name), setters...)
	if err != nil {
		_ = p.Close()

		return nil, err
	}

	return &ExecAgent{SolverAgent: sa, process: p}, nil
}

// Close stops the bridge process.
func (a *ExecAgent) Close() error {
	return a.process.Close()
}
