// Package adk exposes llmpipe solvers as ADK agents.
package adk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/metalagman/llmpipe"
	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	// ChoiceInputSchema describes JSON input accepted by NewChoiceAgent.
	ChoiceInputSchema = `{"type":"object","properties":{"prompt":{"type":"string"}},"required":["prompt"]}`
	// BlankInputSchema describes JSON input accepted by NewBlankAgent.
	BlankInputSchema = `{"type":"object","properties":{` +
		`"length":{"type":"integer","minimum":0},` +
		`"first_letter":{"type":"string","minLength":1,"maxLength":1},` +
		`"hint":{"type":"string"}},` +
		`"required":["length","first_letter","hint"]}`
)

var (
	// ErrInputSchemaInvalid indicates JSON input that does not satisfy the agent's schema.
	ErrInputSchemaInvalid = errors.New("input does not match schema")
	// ErrEmptyAnswer indicates the solver produced no text.
	ErrEmptyAnswer = errors.New("empty answer")
)

// SolverAgent answers each user message with one solver call.
type SolverAgent struct {
	agent.Agent
	solver llmpipe.Solver
	opts   SolverAgentOptions
}

// NewSolverAgent wraps solver as an ADK agent.
func NewSolverAgent(
	name string,
	description string,
	solver llmpipe.Solver,
	setters ...OptSolverAgentOptionsSetter,
) (*SolverAgent, error) {
	if solver == nil {
		return nil, fmt.Errorf("invalid options: solver is required")
	}

	opts := NewSolverAgentOptions(name, description, setters...)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	a := &SolverAgent{solver: solver, opts: opts}

	ag, err := agent.New(agent.Config{
		Name:        a.opts.name,
		Description: a.opts.description,
		Run:         a.Run,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	a.Agent = ag

	return a, nil
}

// NewChoiceAgent wraps a multiple-choice solver and accepts {"prompt": "..."} input.
func NewChoiceAgent(solver *llmpipe.ChoiceSolver) (*SolverAgent, error) {
	return NewSolverAgent(
		"ChoiceAgent",
		"Answers multiple-choice questions with a single letter A-E or Unknown",
		solver,
		WithSolverAgentInputSchema(ChoiceInputSchema),
		WithSolverAgentEncoder(encodeChoice),
	)
}

// NewBlankAgent wraps a fill-in-the-blank solver and accepts
// {"length": 5, "first_letter": "c", "hint": "happy"} input.
func NewBlankAgent(solver *llmpipe.BlankSolver) (*SolverAgent, error) {
	return NewSolverAgent(
		"BlankAgent",
		"Guesses a word from its length, first letter and a hint",
		solver,
		WithSolverAgentInputSchema(BlankInputSchema),
		WithSolverAgentEncoder(encodeBlank),
	)
}

// Run implements the agent.Agent interface.
func (a *SolverAgent) Run(ctx agent.InvocationContext) iter.Seq2[*session.Event, error] {
	return func(yield func(*session.Event, error) bool) {
		line, err := a.inputLine(getUserInput(ctx))
		if err != nil {
			yield(nil, err)

			return
		}

		answer, err := a.solver.Solve(context.Context(ctx), line)
		if err != nil {
			yield(nil, fmt.Errorf("%s solve: %w", a.solver.Name(), err))

			return
		}

		if answer == "" {
			yield(nil, ErrEmptyAnswer)

			return
		}

		event := session.NewEvent(ctx.InvocationID())
		event.LLMResponse.Content = genai.NewContentFromText(answer, genai.RoleModel)
		event.Author = a.opts.name

		if !yield(event, nil) {
			return
		}
	}
}

func getUserInput(ctx agent.InvocationContext) string {
	userContent := ctx.UserContent()
	if userContent != nil && len(userContent.Parts) > 0 {
		return userContent.Parts[0].Text
	}

	return ""
}

// inputLine returns the bridge line for raw user text. JSON objects go through
// the schema and encoder when configured; anything else is used as a line.
func (a *SolverAgent) inputLine(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if a.opts.inputSchema == "" || !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	if err := validateInputSchema(a.opts.inputSchema, trimmed); err != nil {
		return "", fmt.Errorf("validate input: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return "", fmt.Errorf("parse input JSON: %w", err)
	}

	line, err := a.opts.encoder(obj)
	if err != nil {
		return "", fmt.Errorf("encode input: %w", err)
	}

	return line, nil
}

func validateInputSchema(schema, doc string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate input schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, err := range result.Errors() {
		errs = append(errs, err.String())
	}

	return fmt.Errorf("%w: %s", ErrInputSchemaInvalid, strings.Join(errs, "; "))
}

func encodeChoice(obj map[string]any) (string, error) {
	prompt, ok := obj["prompt"].(string)
	if !ok {
		return "", fmt.Errorf("prompt is not a string")
	}

	if strings.ContainsAny(prompt, "\r\n") {
		return "", llmpipe.ErrMultilinePrompt
	}

	return strings.TrimSpace(prompt), nil
}

func encodeBlank(obj map[string]any) (string, error) {
	length, ok := obj["length"].(float64)
	if !ok {
		return "", fmt.Errorf("length is not a number")
	}

	letter, _ := obj["first_letter"].(string)
	hint, _ := obj["hint"].(string)

	p := llmpipe.BlankPrompt{
		Length:      fmt.Sprintf("%d", int64(length)),
		FirstLetter: letter,
		Hint:        hint,
	}

	return p.Line(), nil
}
