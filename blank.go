package llmpipe

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlankSystemPrompt is the instruction sent with every fill-in-the-blank question.
const BlankSystemPrompt = "Your goal is to guess a single word based on the given length, " +
	"first letter, and hint word. Provide only the word as the answer."

// BlankPrompt is a parsed "<length>,<first_letter>,<hint_word>" line.
type BlankPrompt struct {
	Length      string
	FirstLetter string
	Hint        string
}

// ParseBlank splits and validates a fill-in-the-blank line.
func ParseBlank(line string) (BlankPrompt, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return BlankPrompt{}, ErrInvalidFormat
	}

	p := BlankPrompt{
		Length:      strings.TrimSpace(parts[0]),
		FirstLetter: strings.TrimSpace(parts[1]),
		Hint:        strings.TrimSpace(parts[2]),
	}

	if !isDigits(p.Length) {
		return BlankPrompt{}, ErrInvalidLength
	}

	if utf8.RuneCountInString(p.FirstLetter) != 1 {
		return BlankPrompt{}, ErrInvalidFirstLetter
	}

	if r, _ := utf8.DecodeRuneInString(p.FirstLetter); !unicode.IsLetter(r) {
		return BlankPrompt{}, ErrInvalidFirstLetter
	}

	return p, nil
}

// Question renders the user message for the model.
func (p BlankPrompt) Question() string {
	return fmt.Sprintf(
		"What is a %s-letter word that starts with '%s' and means something similar to '%s'?",
		p.Length, p.FirstLetter, p.Hint,
	)
}

// Line renders p back into the input line format.
func (p BlankPrompt) Line() string {
	return p.Length + "," + p.FirstLetter + "," + p.Hint
}

// BlankSolver guesses a word from length, first letter and hint.
type BlankSolver struct {
	completer Completer
}

// NewBlankSolver returns a solver sending questions through c.
func NewBlankSolver(c Completer) *BlankSolver {
	return &BlankSolver{completer: c}
}

func (s *BlankSolver) Name() string { return "blank" }

// Request validates line and builds the completion request.
func (s *BlankSolver) Request(line string) (Request, error) {
	p, err := ParseBlank(line)
	if err != nil {
		return Request{}, err
	}

	return Request{System: BlankSystemPrompt, User: p.Question()}, nil
}

// Solve returns the model's guess as is. Length and letter constraints are not re-checked.
func (s *BlankSolver) Solve(ctx context.Context, line string) (string, error) {
	req, err := s.Request(line)
	if err != nil {
		return "", err
	}

	return complete(ctx, s.completer, req)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
