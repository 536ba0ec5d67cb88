package llmpipe

import (
	"context"
	"slices"
	"strings"
	"unicode"
)

// ChoiceSystemPrompt is the instruction sent with every multiple-choice question.
const ChoiceSystemPrompt = "You are an assistant that provides concise answers."

// UnknownAnswer is written when no label can be found in the completion.
const UnknownAnswer = "Unknown"

// ChoiceLabels is the label set in scan order. The first label found wins.
var ChoiceLabels = []string{"A", "B", "C", "D", "E"}

// ChoiceSolver answers multiple-choice questions with one of ChoiceLabels or UnknownAnswer.
type ChoiceSolver struct {
	completer Completer
	match     string
}

// NewChoiceSolver returns a solver using match mode MatchSubstring or MatchToken.
// Any other value falls back to MatchSubstring.
func NewChoiceSolver(c Completer, match string) *ChoiceSolver {
	if match != MatchToken {
		match = MatchSubstring
	}

	return &ChoiceSolver{completer: c, match: match}
}

func (s *ChoiceSolver) Name() string { return "choice" }

// Request passes the question through unchanged.
func (s *ChoiceSolver) Request(line string) Request {
	return Request{System: ChoiceSystemPrompt, User: line}
}

// Solve asks the model and normalizes the reply to a label.
func (s *ChoiceSolver) Solve(ctx context.Context, line string) (string, error) {
	out, err := complete(ctx, s.completer, s.Request(line))
	if err != nil {
		return "", err
	}

	return NormalizeChoice(out, line, s.match), nil
}

// NormalizeChoice strips an echoed prompt from the completion and maps the rest
// onto a label. Labels are scanned in ChoiceLabels order. A standalone label
// always wins; in substring mode a label inside an ordinary word is accepted
// when no standalone label exists ("DECIDE NOW" yields C). Token mode never
// looks inside words.
func NormalizeChoice(completion, prompt, match string) string {
	text := strings.TrimSpace(completion)
	if prompt != "" && len(text) >= len(prompt) && strings.EqualFold(text[:len(prompt)], prompt) {
		text = strings.TrimSpace(text[len(prompt):])
	}

	text = strings.ToUpper(text)

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, label := range ChoiceLabels {
		if slices.Contains(tokens, label) {
			return label
		}
	}

	if match == MatchToken {
		return UnknownAnswer
	}

	for _, label := range ChoiceLabels {
		if strings.Contains(text, label) {
			return label
		}
	}

	return UnknownAnswer
}
