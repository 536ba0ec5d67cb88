package llmpipe

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiCompleter calls the Gemini generateContent API.
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

// NewGeminiCompleter builds a completer from cfg.
func NewGeminiCompleter(ctx context.Context, cfg Config) (*GeminiCompleter, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &GeminiCompleter{
		client:      client,
		model:       cfg.ModelOrDefault(),
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
	}, nil
}

// Complete sends the user message with the system instruction and returns the first candidate.
func (c *GeminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		MaxOutputTokens:   c.maxTokens,
		Temperature:       genai.Ptr(c.temperature),
		CandidateCount:    1,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyCompletion)
	}

	return resp.Text(), nil
}
