package llmpipe

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// OpenAICompleter calls the OpenAI chat completions API.
type OpenAICompleter struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAICompleter builds a completer from cfg. SDK retries are disabled:
// a failed call is reported, never repeated.
func NewOpenAICompleter(cfg Config, extra ...option.RequestOption) *OpenAICompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	opts = append(opts, extra...)

	return &OpenAICompleter{
		client:      openai.NewClient(opts...),
		model:       cfg.ModelOrDefault(),
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

// Complete sends one system and one user message and returns the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
		N:           openai.Int(1),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyCompletion)
	}

	return resp.Choices[0].Message.Content, nil
}
