package llmpipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Request is one completion call: a fixed system instruction and the user message.
type Request struct {
	System string
	User   string
}

// Completer sends a request to a remote model and returns the first candidate's text, trimmed.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// NewCompleter builds the completer for cfg.Provider. The credential is
// resolved here, so a missing key fails before any line is served.
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: provider %s", ErrMissingAPIKey, cfg.Provider)
	}

	var (
		c   Completer
		err error
	)

	switch cfg.Provider {
	case ProviderOpenAI:
		c = NewOpenAICompleter(cfg)
	case ProviderGemini:
		c, err = NewGeminiCompleter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.Timeout > 0 {
		c = WithTimeout(c, cfg.Timeout)
	}

	if cfg.RequestsPerMinute > 0 {
		c = WithRateLimit(c, cfg.RequestsPerMinute)
	}

	return c, nil
}

// WithTimeout bounds every call of next by d.
func WithTimeout(next Completer, d time.Duration) Completer {
	return CompleterFunc(func(ctx context.Context, req Request) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return next.Complete(ctx, req)
	})
}

// WithRateLimit spaces calls of next to at most perMinute per minute.
func WithRateLimit(next Completer, perMinute int) Completer {
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)

	return CompleterFunc(func(ctx context.Context, req Request) (string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		return next.Complete(ctx, req)
	})
}

// complete runs one call and wraps any failure in *RemoteError.
func complete(ctx context.Context, c Completer, req Request) (string, error) {
	out, err := c.Complete(ctx, req)
	if err != nil {
		return "", &RemoteError{Err: err}
	}

	return strings.TrimSpace(out), nil
}
