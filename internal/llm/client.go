// Package llm turns feed entries into digest records by prompting a hosted
// language model once per facet.
package llm

import (
	"context"
	"errors"
	"fmt"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"

	"github.com/odysseus0/aidigest/internal/config"
)

var ErrEmptyResponse = errors.New("empty response")

// Prompt is a single system+user exchange with an output budget.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// NewCompleter builds the client for cfg.Provider, pointed at cfg.LLMBaseURL
// when one is set.
func NewCompleter(cfg config.Config, apiKey string) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		var opts []openaioption.RequestOption
		if cfg.LLMBaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(cfg.LLMBaseURL))
		}
		return NewOpenAIClient(apiKey, cfg.Model, opts...), nil
	case config.ProviderAnthropic:
		var opts []anthropicoption.RequestOption
		if cfg.LLMBaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(cfg.LLMBaseURL))
		}
		return NewAnthropicClient(apiKey, cfg.Model, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
	}
}
