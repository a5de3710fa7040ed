package advisor

import (
	"context"
	"fmt"
	"strings"
)

type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

func NewAdvisor(ctx context.Context, opts Options) (Advisor, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGeminiAdvisor(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAIAdvisor(opts.APIKey, opts.Model, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported advisor provider: %s", opts.Provider)
	}
}
