package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"pillars/internal/chart"
	"pillars/internal/reaction"
)

// GeminiAdvisor implements Advisor using Gemini text generation.
type GeminiAdvisor struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
}

func NewGeminiAdvisor(ctx context.Context, apiKey, modelName string) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiAdvisor{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
	}, nil
}

func (a *GeminiAdvisor) Advise(ctx context.Context, c chart.Chart, r reaction.Report) (string, error) {
	return a.generate(ctx, a.promptBuilder.BuildReadingPrompt(c, r))
}

func (a *GeminiAdvisor) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return noAdvice, nil
	}
	return cleanMarkdownOutput(text), nil
}
