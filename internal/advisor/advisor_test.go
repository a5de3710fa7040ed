package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pillars/internal/chart"
	"pillars/internal/reaction"
	"pillars/internal/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzed(t *testing.T, year, month, day, hour string) (chart.Chart, reaction.Report) {
	t.Helper()
	reg := symbol.Default()
	c, err := chart.FromGanZhi(reg, year, month, day, hour)
	require.NoError(t, err)
	r, err := reaction.NewAnalyzer(reg, reaction.DefaultOptions()).Analyze(c)
	require.NoError(t, err)
	return c, r
}

func TestPromptBuilder_ReadingPrompt(t *testing.T) {
	c, r := analyzed(t, "甲子", "丙寅", "甲辰", "丁卯")

	pb := &PromptBuilder{}
	prompt := pb.BuildReadingPrompt(c, r)
	assert.Contains(t, prompt, "甲子 丙寅 甲辰 丁卯")
	assert.Contains(t, prompt, "- Directional bureau between month, day, hour (寅辰卯), element Wood, transforms")
	assert.Contains(t, prompt, "Wood ×1")
	assert.NotContains(t, prompt, "Overridden")

	pb.IncludeSuppressed = true
	prompt = pb.BuildReadingPrompt(c, r)
	assert.Contains(t, prompt, "### Overridden by stronger relationships")
	assert.Contains(t, prompt, "- Harm between day, hour (辰卯), suppressed")
}

func TestPromptBuilder_NoRelationships(t *testing.T) {
	c, _ := analyzed(t, "甲子", "甲子", "甲子", "甲子")
	prompt := (&PromptBuilder{}).BuildReadingPrompt(c, reaction.Report{Chart: c.Key()})
	assert.Contains(t, prompt, "- none")
	assert.Contains(t, prompt, "No transformations in effect.")
}

func TestOpenAIAdvisor_Advise(t *testing.T) {
	var got openAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + "```markdown\\nWood leads.\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	c, r := analyzed(t, "甲子", "丙寅", "甲辰", "丁卯")
	text, err := NewOpenAIAdvisor("secret", "gpt-test", srv.URL).Advise(context.Background(), c, r)
	require.NoError(t, err)
	assert.Equal(t, "Wood leads.", text)

	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "甲子 丙寅 甲辰 丁卯")
}

func TestOpenAIAdvisor_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, r := analyzed(t, "甲子", "己丑", "丙寅", "辛卯")
	ctx := context.Background()

	_, err := NewOpenAIAdvisor("", "gpt-test", srv.URL).Advise(ctx, c, r)
	assert.ErrorContains(t, err, "api key is required")

	_, err = NewOpenAIAdvisor("secret", "gpt-test", srv.URL).Advise(ctx, c, r)
	assert.ErrorContains(t, err, "(429)")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestOpenAIAdvisor_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, r := analyzed(t, "甲子", "己丑", "丙寅", "辛卯")
	text, err := NewOpenAIAdvisor("secret", "gpt-test", srv.URL+"/v1").Advise(context.Background(), c, r)
	require.NoError(t, err)
	assert.Equal(t, noAdvice, text)
}

func TestChatEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", chatEndpoint(""))
	assert.Equal(t, "http://localhost:8080/v1/chat/completions", chatEndpoint("http://localhost:8080"))
	assert.Equal(t, "http://localhost:8080/v1/chat/completions", chatEndpoint("http://localhost:8080/v1/"))
	assert.Equal(t, "http://x/chat/completions", chatEndpoint("http://x/chat/completions"))
}

func TestNewAdvisor_UnknownProvider(t *testing.T) {
	_, err := NewAdvisor(context.Background(), Options{Provider: "ollama"})
	assert.ErrorContains(t, err, "unsupported advisor provider")

	a, err := NewAdvisor(context.Background(), Options{Provider: "OpenAI", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIAdvisor{}, a)
}

func TestCleanMarkdownOutput(t *testing.T) {
	assert.Equal(t, "text", cleanMarkdownOutput("```markdown\ntext\n```"))
	assert.Equal(t, "text", cleanMarkdownOutput("```\ntext\n```"))
	assert.Equal(t, "text", cleanMarkdownOutput("  text "))
}
