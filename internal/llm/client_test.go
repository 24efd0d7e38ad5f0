package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odysseus0/aidigest/internal/config"
)

func TestOpenAIClientComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  summary text \n"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "gpt-4o-mini", openaioption.WithBaseURL(srv.URL))
	text, err := c.Complete(context.Background(), Prompt{System: "sys", User: "usr", MaxTokens: 123})
	require.NoError(t, err)
	assert.Equal(t, "summary text", text)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 123, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.Header.Get("Authorization"), "empty") {
			_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("sk-bad", "m", openaioption.WithBaseURL(srv.URL)).Complete(context.Background(), Prompt{User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai API error")

	_, err = NewOpenAIClient("empty", "m", openaioption.WithBaseURL(srv.URL)).Complete(context.Background(), Prompt{User: "x"})
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicClientComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-haiku-4-5","content":[{"type":"text","text":"part one, "},{"type":"text","text":"part two"}],"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":3,"output_tokens":4}}`)
	}))
	defer srv.Close()

	c := NewAnthropicClient("ak-test", "claude-haiku-4-5", anthropicoption.WithBaseURL(srv.URL))
	text, err := c.Complete(context.Background(), Prompt{System: "sys", User: "usr"})
	require.NoError(t, err)
	assert.Equal(t, "part one, part two", text)

	assert.Equal(t, "claude-haiku-4-5", got["model"])
	assert.EqualValues(t, defaultAnthropicMaxTokens, got["max_tokens"])
	system, ok := got["system"].([]any)
	require.True(t, ok)
	assert.Equal(t, "sys", system[0].(map[string]any)["text"])
}

func TestNewCompleter(t *testing.T) {
	cfg := config.Default()

	c, err := NewCompleter(cfg, "k")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	cfg.Provider = config.ProviderAnthropic
	c, err = NewCompleter(cfg, "k")
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)

	cfg.Provider = "llama"
	_, err = NewCompleter(cfg, "k")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
