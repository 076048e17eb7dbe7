package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trial-hand/config"
)

func testClient(baseURL string) *Client {
	cfg := &config.Config{
		OpenAIBaseURL: baseURL,
		OpenAIKey:     "test-key",
		OpenAIModel:   "gpt-4o",
	}
	return NewClient(cfg, zap.NewNop())
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestCompleteRoundTrip(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(completionResponse("  An answer with whitespace.  \n"))
	}))
	defer server.Close()

	c := testClient(server.URL)
	got, err := c.Complete(context.Background(), CompletionOptions{
		SystemPrompt: "You are helpful.",
		Prompt:       "Say something.",
		Temperature:  0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "An answer with whitespace.", got)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "You are helpful.", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.InDelta(t, 0.3, gotReq.Temperature, 0.001)
}

func TestCompleteOmitsEmptySystemPrompt(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(completionResponse("ok"))
	}))
	defer server.Close()

	c := testClient(server.URL)
	_, err := c.Complete(context.Background(), CompletionOptions{Prompt: "Hi"})
	require.NoError(t, err)

	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestCompleteNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(server.URL)
	_, err := c.Complete(context.Background(), CompletionOptions{Prompt: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	c := testClient(server.URL)
	_, err := c.Complete(context.Background(), CompletionOptions{Prompt: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
