package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/llm"
	"github.com/freightbite/freight-extract/internal/llm/openai"
)

func newTestClient(url string) *openai.Client {
	return openai.NewClient(openai.Config{APIKey: "test-key", BaseURL: url}, nil)
}

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, openai.DefaultModel, body["model"])
		assert.Equal(t, float64(800), body["max_tokens"])
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "hello", msgs[0].(map[string]any)["content"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": ` {"total_rate": 1000} `}}},
		})
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"total_rate": 1000}`, out)
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestComplete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "20")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "hello")
	var rl *llm.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 20, int(rl.RetryAfter.Seconds()))
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
