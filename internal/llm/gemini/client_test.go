package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/llm"
	"github.com/freightbite/freight-extract/internal/llm/gemini"
)

func successBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": "STOP",
		}},
	}
}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, p)
}

func TestComplete_MissingModelFallsThrough(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		if strings.Contains(r.URL.Path, "gemini-9-pro") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gen := body["generationConfig"].(map[string]any)
		assert.Equal(t, float64(800), gen["maxOutputTokens"])
		_ = json.NewEncoder(w).Encode(successBody(`{"origin_city":"WAVERLY"}`))
	}))
	defer srv.Close()

	c := gemini.NewClient(gemini.Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-9-pro"}, nil)
	out, err := c.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"origin_city":"WAVERLY"}`, out)
	assert.Equal(t, []string{
		"/gemini-9-pro:generateContent",
		"/gemini-2.5-flash:generateContent",
	}, rec.paths)
}

func TestComplete_OtherErrorStops(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := gemini.NewClient(gemini.Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.Len(t, rec.paths, 1)
}

func TestComplete_AllEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := gemini.NewClient(gemini.Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestComplete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := gemini.NewClient(gemini.Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), "prompt")
	var rl *llm.RateLimitError
	assert.ErrorAs(t, err, &rl)
}
