package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/freightbite/freight-extract/internal/llm"
)

const (
	DefaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultMaxOutputTokens = 800
)

// ModelFallbacks are tried after the configured model; a 404 moves on to the next one.
var ModelFallbacks = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash-8b", "gemini-1.5-flash"}

type Config struct {
	APIKey          string // falls back to GOOGLE_API_KEY, then GEMINI_API_KEY
	BaseURL         string
	Model           string // tried first; empty means start with the fallbacks
	MaxOutputTokens int
	Timeout         time.Duration
}

// Client implements llm.Completer against generateContent.
type Client struct {
	cfg    Config
	models []string
	http   *http.Client
	log    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		models: modelList(cfg.Model),
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    logger,
	}
}

func modelList(first string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range append([]string{first}, ModelFallbacks...) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func (c *Client) Name() string { return "gemini" }

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// Complete walks the model list. A missing model (404) or an empty answer tries the next
// model; any other failure ends the attempt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": prompt}},
			},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": c.cfg.MaxOutputTokens,
		},
	}
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	var lastErr error
	for _, model := range c.models {
		endpoint := fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), model)
		raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
		if status == http.StatusNotFound {
			c.log.Info("llm.gemini.model_not_found", "model", model)
			lastErr = err
			continue
		}
		if err != nil {
			c.log.Error("llm.gemini.failed", "model", model, "error", err)
			return "", fmt.Errorf("gemini %s: %w", model, err)
		}

		var resp generateResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return "", fmt.Errorf("gemini %s: decode response: %w", model, err)
		}
		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = llm.ErrEmptyResponse
			continue
		}
		text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
		if text == "" {
			lastErr = llm.ErrEmptyResponse
			continue
		}
		c.log.Debug("llm.gemini.ok", "model", model, "finish_reason", resp.Candidates[0].FinishReason)
		return text, nil
	}

	c.log.Warn("llm.gemini.exhausted", "tried", len(c.models), "error", lastErr)
	if lastErr == nil || errors.Is(lastErr, llm.ErrEmptyResponse) {
		return "", llm.ErrEmptyResponse
	}
	return "", fmt.Errorf("gemini: tried %d models: %w", len(c.models), lastErr)
}
