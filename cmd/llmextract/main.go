// Command llmextract runs one LLM provider over a text file and prints the record.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/freightbite/freight-extract/internal/app"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/llm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llmextract <text-file> [times]")
		os.Exit(2)
	}
	times := 1
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	text, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read text file", "path", os.Args[1], "error", err)
		os.Exit(2)
	}

	v, err := common.NewViper()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(2)
	}
	cfg := common.LoadConfig(v)
	if cfg.LLMKey() == "" {
		logger.Error("no API key for provider", "provider", cfg.LLM.Provider)
		os.Exit(2)
	}

	ex, err := llm.NewExtractor(app.Completer(cfg, logger), logger)
	if err != nil {
		logger.Error("build extractor", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failures := 0
	for i := 1; i <= times; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		start := time.Now()
		rec, err := ex.ExtractRecord(ctx, string(text))
		cancel()
		if err != nil {
			failures++
			logger.Error("llm extract failed", "iteration", i, "provider", cfg.LLM.Provider, "error", err)
			continue
		}
		logger.Info("llm extract ok", "iteration", i, "duration_ms", time.Since(start).Milliseconds())
		_ = enc.Encode(rec)
	}
	if failures == times {
		os.Exit(1)
	}
}
