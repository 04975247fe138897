// Command ocrtext prints the recognized text of one document.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/freightbite/freight-extract/internal/app"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "ocrtext <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	v, err := common.NewViper()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(2)
	}
	cfg := common.LoadConfig(v)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ex := ocr.NewExtractor(app.OCRConfig(cfg), logger)
	res, err := ex.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	fmt.Println(res.Text)
}
