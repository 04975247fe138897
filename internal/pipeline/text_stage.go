package processor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/extract"
	"github.com/freightbite/freight-extract/internal/ocr"
)

// TextStage turns a file on disk into normalized text.
type TextStage struct {
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewTextStage(tx extract.TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{TextExtractor: tx, Logger: logger}
}

// Run checks the extension and recognizes the text of path. Unknown extensions fail
// with ocr.ErrUnsupported before any work is done.
func (s *TextStage) Run(ctx context.Context, path string) (string, extract.TextExtractionResult, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		s.Logger.Warn("pipeline.text.unsupported", "path", path)
		return "", extract.TextExtractionResult{}, ocr.ErrUnsupported
	}

	res, err := s.TextExtractor.Extract(ctx, path)
	if err != nil {
		s.Logger.Error("pipeline.text.failed", "path", path, "format", format, "error", err)
		return format, res, fmt.Errorf("text extraction: %w", err)
	}
	s.Logger.Info("pipeline.text.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return format, res, nil
}
