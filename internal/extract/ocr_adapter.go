package extract

import (
	"context"
	"log/slog"

	"github.com/freightbite/freight-extract/internal/ocr"
)

// OCRAdapter exposes ocr.Extractor as a TextExtractor.
type OCRAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path)
	if err == nil && len(r.Warnings) > 0 {
		a.logger.Warn("extract.text.warnings", "path", path, "count", len(r.Warnings))
	}
	return TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
	}, err
}
