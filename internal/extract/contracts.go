package extract

import (
	"context"
	"errors"
	"time"

	"github.com/freightbite/freight-extract/internal/entity"
)

// ErrNoResult means a strategy produced nothing usable and the caller should fall back.
var ErrNoResult = errors.New("extract: no result")

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE" | "TXT"
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Duration   time.Duration
	Warnings   []string
}

// RecordExtractor is Stage 2: text -> ExtractedRecord (regex rules or LLM).
// Implementations return ErrNoResult (possibly wrapped) when they have nothing to offer.
type RecordExtractor interface {
	ExtractRecord(ctx context.Context, text string) (*entity.ExtractedRecord, error)
}
