package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/freightbite/freight-extract/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir string

	PSM int // page segmentation mode, default 6 (uniform block of text)
	OEM int // 1 = LSTM; leave 0 to use default

	// MinTextChars is how many non-space characters a text layer needs before OCR is skipped.
	MinTextChars int
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TXT
	Method     string // "pdf-text" | "pdftotext" | "pdf-ocr" | "image-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// Extractor turns one document file into text.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, execRunner{}, logger)
}

// NewExtractorWithRunner is NewExtractor with a custom command runner.
func NewExtractorWithRunner(cfg Config, r Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 20
	}
	return &Extractor{cfg: cfg, runner: r, logger: logger}
}

// ErrUnsupported is returned for extensions Extract does not handle.
var ErrUnsupported = errors.New("unsupported file type")

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.TXT:
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("ocr.extract.unsupported", "path", path, "ext", ext)
		return ExtractionResult{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	res.Duration = time.Since(start)
	if err == nil {
		e.logger.Info("ocr.extract.ok",
			"path", path,
			"method", res.Method,
			"pages", res.Pages,
			"text_len", len(res.Text),
			"elapsed_ms", res.Duration.Milliseconds(),
		)
	}
	return res, err
}

func (e *Extractor) extractPlain(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TXT}, err
	}
	return ExtractionResult{
		Text:       Normalize(string(b)),
		Pages:      1,
		SourceType: constants.TXT,
		Method:     "plain-text",
	}, nil
}
