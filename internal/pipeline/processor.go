package processor

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/google/uuid"
)

// Options are per-run settings for ProcessFile.
type Options struct {
	UserID       string
	DocumentType constants.DocumentType
}

// Result is the outcome for one file. Extracted is set whenever extraction ran, even
// when the document could not be stored.
type Result struct {
	Filename   string                  `json:"filename"`
	DocumentID *uuid.UUID              `json:"document_id"`
	Extracted  *entity.ExtractedRecord `json:"extracted"`
	Error      *string                 `json:"error"`
}

// Err returns the result's error message, or "" on success.
func (r Result) Err() string { return entity.Deref(r.Error) }

// Processor coordinates text recognition, record extraction, derived metrics and
// persistence for a single file.
type Processor struct {
	Logger  *slog.Logger
	Text    *TextStage
	Extract *ExtractStage
	Persist *PersistStage // nil skips storage
}

func NewProcessor(logger *slog.Logger, text *TextStage, ex *ExtractStage, persist *PersistStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Extract: ex, Persist: persist}
}

// ProcessFile never returns a Go error for a per-file failure; the failure is carried in
// Result.Error so batch callers keep going.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts Options) Result {
	log := common.LoggerFromContext(ctx, p.Logger)
	res := Result{Filename: filepath.Base(path)}
	fail := func(err error) Result {
		msg := err.Error()
		res.Error = &msg
		return res
	}

	format, text, err := p.Text.Run(ctx, path)
	if err != nil {
		return fail(err)
	}

	rec, err := p.Extract.Run(ctx, text.Text)
	if err != nil {
		return fail(err)
	}
	res.Extracted = rec

	if p.Persist == nil {
		log.Info("processor.file.ok", "filename", res.Filename, "persisted", false)
		return res
	}

	docType := opts.DocumentType
	if docType == "" {
		docType = constants.DocumentTypeInvoice
	}
	id, err := p.Persist.Run(ctx, PersistInput{
		Filename:     res.Filename,
		FileType:     strings.ToLower(format),
		DocumentType: docType,
		UserID:       opts.UserID,
		RawText:      text.Text,
		Record:       rec,
	})
	if err != nil {
		log.Error("processor.file.failed", "filename", res.Filename, "error", err)
		return fail(err)
	}
	res.DocumentID = &id
	log.Info("processor.file.ok", "filename", res.Filename, "document_id", id, "persisted", true)
	return res
}
