package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/freightbite/freight-extract/internal/extract"
)

// Extractor is the LLM-backed extract.RecordExtractor. An unusable reply is reported as
// extract.ErrNoResult so a fallback chain can move on to the regex rules.
type Extractor struct {
	completer Completer
	schema    *jsonschema.Schema
	log       *slog.Logger
}

func NewExtractor(c Completer, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := CompileSchema(BuildRecordJSONSchema())
	if err != nil {
		return nil, err
	}
	return &Extractor{completer: c, schema: schema, log: logger}, nil
}

func (e *Extractor) ExtractRecord(ctx context.Context, text string) (*entity.ExtractedRecord, error) {
	rid := uuid.New().String()
	start := time.Now()

	e.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", e.completer.Name(),
		"text_len", len(text),
	)

	content, err := e.completer.Complete(ctx, BuildPrompt(text))
	if err != nil {
		if errors.Is(err, ErrEmptyResponse) {
			return nil, fmt.Errorf("%s: %w", e.completer.Name(), extract.ErrNoResult)
		}
		e.log.Error("llm.extract.provider_error",
			"req_id", rid, "provider", e.completer.Name(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	rec, err := e.parse(content)
	if err != nil {
		e.log.Warn("llm.extract.unusable",
			"req_id", rid, "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%s: %v: %w", e.completer.Name(), err, extract.ErrNoResult)
	}

	e.log.Info("llm.extract.ok",
		"req_id", rid,
		"provider", e.completer.Name(),
		"has_origin", rec.HasOrigin(),
		"has_destination", rec.HasDestination(),
		"has_base_cost", rec.BaseCost() != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// parse turns a raw reply into a record: strip fences, sanitize, validate, decode,
// then mirror accessorials and apply length caps.
func (e *Extractor) parse(content string) (*entity.ExtractedRecord, error) {
	body := StripCodeFence(content)
	if body == "" {
		return nil, ErrEmptyResponse
	}
	cleaned, _, err := NormalizeAndSanitizeJSON([]byte(body), e.log)
	if err != nil {
		return nil, err
	}
	if err := validateWith(e.schema, cleaned); err != nil {
		return nil, err
	}
	rec := entity.NewExtractedRecord()
	if err := json.Unmarshal(cleaned, rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	rec.MirrorAccessorials()
	rec.ApplyCaps()
	return rec, nil
}
