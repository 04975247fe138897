package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/freightbite/freight-extract/internal/extract"
)

// MetricsResolver fills miles and rate_per_mile on a record.
type MetricsResolver interface {
	Resolve(ctx context.Context, rec *entity.ExtractedRecord)
}

// ExtractStage runs record extraction then derived metrics.
type ExtractStage struct {
	Extractor extract.RecordExtractor
	Resolver  MetricsResolver // optional
	Logger    *slog.Logger
}

func NewExtractStage(ex extract.RecordExtractor, resolver MetricsResolver, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Extractor: ex, Resolver: resolver, Logger: logger}
}

func (s *ExtractStage) Run(ctx context.Context, text string) (*entity.ExtractedRecord, error) {
	rec, err := s.Extractor.ExtractRecord(ctx, text)
	if err != nil {
		s.Logger.Error("pipeline.extract.failed", "error", err)
		return nil, fmt.Errorf("extract record: %w", err)
	}
	if s.Resolver != nil {
		s.Resolver.Resolve(ctx, rec)
	}
	s.Logger.Info("pipeline.extract.ok",
		"broker", entity.Deref(rec.BrokerName),
		"origin", entity.Deref(rec.OriginCity),
		"destination", entity.Deref(rec.DestinationCity),
		"has_base_cost", rec.BaseCost() != nil,
		"has_miles", rec.Miles != nil,
	)
	return rec, nil
}
