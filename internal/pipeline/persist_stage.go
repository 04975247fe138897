package processor

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/freightbite/freight-extract/internal/repository"
	"github.com/google/uuid"
)

// PersistStage writes the document, its companies and the lane rate.
type PersistStage struct {
	Docs      repository.DocumentRepository
	Companies repository.CompanyRepository
	Rates     repository.RateRepository
	Logger    *slog.Logger
}

func NewPersistStage(docs repository.DocumentRepository, companies repository.CompanyRepository, rates repository.RateRepository, logger *slog.Logger) *PersistStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStage{Docs: docs, Companies: companies, Rates: rates, Logger: logger}
}

// PersistInput is one processed file ready to store.
type PersistInput struct {
	Filename     string
	FileType     string
	DocumentType constants.DocumentType
	UserID       string
	RawText      string
	Record       *entity.ExtractedRecord
}

// Run inserts the document and returns its id. Only the document insert can fail the
// call; status, company and rate writes are logged and skipped on error.
func (s *PersistStage) Run(ctx context.Context, in PersistInput) (uuid.UUID, error) {
	rec := in.Record
	meta := map[string]any{"extracted": rec}
	doc := &entity.Document{
		Filename:     in.Filename,
		FileType:     in.FileType,
		DocumentType: string(in.DocumentType),
		Status:       string(constants.DocumentStatusProcessing),
		RawText:      in.RawText,
		Metadata:     meta,
	}
	if in.UserID != "" {
		uid := in.UserID
		doc.UserID = &uid
		meta["user_id"] = uid
	}

	created, err := s.Docs.Create(ctx, doc)
	if err != nil {
		s.Logger.Error("pipeline.persist.document_failed", "filename", in.Filename, "error", err)
		return uuid.Nil, err
	}
	docID := created.ID

	if err := s.Docs.SetStatus(ctx, docID, constants.DocumentStatusExtracted); err != nil {
		s.Logger.Warn("pipeline.persist.failed", "step", "status", "document_id", docID, "error", err)
	}

	if name := entity.Deref(rec.ClientName); name != "" {
		client, err := s.Companies.EnsureWithInfo(ctx, name, constants.CompanyTypeShipper, entity.CompanyInfo{
			Address: entity.Deref(rec.ClientAddress),
			City:    entity.Deref(rec.ClientCity),
			State:   entity.Deref(rec.ClientState),
			Zip:     entity.Deref(rec.ClientZip),
			Phone:   entity.Deref(rec.ClientPhone),
		})
		if err != nil {
			s.Logger.Warn("pipeline.persist.failed", "step", "client", "document_id", docID, "error", err)
		} else if err := s.Docs.MergeMetadata(ctx, docID, map[string]any{"client_id": client.ID.String()}); err != nil {
			s.Logger.Warn("pipeline.persist.failed", "step", "client_id", "document_id", docID, "error", err)
		}
	}

	var broker *entity.Company
	if name := entity.Deref(rec.BrokerName); name != "" {
		broker, err = s.Companies.Ensure(ctx, name, constants.CompanyTypeBroker)
		if err != nil {
			s.Logger.Warn("pipeline.persist.failed", "step", "broker", "document_id", docID, "error", err)
		}
	}

	if broker != nil && rec.BaseCost() != nil {
		if _, err := s.Rates.Create(ctx, BuildRate(docID, broker.ID, rec)); err != nil {
			s.Logger.Warn("pipeline.persist.failed", "step", "rate", "document_id", docID, "error", err)
		}
	}

	s.Logger.Info("pipeline.persist.ok", "document_id", docID, "filename", in.Filename)
	return docID, nil
}

// BuildRate maps a record with a base cost onto a rates row. Missing lane parts become
// "Unknown"/"XX"; a positive rate_per_mile makes the rate per_mile, anything else flat.
func BuildRate(docID, companyID uuid.UUID, rec *entity.ExtractedRecord) *entity.Rate {
	base := *rec.BaseCost()
	rt := &entity.Rate{
		DocumentID:       docID,
		CompanyID:        companyID,
		OriginCity:       orDefault(rec.OriginCity, "Unknown", entity.MaxCityLen),
		OriginState:      orDefault(rec.OriginState, "XX", entity.MaxStateLen),
		DestinationCity:  orDefault(rec.DestinationCity, "Unknown", entity.MaxCityLen),
		DestinationState: orDefault(rec.DestinationState, "XX", entity.MaxStateLen),
		RateType:         string(constants.RateTypeFlat),
		RateAmount:       round2(base),
		AccessorialFees:  rec.Accessorials,
		MinWeight:        rec.Weight,
		Metadata:         map[string]any{"total_rate": base},
	}
	if rt.AccessorialFees == nil {
		rt.AccessorialFees = map[string]float64{}
	}
	if rec.RatePerMile != nil && *rec.RatePerMile > 0 {
		rt.RateType = string(constants.RateTypePerMile)
		rt.RateAmount = round2(*rec.RatePerMile)
	}
	if eq := entity.Truncate(strings.TrimSpace(entity.Deref(rec.EquipmentType)), entity.MaxEquipmentLen); eq != "" {
		rt.EquipmentType = &eq
	}
	if rec.Miles != nil {
		rt.Metadata["miles"] = *rec.Miles
	}
	return rt
}

func orDefault(p *string, def string, n int) string {
	s := strings.TrimSpace(entity.Deref(p))
	if s == "" {
		s = def
	}
	return entity.Truncate(s, n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
