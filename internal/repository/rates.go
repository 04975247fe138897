package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/google/uuid"
)

var rateColumns = []string{
	"id", "document_id", "company_id", "origin_city", "origin_state",
	"destination_city", "destination_state", "rate_type", "rate_amount",
	"accessorial_fees", "equipment_type", "min_weight", "metadata",
}

type RateRepository interface {
	Create(ctx context.Context, rate *entity.Rate) (*entity.Rate, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Rate, error)
}

type rateRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRateRepository(db *DB, logger *slog.Logger) RateRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &rateRepository{db: db, logger: logger}
}

func (r *rateRepository) Create(ctx context.Context, rate *entity.Rate) (*entity.Rate, error) {
	rt := *rate
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	fees, err := jsonValue(rt.AccessorialFees)
	if err != nil {
		return nil, common.NewAppError("rate.create", "encode accessorial fees", err)
	}
	meta, err := jsonValue(rt.Metadata)
	if err != nil {
		return nil, common.NewAppError("rate.create", "encode metadata", err)
	}
	query, args := r.db.builder().Insert(RatesTable.Name).
		Columns(append(rateColumns, "created_at")...).
		Values(rt.ID, rt.DocumentID, rt.CompanyID, rt.OriginCity, rt.OriginState,
			rt.DestinationCity, rt.DestinationState, rt.RateType, rt.RateAmount,
			fees, strOrNil(rt.EquipmentType), intOrNil(rt.MinWeight), meta, time.Now().UTC()).
		Query()
	if _, err := r.db.sql().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repository.rate.create_failed", "document_id", rt.DocumentID, "error", err)
		return nil, fmt.Errorf("%w: create rate: %v", common.ErrDatabase, err)
	}
	r.logger.Debug("repository.rate.created", "rate_id", rt.ID, "rate_type", rt.RateType, "amount", rt.RateAmount)
	return &rt, nil
}

func (r *rateRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Rate, error) {
	b := r.db.builder()
	query, args := b.Select(rateColumns...).
		From(b.Table(RatesTable.Name)).
		Where(entsql.EQ("document_id", documentID)).
		OrderBy("created_at").
		Query()
	rows, err := r.db.sql().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("repository.rate.list_failed", "document_id", documentID, "error", err)
		return nil, fmt.Errorf("%w: list rates: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Rate
	for rows.Next() {
		var (
			rt         entity.Rate
			fees, meta []byte
			equipment  sql.NullString
			minWeight  sql.NullInt64
		)
		if err := rows.Scan(&rt.ID, &rt.DocumentID, &rt.CompanyID, &rt.OriginCity, &rt.OriginState,
			&rt.DestinationCity, &rt.DestinationState, &rt.RateType, &rt.RateAmount,
			&fees, &equipment, &minWeight, &meta); err != nil {
			return nil, fmt.Errorf("%w: scan rate: %v", common.ErrDatabase, err)
		}
		if rt.AccessorialFees, err = decodeJSON[map[string]float64](fees); err != nil {
			return nil, fmt.Errorf("%w: decode fees: %v", common.ErrDatabase, err)
		}
		if rt.Metadata, err = decodeJSON[map[string]any](meta); err != nil {
			return nil, fmt.Errorf("%w: decode metadata: %v", common.ErrDatabase, err)
		}
		rt.EquipmentType = nullString(equipment)
		rt.MinWeight = nullInt(minWeight)
		out = append(out, &rt)
	}
	return out, rows.Err()
}
