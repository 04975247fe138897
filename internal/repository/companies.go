package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/google/uuid"
)

var companyColumns = []string{"id", "name", "company_type", "address", "city", "state", "zip", "phone"}

type CompanyRepository interface {
	// Ensure returns the company with this (name, type), creating it when missing.
	Ensure(ctx context.Context, name string, typ constants.CompanyType) (*entity.Company, error)
	// EnsureWithInfo is Ensure plus contact details; only non-empty fields overwrite.
	EnsureWithInfo(ctx context.Context, name string, typ constants.CompanyType, info entity.CompanyInfo) (*entity.Company, error)
	Find(ctx context.Context, name string, typ constants.CompanyType) (*entity.Company, error)
}

type companyRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewCompanyRepository(db *DB, logger *slog.Logger) CompanyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &companyRepository{db: db, logger: logger}
}

func (r *companyRepository) Ensure(ctx context.Context, name string, typ constants.CompanyType) (*entity.Company, error) {
	return r.EnsureWithInfo(ctx, name, typ, entity.CompanyInfo{})
}

func (r *companyRepository) EnsureWithInfo(ctx context.Context, name string, typ constants.CompanyType, info entity.CompanyInfo) (*entity.Company, error) {
	name = entity.Truncate(strings.TrimSpace(name), entity.MaxNameLen)
	if name == "" {
		return nil, fmt.Errorf("company name: %w", common.ErrInvalidInput)
	}
	info = capInfo(info)

	c, err := r.Find(ctx, name, typ)
	switch {
	case errors.Is(err, common.ErrNotFound):
		c, err = r.insert(ctx, name, typ, info)
		if err == nil {
			return c, nil
		}
		// lost a race on the (name, company_type) index
		if c2, ferr := r.Find(ctx, name, typ); ferr == nil {
			c = c2
		} else {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	return r.applyInfo(ctx, c, info)
}

func (r *companyRepository) Find(ctx context.Context, name string, typ constants.CompanyType) (*entity.Company, error) {
	b := r.db.builder()
	query, args := b.Select(companyColumns...).
		From(b.Table(CompaniesTable.Name)).
		Where(entsql.And(entsql.EQ("name", name), entsql.EQ("company_type", string(typ)))).
		Limit(1).
		Query()

	var (
		c                                entity.Company
		address, city, state, zip, phone sql.NullString
	)
	err := r.db.sql().QueryRowContext(ctx, query, args...).
		Scan(&c.ID, &c.Name, &c.CompanyType, &address, &city, &state, &zip, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("repository.company.find_failed", "name", name, "company_type", typ, "error", err)
		return nil, fmt.Errorf("%w: find company: %v", common.ErrDatabase, err)
	}
	c.Address, c.City, c.State, c.Zip, c.Phone = nullString(address), nullString(city), nullString(state), nullString(zip), nullString(phone)
	return &c, nil
}

func (r *companyRepository) insert(ctx context.Context, name string, typ constants.CompanyType, info entity.CompanyInfo) (*entity.Company, error) {
	c := &entity.Company{
		ID:          uuid.New(),
		Name:        name,
		CompanyType: string(typ),
		Address:     optional(info.Address),
		City:        optional(info.City),
		State:       optional(info.State),
		Zip:         optional(info.Zip),
		Phone:       optional(info.Phone),
	}
	now := time.Now().UTC()
	query, args := r.db.builder().Insert(CompaniesTable.Name).
		Columns(append(companyColumns, "created_at", "updated_at")...).
		Values(c.ID, c.Name, c.CompanyType, strOrNil(c.Address), strOrNil(c.City),
			strOrNil(c.State), strOrNil(c.Zip), strOrNil(c.Phone), now, now).
		Query()
	if _, err := r.db.sql().ExecContext(ctx, query, args...); err != nil {
		r.logger.Warn("repository.company.insert_failed", "name", name, "company_type", typ, "error", err)
		return nil, fmt.Errorf("%w: insert company: %v", common.ErrDatabase, err)
	}
	r.logger.Info("repository.company.created", "company_id", c.ID, "name", name, "company_type", typ)
	return c, nil
}

func (r *companyRepository) applyInfo(ctx context.Context, c *entity.Company, info entity.CompanyInfo) (*entity.Company, error) {
	upd := r.db.builder().Update(CompaniesTable.Name)
	changed := false
	set := func(col, v string, dst **string) {
		if v == "" || (*dst != nil && **dst == v) {
			return
		}
		upd.Set(col, v)
		*dst = optional(v)
		changed = true
	}
	set("address", info.Address, &c.Address)
	set("city", info.City, &c.City)
	set("state", info.State, &c.State)
	set("zip", info.Zip, &c.Zip)
	set("phone", info.Phone, &c.Phone)
	if !changed {
		return c, nil
	}

	query, args := upd.Set("updated_at", time.Now().UTC()).Where(entsql.EQ("id", c.ID)).Query()
	if _, err := r.db.sql().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repository.company.update_failed", "company_id", c.ID, "error", err)
		return nil, fmt.Errorf("%w: update company: %v", common.ErrDatabase, err)
	}
	return c, nil
}

func capInfo(info entity.CompanyInfo) entity.CompanyInfo {
	return entity.CompanyInfo{
		Address: entity.Truncate(strings.TrimSpace(info.Address), entity.MaxAddressLen),
		City:    entity.Truncate(strings.TrimSpace(info.City), entity.MaxCityLen),
		State:   entity.Truncate(strings.TrimSpace(info.State), entity.MaxStateLen),
		Zip:     entity.Truncate(strings.TrimSpace(info.Zip), entity.MaxZipLen),
		Phone:   entity.Truncate(strings.TrimSpace(info.Phone), entity.MaxPhoneLen),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
