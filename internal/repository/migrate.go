package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var textType = map[string]string{dialect.Postgres: "text"}

var (
	// CompaniesColumns holds the columns for the "companies" table.
	CompaniesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, SchemaType: textType},
		{Name: "company_type", Type: field.TypeString, Size: 32},
		{Name: "address", Type: field.TypeString, Nullable: true, SchemaType: textType},
		{Name: "city", Type: field.TypeString, Nullable: true, Size: 100},
		{Name: "state", Type: field.TypeString, Nullable: true, Size: 2},
		{Name: "zip", Type: field.TypeString, Nullable: true, Size: 20},
		{Name: "phone", Type: field.TypeString, Nullable: true, Size: 30},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// CompaniesTable holds the schema information for the "companies" table.
	CompaniesTable = &schema.Table{
		Name:       "companies",
		Columns:    CompaniesColumns,
		PrimaryKey: []*schema.Column{CompaniesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "company_name_company_type",
				Unique:  true,
				Columns: []*schema.Column{CompaniesColumns[1], CompaniesColumns[2]},
			},
		},
	}

	// DocumentsColumns holds the columns for the "documents" table.
	DocumentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "user_id", Type: field.TypeString, Nullable: true},
		{Name: "filename", Type: field.TypeString, SchemaType: textType},
		{Name: "file_type", Type: field.TypeString, Size: 16},
		{Name: "document_type", Type: field.TypeString, Size: 32},
		{Name: "status", Type: field.TypeString, Size: 32},
		{Name: "raw_text", Type: field.TypeString, Size: 2147483647, SchemaType: textType},
		{Name: "metadata", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// DocumentsTable holds the schema information for the "documents" table.
	DocumentsTable = &schema.Table{
		Name:       "documents",
		Columns:    DocumentsColumns,
		PrimaryKey: []*schema.Column{DocumentsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "document_user_id", Columns: []*schema.Column{DocumentsColumns[1]}},
		},
	}

	// RatesColumns holds the columns for the "rates" table.
	RatesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "origin_city", Type: field.TypeString, Size: 100},
		{Name: "origin_state", Type: field.TypeString, Size: 2},
		{Name: "destination_city", Type: field.TypeString, Size: 100},
		{Name: "destination_state", Type: field.TypeString, Size: 2},
		{Name: "rate_type", Type: field.TypeString, Size: 32},
		{Name: "rate_amount", Type: field.TypeFloat64},
		{Name: "accessorial_fees", Type: field.TypeJSON, Nullable: true},
		{Name: "equipment_type", Type: field.TypeString, Nullable: true, Size: 50},
		{Name: "min_weight", Type: field.TypeInt, Nullable: true},
		{Name: "metadata", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "document_id", Type: field.TypeUUID},
		{Name: "company_id", Type: field.TypeUUID},
	}
	// RatesTable holds the schema information for the "rates" table.
	RatesTable = &schema.Table{
		Name:       "rates",
		Columns:    RatesColumns,
		PrimaryKey: []*schema.Column{RatesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "rates_documents_rates",
				Columns:    []*schema.Column{RatesColumns[12]},
				RefColumns: []*schema.Column{DocumentsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "rates_companies_rates",
				Columns:    []*schema.Column{RatesColumns[13]},
				RefColumns: []*schema.Column{CompaniesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "rate_document_id", Columns: []*schema.Column{RatesColumns[12]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		CompaniesTable,
		DocumentsTable,
		RatesTable,
	}
)

func init() {
	RatesTable.ForeignKeys[0].RefTable = DocumentsTable
	RatesTable.ForeignKeys[1].RefTable = CompaniesTable
}

// Migrate creates or updates the companies, documents and rates tables.
func (d *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(d.drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		d.logger.Error("repository.migrate.failed", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	d.logger.Info("repository.migrate.ok", "tables", len(Tables))
	return nil
}
