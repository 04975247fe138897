package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/google/uuid"
)

// MaxRawTextLen caps documents.raw_text.
const MaxRawTextLen = 50000

var documentColumns = []string{
	"id", "user_id", "filename", "file_type", "document_type",
	"status", "raw_text", "metadata", "created_at", "updated_at",
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) (*entity.Document, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error
	MergeMetadata(ctx context.Context, id uuid.UUID, patch map[string]any) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Document, error)
}

type documentRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, logger: logger}
}

// Create inserts doc, assigning an id and timestamps when unset. raw_text is capped.
func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	d := *doc
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = string(constants.DocumentStatusProcessing)
	}
	if d.DocumentType == "" {
		d.DocumentType = string(constants.DocumentTypeOther)
	}
	d.RawText = entity.Truncate(d.RawText, MaxRawTextLen)
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	meta, err := jsonValue(d.Metadata)
	if err != nil {
		return nil, common.NewAppError("document.create", "encode metadata", err)
	}
	query, args := r.db.builder().Insert(DocumentsTable.Name).
		Columns(documentColumns...).
		Values(d.ID, strOrNil(d.UserID), d.Filename, d.FileType, d.DocumentType,
			d.Status, d.RawText, meta, d.CreatedAt, d.UpdatedAt).
		Query()
	if _, err := r.db.sql().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repository.document.create_failed", "filename", d.Filename, "error", err)
		return nil, fmt.Errorf("%w: create document: %v", common.ErrDatabase, err)
	}
	r.logger.Debug("repository.document.created", "document_id", d.ID, "filename", d.Filename)
	return &d, nil
}

func (r *documentRepository) SetStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error {
	query, args := r.db.builder().Update(DocumentsTable.Name).
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.sql().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("repository.document.status_failed", "document_id", id, "status", status, "error", err)
		return fmt.Errorf("%w: set status: %v", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// MergeMetadata overlays patch onto the stored metadata object.
func (r *documentRepository) MergeMetadata(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	meta := doc.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	maps.Copy(meta, patch)
	encoded, err := jsonValue(meta)
	if err != nil {
		return common.NewAppError("document.metadata", "encode metadata", err)
	}
	query, args := r.db.builder().Update(DocumentsTable.Name).
		Set("metadata", encoded).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	if _, err := r.db.sql().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repository.document.metadata_failed", "document_id", id, "error", err)
		return fmt.Errorf("%w: update metadata: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	b := r.db.builder()
	query, args := b.Select(documentColumns...).
		From(b.Table(DocumentsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	doc, err := scanDocument(r.db.sql().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("repository.document.get_failed", "document_id", id, "error", err)
		return nil, fmt.Errorf("%w: get document: %v", common.ErrDatabase, err)
	}
	return doc, nil
}

func (r *documentRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Document, error) {
	b := r.db.builder()
	query, args := b.Select(documentColumns...).
		From(b.Table(DocumentsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("created_at").
		Query()
	rows, err := r.db.sql().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("repository.document.list_failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: list documents: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", common.ErrDatabase, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		d                entity.Document
		userID           sql.NullString
		meta             []byte
		created, updated any
	)
	if err := row.Scan(&d.ID, &userID, &d.Filename, &d.FileType, &d.DocumentType,
		&d.Status, &d.RawText, &meta, &created, &updated); err != nil {
		return nil, err
	}
	d.UserID = nullString(userID)
	var err error
	if d.Metadata, err = decodeJSON[map[string]any](meta); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = toTime(created); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = toTime(updated); err != nil {
		return nil, err
	}
	return &d, nil
}
