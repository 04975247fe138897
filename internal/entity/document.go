package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is a stored source file plus its extraction.
type Document struct {
	ID           uuid.UUID      `json:"id"`
	UserID       *string        `json:"user_id,omitempty"`
	Filename     string         `json:"filename"`
	FileType     string         `json:"file_type"`
	DocumentType string         `json:"document_type"`
	Status       string         `json:"status"`
	RawText      string         `json:"raw_text"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
