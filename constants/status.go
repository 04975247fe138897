package constants

// DocumentStatus is the lifecycle status stored in documents.status.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentStatusProcessing DocumentStatus = "processing" // row inserted, extraction attached
	DocumentStatusExtracted  DocumentStatus = "extracted"  // record persisted
	DocumentStatusFailed     DocumentStatus = "failed"
)
