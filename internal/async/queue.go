package async

import (
	"context"
	"errors"
	"time"

	"github.com/freightbite/freight-extract/constants"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one file to push through the pipeline.
type Job struct {
	Path         string
	UserID       string
	DocumentType constants.DocumentType
	SubmittedAt  time.Time
	TraceID      string
	Hash         string // content hash when the caller deduplicated the file
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
