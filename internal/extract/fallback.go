package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/freightbite/freight-extract/internal/entity"
)

// Throttled is implemented by errors that carry a provider backoff (HTTP 429).
type Throttled interface {
	error
	Backoff() time.Duration
}

// circuitState tracks rate-limit backoff for one strategy.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed
}

func (c *circuitState) isOpen(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Strategy is a named RecordExtractor.
type Strategy struct {
	Name      string
	Extractor RecordExtractor
}

// FallbackExtractor tries strategies in order and returns the first record produced.
// A strategy that reports a rate limit is skipped until its backoff expires.
type FallbackExtractor struct {
	strategies []Strategy
	circuits   []*circuitState
	logger     *slog.Logger
	now        func() time.Time
}

func NewFallbackExtractor(logger *slog.Logger, strategies ...Strategy) *FallbackExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	circuits := make([]*circuitState, len(strategies))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{strategies: strategies, circuits: circuits, logger: logger, now: time.Now}
}

func (f *FallbackExtractor) ExtractRecord(ctx context.Context, text string) (*entity.ExtractedRecord, error) {
	var lastErr error
	for i, s := range f.strategies {
		now := f.now()
		if resetAt, open := f.circuits[i].isOpen(now); open {
			f.logger.Info("extract.fallback.skip", "strategy", s.Name, "circuit_open_until", resetAt.Format(time.RFC3339))
			continue
		}

		rec, err := s.Extractor.ExtractRecord(ctx, text)
		if err == nil && rec != nil {
			if i > 0 {
				f.logger.Info("extract.fallback.used", "strategy", s.Name, "position", i)
			}
			return rec, nil
		}
		if err == nil {
			err = ErrNoResult
		}
		lastErr = err

		var th Throttled
		if errors.As(err, &th) {
			f.circuits[i].open(now.Add(th.Backoff()))
		}
		if errors.Is(err, ErrNoResult) {
			f.logger.Info("extract.fallback.no_result", "strategy", s.Name, "error", err)
		} else {
			f.logger.Warn("extract.fallback.failed", "strategy", s.Name, "error", err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr == nil {
		return nil, fmt.Errorf("all strategies skipped: %w", ErrNoResult)
	}
	return nil, fmt.Errorf("all strategies failed: %w", lastErr)
}
