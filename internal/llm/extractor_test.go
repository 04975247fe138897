package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/extract"
	"github.com/freightbite/freight-extract/internal/llm"
)

type fakeCompleter struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestExtractor_ParsesFencedReply(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n" + `{
		"origin_city": "WAVERLY", "origin_state": "NY", "origin_zip": "14892",
		"destination_city": "HIRAM", "destination_state": "OH",
		"amount_due": "$2,025.00", "detention": 150, "lumper": null,
		"weight": 42000, "broker_name": "Acme Logistics Inc"
	}` + "\n```"}
	ex, err := llm.NewExtractor(fc, nil)
	require.NoError(t, err)

	rec, err := ex.ExtractRecord(context.Background(), "PU 1 Waverly NY 14892")
	require.NoError(t, err)

	assert.Contains(t, fc.prompt, "PU 1 Waverly NY 14892")
	require.NotNil(t, rec.OriginCity)
	assert.Equal(t, "WAVERLY", *rec.OriginCity)
	require.NotNil(t, rec.AmountDue)
	assert.Equal(t, 2025.0, *rec.AmountDue)
	require.NotNil(t, rec.Detention)
	assert.Equal(t, map[string]float64{"detention": 150}, rec.Accessorials)
	assert.Nil(t, rec.Lumper)
	assert.Nil(t, rec.PickupDate)
	require.NotNil(t, rec.Weight)
	assert.Equal(t, 42000, *rec.Weight)
}

func TestExtractor_UnparsableIsNoResult(t *testing.T) {
	ex, err := llm.NewExtractor(&fakeCompleter{reply: "Sorry, I can't help with that."}, nil)
	require.NoError(t, err)

	rec, err := ex.ExtractRecord(context.Background(), "text")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, extract.ErrNoResult)
}

func TestExtractor_EmptyReplyIsNoResult(t *testing.T) {
	ex, err := llm.NewExtractor(&fakeCompleter{err: llm.ErrEmptyResponse}, nil)
	require.NoError(t, err)

	_, err = ex.ExtractRecord(context.Background(), "text")
	assert.ErrorIs(t, err, extract.ErrNoResult)
}

func TestExtractor_RateLimitPropagates(t *testing.T) {
	ex, err := llm.NewExtractor(&fakeCompleter{err: llm.NewRateLimitError("fake", errors.New("429"), 30)}, nil)
	require.NoError(t, err)

	_, err = ex.ExtractRecord(context.Background(), "text")

	var th extract.Throttled
	require.ErrorAs(t, err, &th)
	assert.Equal(t, 30*time.Second, th.Backoff())
	assert.NotErrorIs(t, err, extract.ErrNoResult)
}

func TestExtractor_LongStringsCapped(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'B'
	}
	ex, err := llm.NewExtractor(&fakeCompleter{reply: `{"broker_name":"` + string(long) + `"}`}, nil)
	require.NoError(t, err)

	rec, err := ex.ExtractRecord(context.Background(), "text")
	require.NoError(t, err)
	require.NotNil(t, rec.BrokerName)
	assert.Len(t, *rec.BrokerName, 200)
}
