package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/entity"
	processor "github.com/freightbite/freight-extract/internal/pipeline"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func baseConfig(t *testing.T) *common.Config {
	t.Helper()
	t.Setenv("FREIGHT_CONFIG", "")
	v, err := common.NewViper()
	require.NoError(t, err)
	cfg := common.LoadConfig(v)
	cfg.Geo.Enabled = false
	cfg.LLM.Enabled = false
	cfg.Database.DSN = ""
	return cfg
}

func TestBuild_TextFileWithoutDatabase(t *testing.T) {
	cfg := baseConfig(t)
	a, err := Build(context.Background(), cfg, quiet)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.DB)

	path := filepath.Join(t.TempDir(), "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte("Broker: Acme Logistics\nRate per mile: $2.50\nTotal Rate: $1,250.00\n"), 0o600))

	res := a.Processor.ProcessFile(context.Background(), path, processor.Options{})
	require.Nil(t, res.Error, res.Err())
	require.NotNil(t, res.Extracted)
	assert.Equal(t, "Acme Logistics", entity.Deref(res.Extracted.BrokerName))
	require.NotNil(t, res.Extracted.Miles)
	assert.InDelta(t, 500.0, *res.Extracted.Miles, 1e-9)
}

func TestBuild_InMemoryDatabase(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Database.DSN = "file:apptest?mode=memory&cache=shared"
	a, err := Build(context.Background(), cfg, quiet)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.DB)

	path := filepath.Join(t.TempDir(), "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte("Broker: Acme Logistics\nTotal Rate: $900.00\n"), 0o600))

	res := a.Processor.ProcessFile(context.Background(), path, processor.Options{UserID: "u-1"})
	require.Nil(t, res.Error, res.Err())
	assert.NotNil(t, res.DocumentID)
}

func TestRecordExtractor_LLMFallsBackToRegex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"sorry, I cannot help"}}]}`))
	}))
	defer srv.Close()

	cfg := baseConfig(t)
	cfg.LLM.Enabled = true
	cfg.LLM.OpenAIKey = "sk-test"
	cfg.LLM.OpenAIBaseURL = srv.URL

	ex, err := RecordExtractor(cfg, quiet)
	require.NoError(t, err)
	rec, err := ex.ExtractRecord(context.Background(), "Broker: Acme Logistics\nTotal Rate: $900.00")
	require.NoError(t, err)
	assert.Equal(t, "Acme Logistics", entity.Deref(rec.BrokerName))
}
