// Package app wires configuration into a ready Processor for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/extract"
	"github.com/freightbite/freight-extract/internal/geo"
	"github.com/freightbite/freight-extract/internal/llm"
	"github.com/freightbite/freight-extract/internal/llm/gemini"
	"github.com/freightbite/freight-extract/internal/llm/openai"
	"github.com/freightbite/freight-extract/internal/mileage"
	"github.com/freightbite/freight-extract/internal/ocr"
	processor "github.com/freightbite/freight-extract/internal/pipeline"
	"github.com/freightbite/freight-extract/internal/repository"
)

// App owns the processor and the resources behind it.
type App struct {
	Processor *processor.Processor
	DB        *repository.DB // nil when no DSN is configured
	Logger    *slog.Logger
}

// Build opens the database (when configured), migrates it and assembles
// text -> extraction (LLM then regex) -> derived metrics -> persistence.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Logger: logger}

	textEx := extract.NewOCRAdapter(ocr.NewExtractor(OCRConfig(cfg), logger), logger)

	records, err := RecordExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}

	var resolver processor.MetricsResolver
	if cfg.Geo.Enabled {
		resolver = Resolver(cfg, logger)
	} else {
		resolver = mileage.NewResolver(nil, nil, logger)
	}

	var persist *processor.PersistStage
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, DBConfig(cfg), logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, common.WrapError(err, "migrate database")
		}
		a.DB = db
		persist = processor.NewPersistStage(
			repository.NewDocumentRepository(db, logger),
			repository.NewCompanyRepository(db, logger),
			repository.NewRateRepository(db, logger),
			logger,
		)
	} else {
		logger.Warn("app.persistence.disabled", "reason", "no database DSN")
	}

	a.Processor = processor.NewProcessor(logger,
		processor.NewTextStage(textEx, logger),
		processor.NewExtractStage(records, resolver, logger),
		persist,
	)
	return a, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func DBConfig(cfg *common.Config) repository.Config {
	return repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}
}

func OCRConfig(cfg *common.Config) ocr.Config {
	return ocr.Config{
		TesseractLang: cfg.OCR.Language,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}
}

// Completer returns the configured LLM provider client.
func Completer(cfg *common.Config, logger *slog.Logger) llm.Completer {
	if cfg.LLM.Provider == common.ProviderGemini {
		return gemini.NewClient(gemini.Config{
			APIKey:  cfg.LLM.GeminiKey,
			Model:   cfg.LLM.GeminiModel,
			Timeout: cfg.LLM.Timeout,
		}, logger)
	}
	return openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.OpenAIKey,
		BaseURL: cfg.LLM.OpenAIBaseURL,
		Model:   cfg.LLM.OpenAIModel,
		Timeout: cfg.LLM.Timeout,
	}, logger)
}

// RecordExtractor is the regex rules alone, or the LLM first with the rules as
// fallback when an LLM is enabled and keyed.
func RecordExtractor(cfg *common.Config, logger *slog.Logger) (extract.RecordExtractor, error) {
	regex := extract.Strategy{Name: "regex", Extractor: extract.NewRegexExtractor(logger)}
	if !cfg.UseLLM() {
		if cfg.LLM.Enabled {
			logger.Warn("app.llm.disabled", "provider", cfg.LLM.Provider, "reason", "missing api key")
		}
		return extract.NewFallbackExtractor(logger, regex), nil
	}
	ex, err := llm.NewExtractor(Completer(cfg, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("llm extractor: %w", err)
	}
	return extract.NewFallbackExtractor(logger,
		extract.Strategy{Name: cfg.LLM.Provider, Extractor: ex},
		regex,
	), nil
}

// Resolver builds the mileage resolver over Nominatim and OSRM.
func Resolver(cfg *common.Config, logger *slog.Logger) *mileage.Resolver {
	g := geo.NewNominatim(geo.NominatimConfig{
		BaseURL:     cfg.Geo.GeocoderURL,
		UserAgent:   cfg.Geo.UserAgent,
		MinInterval: cfg.Geo.MinInterval,
		Timeout:     cfg.Geo.Timeout,
	}, logger)
	r := geo.NewOSRM(geo.OSRMConfig{BaseURL: cfg.Geo.RouterURL, Timeout: cfg.Geo.Timeout}, logger)
	return mileage.NewResolver(g, r, logger)
}
