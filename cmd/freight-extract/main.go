// Command freight-extract runs extraction over a file or a directory of freight
// documents, stores the results and prints them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/freightbite/freight-extract/constants"
	"github.com/freightbite/freight-extract/internal/app"
	"github.com/freightbite/freight-extract/internal/common"
	"github.com/freightbite/freight-extract/internal/export"
	"github.com/freightbite/freight-extract/internal/ingest"
	processor "github.com/freightbite/freight-extract/internal/pipeline"
)

const inMemoryDSN = "file:freight-extract?mode=memory&cache=shared"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	v, err := common.NewViper()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	fs := pflag.NewFlagSet("freight-extract", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: freight-extract [flags] <file-or-directory>")
		fs.PrintDefaults()
	}
	fs.String("user-id", "", "user id stored on each document (env USER_ID)")
	fs.Bool("use-llm", false, "parse text with an LLM first, regex rules as fallback (env EXTRACT_USE_LLM)")
	fs.String("llm-provider", common.ProviderOpenAI, "LLM provider: openai or gemini (env LLM_PROVIDER)")
	fs.String("dsn", "", "database DSN: postgres://... or file:path.db (env DB_URL)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "json", "log format: json or text")
	docType := fs.String("document-type", string(constants.DocumentTypeInvoice), "document type: "+strings.Join(constants.DocumentTypes(), ", "))
	jsonOut := fs.Bool("json-output", false, "print a machine-readable JSON payload")
	xlsxOut := fs.String("xlsx", "", "also write results to this XLSX file")
	inmem := fs.Bool("inmem", false, "store into an in-memory SQLite database")
	noGeo := fs.Bool("no-geo", false, "skip geocoding and routing")
	exts := fs.StringSlice("ext", nil, "extensions picked up from a directory (default pdf,png,jpg,jpeg,txt)")

	for key, flag := range map[string]string{
		"user_id":      "user-id",
		"llm.enabled":  "use-llm",
		"llm.provider": "llm-provider",
		"db.url":       "dsn",
		"log.level":    "log-level",
		"log.format":   "log-format",
	} {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg := common.LoadConfig(v)
	if *inmem {
		cfg.Database.DSN = inMemoryDSN
	}
	if *noGeo {
		cfg.Geo.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}
	dt, ok := constants.ParseDocumentType(*docType)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown --document-type %q\n", *docType)
		return 2
	}

	logger := common.NewLogger(cfg, stderr)

	files, err := ingest.ListFiles(fs.Arg(0), ingest.ParseExts(*exts))
	if err != nil {
		fmt.Fprintln(stderr, "Path not found:", fs.Arg(0))
		return 1
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("freight_extract.init_failed", "error", err)
		return 1
	}
	defer a.Close()

	opts := processor.Options{UserID: cfg.UserID, DocumentType: dt}
	results := make([]processor.Result, 0, len(files))
	for _, f := range files {
		if ctx.Err() != nil {
			logger.Warn("freight_extract.interrupted", "remaining", len(files)-len(results))
			break
		}
		res := a.Processor.ProcessFile(ctx, f, opts)
		results = append(results, res)
		if !*jsonOut {
			printHuman(stdout, res)
		}
	}

	if *xlsxOut != "" {
		data, err := export.NewService(logger).ResultsXLSX(results)
		if err == nil {
			err = os.WriteFile(*xlsxOut, data, 0o644)
		}
		if err != nil {
			logger.Error("freight_extract.xlsx_failed", "path", *xlsxOut, "error", err)
			return 1
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(map[string]any{"results": results}); err != nil {
			logger.Error("freight_extract.encode_failed", "error", err)
			return 1
		}
	} else {
		fmt.Fprintln(stdout, "Done.")
	}
	return 0
}

func printHuman(w io.Writer, res processor.Result) {
	fmt.Fprintln(w, "Processing:", res.Filename)
	if res.Error != nil {
		fmt.Fprintln(w, "  Error:", res.Err())
		return
	}
	if res.DocumentID != nil {
		fmt.Fprintln(w, "  Document ID:", res.DocumentID.String())
	}
	extracted, _ := json.Marshal(res.Extracted)
	fmt.Fprintln(w, "  Extracted:", string(extracted))
}
