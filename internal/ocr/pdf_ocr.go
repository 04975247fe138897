package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/freightbite/freight-extract/constants"
)

// extractPDF tries the embedded text layer, then pdftotext, then rasterizes and OCRs.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	var warns []string

	if txt, pages, err := nativeText(path); err != nil {
		warns = append(warns, "text layer: "+err.Error())
	} else if e.enoughText(txt) {
		return ExtractionResult{Text: Normalize(txt), Pages: pages, SourceType: constants.PDF, Method: "pdf-text", Warnings: warns}, nil
	}

	if txt, pages, w, err := e.pdfToText(ctx, path); err != nil {
		warns = append(warns, w...)
		e.logger.Debug("ocr.pdftotext.unavailable", "path", path, "error", err)
	} else if e.enoughText(txt) {
		return ExtractionResult{Text: Normalize(txt), Pages: pages, SourceType: constants.PDF, Method: "pdftotext", Warnings: warns}, nil
	}

	txt, pages, w, err := e.pdfToOCR(ctx, path)
	warns = append(warns, w...)
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF, Warnings: warns}, fmt.Errorf("OCR failed: %w", err)
	}
	return ExtractionResult{
		Text:       Normalize(txt),
		Pages:      pages,
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warns,
	}, nil
}

func (e *Extractor) enoughText(s string) bool {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
			if n >= e.cfg.MinTextChars {
				return true
			}
		}
	}
	return false
}

// nativeText reads the PDF text layer page by page. Malformed content streams can make the
// reader panic, so each page is read under recover.
func nativeText(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic reading pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	var parts []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, perr := pageText(p)
		if perr != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), r.NumPage(), nil
}

func pageText(p pdf.Page) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page text: %v", r)
		}
	}()
	return p.GetPlainText(nil)
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{strings.TrimSpace(string(errb))}, err
	}
	// form feed separates pages
	raw := strings.TrimRight(string(out), "\f")
	pages = 1 + strings.Count(raw, "\f")
	return strings.ReplaceAll(raw, "\f", "\n\n"), pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "fx-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("ocr.tmpdir.cleanup_failed", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, []string{strings.TrimSpace(string(errb))}, err
	}

	// prefix-1.png, prefix-2.png, ... (zero-padded when there are 10+ pages)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var texts []string
	var warns []string
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		texts = append(texts, strings.TrimSpace(txt))
	}
	return strings.Join(texts, "\n\n"), len(matches), warns, nil
}
