package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/freightbite/freight-extract/constants"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (ExtractionResult, error) {
	txt, warn, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return ExtractionResult{SourceType: constants.IMAGE, Warnings: warn}, err
	}
	return ExtractionResult{
		Text:       Normalize(txt),
		Pages:      1,
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Language:   e.cfg.TesseractLang,
		Warnings:   warn,
	}, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang> --psm 6
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang, "--psm", fmt.Sprintf("%d", e.cfg.PSM)}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{strings.TrimSpace(string(errb))}, fmt.Errorf("tesseract: %w", err)
	}

	// drop ruler lines ("-----", "____") that tesseract reads off table borders
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}
