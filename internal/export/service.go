package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/freightbite/freight-extract/internal/entity"
	processor "github.com/freightbite/freight-extract/internal/pipeline"
)

// SheetName is the single sheet written by ResultsXLSX.
const SheetName = "Loads"

var headers = []string{
	"Filename",
	"Document ID",
	"Pickup Date",
	"Delivery Date",
	"Invoice Date",
	"Origin",
	"Destination",
	"Miles",
	"Total Rate",
	"Amount Due",
	"Rate/Mile",
	"Broker",
	"Client",
	"Equipment",
	"Weight (lbs)",
	"Error",
}

// Service produces XLSX bytes for batch results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX writes one row per result to the "Loads" sheet. Missing values are blank;
// money, miles and weight are numeric cells.
func (s *Service) ResultsXLSX(results []processor.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	for i, r := range results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, r.Filename)
		if r.DocumentID != nil {
			write(2, r.DocumentID.String())
		}
		if rec := r.Extracted; rec != nil {
			write(3, entity.Deref(rec.PickupDate))
			write(4, entity.Deref(rec.DeliveryDate))
			write(5, entity.Deref(rec.InvoiceDate))
			write(6, place(rec.OriginCity, rec.OriginState, rec.OriginZip))
			write(7, place(rec.DestinationCity, rec.DestinationState, rec.DestinationZip))
			writeNum(write, 8, rec.Miles)
			writeNum(write, 9, rec.TotalRate)
			writeNum(write, 10, rec.AmountDue)
			writeNum(write, 11, rec.RatePerMile)
			write(12, entity.Deref(rec.BrokerName))
			write(13, entity.Deref(rec.ClientName))
			write(14, entity.Deref(rec.EquipmentType))
			if rec.Weight != nil {
				write(15, *rec.Weight)
			}
		}
		write(16, r.Err())
	}

	_ = f.SetColWidth(SheetName, "A", "A", 28) // filename
	_ = f.SetColWidth(SheetName, "B", "B", 38) // uuid
	_ = f.SetColWidth(SheetName, "C", "E", 12) // dates
	_ = f.SetColWidth(SheetName, "F", "G", 26) // lane
	_ = f.SetColWidth(SheetName, "H", "K", 12) // numbers
	_ = f.SetColWidth(SheetName, "L", "M", 28) // parties
	_ = f.SetColWidth(SheetName, "P", "P", 40) // error

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeNum(write func(int, any), col int, v *float64) {
	if v != nil {
		write(col, *v)
	}
}

// place renders "City, ST 12345", skipping missing parts.
func place(city, state, zip *string) string {
	c := entity.Deref(city)
	rest := strings.TrimSpace(entity.Deref(state) + " " + entity.Deref(zip))
	switch {
	case c != "" && rest != "":
		return c + ", " + rest
	case c != "":
		return c
	default:
		return rest
	}
}
