package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/freightbite/freight-extract/internal/entity"
)

// Structured runs every field extractor over text and merges the results:
//  1. PU/SO block locations and dates
//  2. labeled dates, then unlabeled dates by position into pickup, delivery, invoice
//  3. generic origin/destination for a side the blocks left empty
//  4. money hits; the first hit for a field wins
//  5. total_rate backfilled from amount_due
//  6. load spec and parties
//
// The positional date step is a heuristic: an unlabeled date fills whichever of pickup,
// delivery, invoice is still empty, in that order, regardless of where it sits.
func Structured(text string) *entity.ExtractedRecord {
	rec := entity.NewExtractedRecord()

	blocks := ExtractStopBlocks(text)
	setLocation(&rec.OriginCity, &rec.OriginState, &rec.OriginZip, blocks.Origin)
	setLocation(&rec.DestinationCity, &rec.DestinationState, &rec.DestinationZip, blocks.Destination)
	setStr(&rec.PickupDate, blocks.PickupDate)
	setStr(&rec.DeliveryDate, blocks.DeliveryDate)

	for _, c := range ExtractDates(text) {
		d := NormalizeDate(c.Raw)
		switch c.Role {
		case RolePickup:
			setIfNil(&rec.PickupDate, d)
		case RoleDelivery:
			setIfNil(&rec.DeliveryDate, d)
		case RoleInvoice:
			setIfNil(&rec.InvoiceDate, d)
		case RoleGeneric:
			switch {
			case rec.PickupDate == nil:
				setStr(&rec.PickupDate, d)
			case rec.DeliveryDate == nil:
				setStr(&rec.DeliveryDate, d)
			case rec.InvoiceDate == nil:
				setStr(&rec.InvoiceDate, d)
			}
		}
	}

	if rec.OriginCity == nil && rec.OriginState == nil && rec.OriginZip == nil {
		setLocation(&rec.OriginCity, &rec.OriginState, &rec.OriginZip, ExtractLocation(text, Origin))
	}
	if rec.DestinationCity == nil && rec.DestinationState == nil && rec.DestinationZip == nil {
		setLocation(&rec.DestinationCity, &rec.DestinationState, &rec.DestinationZip, ExtractLocation(text, Destination))
	}

	applyMoney(rec, ExtractMoney(text))

	if rec.TotalRate == nil && rec.AmountDue != nil {
		v := *rec.AmountDue
		rec.TotalRate = &v
	}

	spec := ExtractLoadSpec(text)
	setStr(&rec.Commodity, spec.Commodity)
	rec.Weight = spec.Weight
	setStr(&rec.EquipmentType, spec.EquipmentType)

	p := ExtractParties(text)
	setStr(&rec.BrokerName, p.BrokerName)
	setStr(&rec.TruckNumber, p.TruckNumber)
	setStr(&rec.ClientName, p.ClientName)
	setStr(&rec.ClientAddress, p.ClientAddress)
	setStr(&rec.ClientPhone, p.ClientPhone)
	setStr(&rec.ClientCity, p.ClientCity)
	setStr(&rec.ClientState, p.ClientState)
	setStr(&rec.ClientZip, p.ClientZip)

	rec.ApplyCaps()
	return rec
}

func applyMoney(rec *entity.ExtractedRecord, hits []MoneyHit) {
	for _, h := range hits {
		switch h.Field {
		case FieldAmountDue:
			setF64IfNil(&rec.AmountDue, h.Amount)
		case FieldTotalRate:
			setF64IfNil(&rec.TotalRate, h.Amount)
		case FieldLineHaul:
			setF64IfNil(&rec.LineHaul, h.Amount)
		case FieldRatePerMile:
			setF64IfNil(&rec.RatePerMile, h.Amount)
		case FieldFactoringFee:
			setF64IfNil(&rec.FactoringFee, h.Amount)
		case FieldDetention:
			if rec.Detention == nil {
				rec.SetDetention(h.Amount)
			}
		case FieldLumper:
			if rec.Lumper == nil {
				rec.SetLumper(h.Amount)
			}
		case FieldAccessorials:
			if _, ok := rec.Accessorials[entity.AccessorialOther]; !ok {
				rec.Accessorials[entity.AccessorialOther] = h.Amount
			}
		}
	}
}

func setLocation(city, state, zip **string, loc Location) {
	setStr(city, loc.City)
	setStr(state, loc.State)
	setStr(zip, loc.Zip)
}

func setStr(p **string, v string) {
	if v == "" {
		return
	}
	*p = &v
}

func setIfNil(p **string, v string) {
	if *p == nil {
		setStr(p, v)
	}
}

func setF64IfNil(p **float64, v float64) {
	if *p == nil {
		*p = &v
	}
}

// RegexExtractor is the rule-based RecordExtractor. It never fails.
type RegexExtractor struct {
	logger *slog.Logger
}

func NewRegexExtractor(logger *slog.Logger) *RegexExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegexExtractor{logger: logger}
}

func (e *RegexExtractor) ExtractRecord(_ context.Context, text string) (*entity.ExtractedRecord, error) {
	start := time.Now()
	rec := Structured(text)
	e.logger.Debug("extract.regex.ok",
		"text_len", len(text),
		"has_origin", rec.HasOrigin(),
		"has_destination", rec.HasDestination(),
		"has_base_cost", rec.BaseCost() != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}
