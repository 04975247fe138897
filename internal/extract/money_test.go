package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightbite/freight-extract/internal/extract"
)

func TestExtractMoney_RatePerMileNeverTotalRate(t *testing.T) {
	hits := extract.ExtractMoney("Rate per mile: $2.10")

	assert.Equal(t, []extract.MoneyHit{{Field: extract.FieldRatePerMile, Amount: 2.10}}, hits)
}

func TestExtractMoney_LabelTable(t *testing.T) {
	text := `Grand Total $2,000
Line Haul: $1,800.00
Detention: $150.00
Lumpers 75
Accessorials: $40
Factoring fee: $60.00
Balance Due: $1,940.00`

	hits := extract.ExtractMoney(text)

	assert.Equal(t, []extract.MoneyHit{
		{Field: extract.FieldTotalRate, Amount: 2000},
		{Field: extract.FieldLineHaul, Amount: 1800},
		{Field: extract.FieldDetention, Amount: 150},
		{Field: extract.FieldLumper, Amount: 75},
		{Field: extract.FieldAccessorials, Amount: 40},
		{Field: extract.FieldFactoringFee, Amount: 60},
		{Field: extract.FieldAmountDue, Amount: 1940},
	}, hits)
}

func TestExtractMoney_NextLineAmount(t *testing.T) {
	hits := extract.ExtractMoney("Total Rate\n$1,500.00")

	assert.Equal(t, []extract.MoneyHit{{Field: extract.FieldTotalRate, Amount: 1500}}, hits)
}

func TestExtractMoney_OneFieldPerLineThenWholeTextFallback(t *testing.T) {
	// The line belongs to amount_due; line haul is recovered by the whole-text pass.
	hits := extract.ExtractMoney("Amount Due / Line Haul: $900.00")

	assert.Equal(t, []extract.MoneyHit{
		{Field: extract.FieldAmountDue, Amount: 900},
		{Field: extract.FieldLineHaul, Amount: 900},
	}, hits)
}

func TestExtractMoney_ZeroDiscarded(t *testing.T) {
	assert.Empty(t, extract.ExtractMoney("Detention: $0.00"))
}

func TestExtractMoney_RateWordNotFollowedByPerMile(t *testing.T) {
	hits := extract.ExtractMoney("Rate: $1,250.00\nRate per mile: $2.50")

	assert.Equal(t, []extract.MoneyHit{
		{Field: extract.FieldTotalRate, Amount: 1250},
		{Field: extract.FieldRatePerMile, Amount: 2.50},
	}, hits)
}

func TestStructured_BackfillsTotalRateFromAmountDue(t *testing.T) {
	rec := extract.Structured("Amount Due: $1,200.00")

	if assert.NotNil(t, rec.AmountDue) && assert.NotNil(t, rec.TotalRate) {
		assert.Equal(t, 1200.0, *rec.AmountDue)
		assert.Equal(t, 1200.0, *rec.TotalRate)
	}
}

func TestStructured_RatePerMileLineLeavesTotalRateEmpty(t *testing.T) {
	rec := extract.Structured("Rate per mile: $2.10")

	if assert.NotNil(t, rec.RatePerMile) {
		assert.Equal(t, 2.10, *rec.RatePerMile)
	}
	assert.Nil(t, rec.TotalRate)
}

func TestStructured_PerMileQuotesNeverBecomeTotalRate(t *testing.T) {
	for text, want := range map[string]float64{
		"Rate: $2.10/mi":      2.10,
		"Rate $3.00 per mile": 3.00,
		"RPM rate 2.75":       2.75,
	} {
		t.Run(text, func(t *testing.T) {
			rec := extract.Structured(text)

			if assert.NotNil(t, rec.RatePerMile) {
				assert.Equal(t, want, *rec.RatePerMile)
			}
			assert.Nil(t, rec.TotalRate)
			assert.Nil(t, rec.BaseCost())
		})
	}
}

func TestExtractMoney_RateFallbackSkipsPerMileLineOnly(t *testing.T) {
	// line 2 belongs to amount_due, so total_rate can only come from the fallback
	hits := extract.ExtractMoney("Rate 2.75 RPM\nBalance due, rate 1,300.00")

	assert.Equal(t, []extract.MoneyHit{
		{Field: extract.FieldRatePerMile, Amount: 2.75},
		{Field: extract.FieldAmountDue, Amount: 1300},
		{Field: extract.FieldTotalRate, Amount: 1300},
	}, hits)
}

func TestExtractMoney_SingleDecimalKept(t *testing.T) {
	assert.Equal(t, []extract.MoneyHit{{Field: extract.FieldRatePerMile, Amount: 2.5}},
		extract.ExtractMoney("Rate per mile: 2.5"))
	assert.Equal(t, []extract.MoneyHit{{Field: extract.FieldLineHaul, Amount: 1800.5}},
		extract.ExtractMoney("Line Haul: $1,800.5"))
}

func TestStructured_DetentionMirrored(t *testing.T) {
	rec := extract.Structured("Detention: $150")

	if assert.NotNil(t, rec.Detention) {
		assert.Equal(t, 150.0, *rec.Detention)
	}
	assert.Equal(t, 150.0, rec.Accessorials["detention"])
}
