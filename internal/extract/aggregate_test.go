package extract_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/extract"
)

const sampleInvoice = `FAST FREIGHT LLC
Invoice Date: 03/10/2023
Broker: Acme Logistics Inc
Truck #: T-118

PU 1
Waverly Distribution
123 Elm St
Waverly NY 14892
03/05/23

SO 2
Hiram Foods
44 Main Rd
Hiram OH 44234
03/07/23

Commodity: Frozen Vegetables
Weight: 42,000 lbs
Equipment: Reefer 53'

Line Haul: $1,800.00
Detention: $150.00
Lumper: $75.00
Amount Due: $2,025.00

Bill To: Acme Logistics Inc
500 Market St
Chicago, IL 60601 (312) 555-0199`

func TestStructured_Invoice(t *testing.T) {
	rec := extract.Structured(sampleInvoice)

	str := func(p *string) string {
		if p == nil {
			return "<nil>"
		}
		return *p
	}
	assert.Equal(t, "2023-03-10", str(rec.InvoiceDate))
	assert.Equal(t, "2023-03-05", str(rec.PickupDate))
	assert.Equal(t, "2023-03-07", str(rec.DeliveryDate))
	assert.Equal(t, "WAVERLY", str(rec.OriginCity))
	assert.Equal(t, "NY", str(rec.OriginState))
	assert.Equal(t, "14892", str(rec.OriginZip))
	assert.Equal(t, "HIRAM", str(rec.DestinationCity))
	assert.Equal(t, "OH", str(rec.DestinationState))
	assert.Equal(t, "44234", str(rec.DestinationZip))
	assert.Equal(t, "Frozen Vegetables", str(rec.Commodity))
	assert.Equal(t, "reefer", str(rec.EquipmentType))
	assert.Equal(t, "Acme Logistics Inc", str(rec.BrokerName))
	assert.Equal(t, "T-118", str(rec.TruckNumber))
	assert.Equal(t, "Acme Logistics Inc", str(rec.ClientName))
	assert.Equal(t, "Chicago", str(rec.ClientCity))

	require.NotNil(t, rec.Weight)
	assert.Equal(t, 42000, *rec.Weight)
	require.NotNil(t, rec.LineHaul)
	assert.Equal(t, 1800.0, *rec.LineHaul)
	require.NotNil(t, rec.AmountDue)
	assert.Equal(t, 2025.0, *rec.AmountDue)
	require.NotNil(t, rec.TotalRate)
	assert.Equal(t, 2025.0, *rec.TotalRate)
	assert.Nil(t, rec.RatePerMile)
	assert.Nil(t, rec.Miles)
	assert.Equal(t, map[string]float64{"detention": 150, "lumper": 75}, rec.Accessorials)
}

func TestStructured_Idempotent(t *testing.T) {
	a, err := json.Marshal(extract.Structured(sampleInvoice))
	require.NoError(t, err)
	b, err := json.Marshal(extract.Structured(sampleInvoice))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestStructured_EmptyTextHasEveryKey(t *testing.T) {
	raw, err := json.Marshal(extract.Structured(""))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{
		"invoice_date", "pickup_date", "delivery_date",
		"origin_city", "origin_state", "origin_zip",
		"destination_city", "destination_state", "destination_zip",
		"total_rate", "line_haul", "rate_per_mile", "amount_due", "miles",
		"detention", "lumper", "factoring_fee", "accessorials",
		"commodity", "weight", "equipment_type",
		"broker_name", "truck_number",
		"client_name", "client_address", "client_phone", "client_city", "client_state", "client_zip",
	} {
		assert.Contains(t, m, key)
	}
}

func TestStructured_CapsLongBrokerName(t *testing.T) {
	rec := extract.Structured("Broker: " + strings.Repeat("A", 500))

	require.NotNil(t, rec.BrokerName)
	assert.Len(t, *rec.BrokerName, 200)
}

func TestRegexExtractor_NeverFails(t *testing.T) {
	rec, err := extract.NewRegexExtractor(nil).ExtractRecord(context.Background(), "nothing useful here")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.HasOrigin())
}
