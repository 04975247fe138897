package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightbite/freight-extract/internal/extract"
)

func TestExtractStopBlocks_SplitsAtDeliveryMarker(t *testing.T) {
	got := extract.ExtractStopBlocks("PU 1 Waverly NY 14892 ... SO 2 Hiram OH 44234")

	assert.Equal(t, extract.Location{City: "WAVERLY", State: "NY", Zip: "14892"}, got.Origin)
	assert.Equal(t, extract.Location{City: "HIRAM", State: "OH", Zip: "44234"}, got.Destination)
	assert.Empty(t, got.PickupDate)
	assert.Empty(t, got.DeliveryDate)
}

func TestExtractStopBlocks_LastAddressAndFirstDate(t *testing.T) {
	text := "PU 1\nWarehouse 9\nElmira NY 14901\nWaverly NY 14892\n03/05/23 03/06/23\nSO 2\nHiram OH 44234\n3/7/2023"

	got := extract.ExtractStopBlocks(text)

	assert.Equal(t, "WAVERLY", got.Origin.City)
	assert.Equal(t, "2023-03-05", got.PickupDate)
	assert.Equal(t, "HIRAM", got.Destination.City)
	assert.Equal(t, "2023-03-07", got.DeliveryDate)
}

func TestExtractStopBlocks_NoMarkers(t *testing.T) {
	got := extract.ExtractStopBlocks("Waverly NY 14892")
	assert.True(t, got.Origin.IsZero())
	assert.True(t, got.Destination.IsZero())
}

func TestExtractLocation_Labeled(t *testing.T) {
	text := "Origin: Waverly NY 14892\nDestination: Hiram OH 44234"

	assert.Equal(t, extract.Location{City: "Waverly", State: "NY", Zip: "14892"}, extract.ExtractLocation(text, extract.Origin))
	assert.Equal(t, extract.Location{City: "Hiram", State: "OH", Zip: "44234"}, extract.ExtractLocation(text, extract.Destination))
}

func TestExtractLocation_LabelMustBeWholeWord(t *testing.T) {
	assert.True(t, extract.ExtractLocation("Toledo OH 43601\n", extract.Destination).IsZero())
	assert.True(t, extract.ExtractLocation("Fromberg MT 59029\n", extract.Origin).IsZero())
	assert.Equal(t, extract.Location{City: "Toledo", State: "OH", Zip: "43601"},
		extract.ExtractLocation("Ship to: Toledo OH 43601", extract.Destination))

	rec := extract.Structured("Invoice total 900")
	assert.Nil(t, rec.DestinationCity)
	assert.Nil(t, rec.OriginCity)
}

func TestExtractLocation_CommaFallback(t *testing.T) {
	got := extract.ExtractLocation("Load #5\nAkron, OH 44301", extract.Origin)
	assert.Equal(t, extract.Location{City: "Akron", State: "OH", Zip: "44301"}, got)
}

func TestExtractLoadSpec(t *testing.T) {
	got := extract.ExtractLoadSpec("Commodity: Frozen Vegetables\nWeight: 42,000 lbs\nEquipment: Reefer 53'")

	if assert.NotNil(t, got.Weight) {
		assert.Equal(t, 42000, *got.Weight)
	}
	assert.Equal(t, "Frozen Vegetables", got.Commodity)
	assert.Equal(t, "reefer", got.EquipmentType)
}

func TestExtractLoadSpec_PlainWeight(t *testing.T) {
	got := extract.ExtractLoadSpec("GROSS 43500 LBS")
	if assert.NotNil(t, got.Weight) {
		assert.Equal(t, 43500, *got.Weight)
	}
}

func TestExtractParties_ClientBlock(t *testing.T) {
	text := "Broker: Acme Logistics Inc\nTruck #: T-118\n\nBill To: Acme Logistics Inc\n500 Market St\nChicago, IL 60601 (312) 555-0199\n\nThanks"

	got := extract.ExtractParties(text)

	assert.Equal(t, extract.Parties{
		BrokerName:    "Acme Logistics Inc",
		TruckNumber:   "T-118",
		ClientName:    "Acme Logistics Inc",
		ClientAddress: "500 Market St",
		ClientPhone:   "(312) 555-0199",
		ClientCity:    "Chicago",
		ClientState:   "IL",
		ClientZip:     "60601",
	}, got)
}
