package mileage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/freightbite/freight-extract/internal/geo"
	"github.com/freightbite/freight-extract/internal/mileage"
)

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(ctx context.Context, city, state, zip string) (geo.Point, bool, error) {
	args := m.Called(ctx, city, state, zip)
	return args.Get(0).(geo.Point), args.Bool(1), args.Error(2)
}

type mockRouter struct{ mock.Mock }

func (m *mockRouter) DrivingMiles(ctx context.Context, from, to geo.Point) (float64, bool, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func str(s string) *string   { return &s }
func num(v float64) *float64 { return &v }

func lane(base float64) *entity.ExtractedRecord {
	rec := entity.NewExtractedRecord()
	rec.OriginCity, rec.OriginState, rec.OriginZip = str("WAVERLY"), str("NY"), str("14892")
	rec.DestinationCity, rec.DestinationState, rec.DestinationZip = str("HIRAM"), str("OH"), str("44234")
	rec.TotalRate = num(base)
	return rec
}

var (
	waverly = geo.Point{Lat: 42.01, Lng: -76.53}
	hiram   = geo.Point{Lat: 41.31, Lng: -81.14}
)

func TestResolve_RoutedDistanceSetsRatePerMile(t *testing.T) {
	g, r := &mockGeocoder{}, &mockRouter{}
	g.On("Geocode", mock.Anything, "WAVERLY", "NY", "14892").Return(waverly, true, nil).Once()
	g.On("Geocode", mock.Anything, "HIRAM", "OH", "44234").Return(hiram, true, nil).Once()
	r.On("DrivingMiles", mock.Anything, waverly, hiram).Return(500.0, true, nil)

	rec := lane(1000)
	mileage.NewResolver(g, r, nil).Resolve(context.Background(), rec)

	require.NotNil(t, rec.Miles)
	assert.Equal(t, 500.0, *rec.Miles)
	require.NotNil(t, rec.RatePerMile)
	assert.Equal(t, 2.00, *rec.RatePerMile)
	g.AssertExpectations(t)
	r.AssertExpectations(t)
}

func TestResolve_RoutedDistanceOverridesPrintedRate(t *testing.T) {
	g, r := &mockGeocoder{}, &mockRouter{}
	g.On("Geocode", mock.Anything, "WAVERLY", "NY", "14892").Return(waverly, true, nil)
	g.On("Geocode", mock.Anything, "HIRAM", "OH", "44234").Return(hiram, true, nil)
	r.On("DrivingMiles", mock.Anything, waverly, hiram).Return(300.0, true, nil)

	rec := lane(900)
	rec.RatePerMile = num(2.5)
	mileage.NewResolver(g, r, nil).Resolve(context.Background(), rec)

	assert.Equal(t, 300.0, *rec.Miles)
	assert.Equal(t, 3.0, *rec.RatePerMile)
}

func TestResolve_PrintedRateGivesMiles(t *testing.T) {
	rec := entity.NewExtractedRecord()
	rec.AmountDue = num(1000)
	rec.RatePerMile = num(2.5)

	mileage.NewResolver(&mockGeocoder{}, &mockRouter{}, nil).Resolve(context.Background(), rec)

	require.NotNil(t, rec.Miles)
	assert.Equal(t, 400.0, *rec.Miles)
	assert.Equal(t, 2.5, *rec.RatePerMile)
}

func TestResolve_LookupsFailLeaveNulls(t *testing.T) {
	g, r := &mockGeocoder{}, &mockRouter{}
	g.On("Geocode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(geo.Point{}, false, errors.New("connection refused"))

	rec := lane(1000)
	assert.NotPanics(t, func() {
		mileage.NewResolver(g, r, nil).Resolve(context.Background(), rec)
	})

	assert.Nil(t, rec.Miles)
	assert.Nil(t, rec.RatePerMile)
	r.AssertNotCalled(t, "DrivingMiles", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_RouteFailureFallsBackToPrintedRate(t *testing.T) {
	g, r := &mockGeocoder{}, &mockRouter{}
	g.On("Geocode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(waverly, true, nil)
	r.On("DrivingMiles", mock.Anything, mock.Anything, mock.Anything).Return(0.0, false, errors.New("timeout"))

	rec := lane(1000)
	rec.RatePerMile = num(2.5)
	mileage.NewResolver(g, r, nil).Resolve(context.Background(), rec)

	require.NotNil(t, rec.Miles)
	assert.Equal(t, 400.0, *rec.Miles)
}

func TestResolve_NoBaseCostKeepsDistanceOnly(t *testing.T) {
	g, r := &mockGeocoder{}, &mockRouter{}
	g.On("Geocode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(waverly, true, nil)
	r.On("DrivingMiles", mock.Anything, mock.Anything, mock.Anything).Return(123.4, true, nil)

	rec := lane(0)
	rec.TotalRate = nil
	mileage.NewResolver(g, r, nil).Resolve(context.Background(), rec)

	assert.Equal(t, 123.4, *rec.Miles)
	assert.Nil(t, rec.RatePerMile)
}

func TestResolve_NilCollaboratorsUsePrintedRate(t *testing.T) {
	rec := lane(1000)
	rec.RatePerMile = num(2.0)
	mileage.NewResolver(nil, nil, nil).Resolve(context.Background(), rec)

	assert.Equal(t, 500.0, *rec.Miles)
}
