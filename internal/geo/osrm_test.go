package geo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightbite/freight-extract/internal/geo"
)

func TestOSRM_DrivingMiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/-76.5,42;-81.14,41.31", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("overview"))
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":804672}]}`))
	}))
	defer srv.Close()

	o := geo.NewOSRM(geo.OSRMConfig{BaseURL: srv.URL}, nil)
	miles, ok, err := o.DrivingMiles(context.Background(), geo.Point{Lat: 42, Lng: -76.5}, geo.Point{Lat: 41.31, Lng: -81.14})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 500.0, miles)
}

func TestOSRM_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"Impossible route"}`))
	}))
	defer srv.Close()

	_, ok, err := geo.NewOSRM(geo.OSRMConfig{BaseURL: srv.URL}, nil).DrivingMiles(context.Background(), geo.Point{}, geo.Point{Lat: 1, Lng: 1})
	assert.NoError(t, err)
	assert.False(t, ok)
}
