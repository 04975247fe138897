package mileage

import (
	"context"
	"log/slog"
	"math"

	"github.com/freightbite/freight-extract/internal/entity"
	"github.com/freightbite/freight-extract/internal/geo"
)

// Geocoder resolves a city/state/zip to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city, state, zip string) (geo.Point, bool, error)
}

// Router returns driving miles between two points.
type Router interface {
	DrivingMiles(ctx context.Context, from, to geo.Point) (float64, bool, error)
}

// Resolver fills miles and reconciles rate_per_mile against the base cost.
type Resolver struct {
	geocoder Geocoder
	router   Router
	log      *slog.Logger
}

// NewResolver returns a Resolver. With a nil geocoder or router only the printed
// rate_per_mile path is available.
func NewResolver(g Geocoder, r Router, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{geocoder: g, router: r, log: logger}
}

// Resolve mutates rec in place:
//  1. origin and destination known: geocode both, route, and when the distance and base
//     cost are positive set rate_per_mile = base/miles
//  2. otherwise (including when step 1 found no distance), a printed rate_per_mile gives
//     miles = base/rate
//  3. otherwise miles stays null
//
// Finally, when miles and base cost exist and rate_per_mile is null or zero it is derived.
// Lookup failures are logged and never returned.
func (r *Resolver) Resolve(ctx context.Context, rec *entity.ExtractedRecord) {
	if rec == nil {
		return
	}
	base := positive(rec.BaseCost())

	var routed bool
	if rec.HasOrigin() && rec.HasDestination() && r.geocoder != nil && r.router != nil {
		if miles, ok := r.route(ctx, rec); ok {
			routed = true
			rec.Miles = &miles
			if base > 0 {
				rec.RatePerMile = ptr(round(base/miles, 2))
			}
		}
	}

	if !routed {
		if rpm := positive(rec.RatePerMile); base > 0 && rpm > 0 {
			rec.Miles = ptr(round(base/rpm, 1))
			rec.RatePerMile = ptr(round(rpm, 2))
		} else {
			rec.Miles = nil
		}
	}

	if miles := positive(rec.Miles); miles > 0 && base > 0 && (rec.RatePerMile == nil || *rec.RatePerMile == 0) {
		rec.RatePerMile = ptr(round(base/miles, 2))
	}

	r.log.Debug("mileage.resolved",
		"routed", routed,
		"has_miles", rec.Miles != nil,
		"has_rate_per_mile", rec.RatePerMile != nil,
	)
}

func (r *Resolver) route(ctx context.Context, rec *entity.ExtractedRecord) (float64, bool) {
	from, ok := r.geocode(ctx, "origin", rec.OriginCity, rec.OriginState, rec.OriginZip)
	if !ok {
		return 0, false
	}
	to, ok := r.geocode(ctx, "destination", rec.DestinationCity, rec.DestinationState, rec.DestinationZip)
	if !ok {
		return 0, false
	}
	miles, ok, err := r.router.DrivingMiles(ctx, from, to)
	if err != nil {
		r.log.Warn("mileage.route.failed", "error", err)
		return 0, false
	}
	if !ok || miles <= 0 {
		r.log.Info("mileage.route.none")
		return 0, false
	}
	return miles, true
}

func (r *Resolver) geocode(ctx context.Context, side string, city, state, zip *string) (geo.Point, bool) {
	p, ok, err := r.geocoder.Geocode(ctx, entity.Deref(city), entity.Deref(state), entity.Deref(zip))
	if err != nil {
		r.log.Warn("mileage.geocode.failed", "side", side, "error", err)
		return geo.Point{}, false
	}
	if !ok {
		r.log.Info("mileage.geocode.miss", "side", side, "city", entity.Deref(city), "state", entity.Deref(state))
	}
	return p, ok
}

func positive(p *float64) float64 {
	if p == nil || *p <= 0 {
		return 0
	}
	return *p
}

func round(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}

func ptr(v float64) *float64 { return &v }
