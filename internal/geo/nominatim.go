package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent   = "freightbite-pdf-extract"
	DefaultMinInterval = time.Second
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

type NominatimConfig struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration // spacing between requests; negative disables the gate
	Timeout     time.Duration
}

// Nominatim geocodes US city/state/zip triples. Every request goes through its Gate.
type Nominatim struct {
	cfg  NominatimConfig
	gate *Gate
	http *http.Client
	log  *slog.Logger
}

func NewNominatim(cfg NominatimConfig, logger *slog.Logger) *Nominatim {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeocoderURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Nominatim{
		cfg:  cfg,
		gate: NewGate(cfg.MinInterval),
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// Geocode resolves a location. The full "City, ST, zip" query goes first; when a zip was
// given and that query finds nothing, "City, ST" is tried. ok is false when nothing matched.
func (n *Nominatim) Geocode(ctx context.Context, city, state, zip string) (Point, bool, error) {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	if len(state) > 2 {
		state = state[:2]
	}
	zip = strings.TrimSpace(zip)
	if city == "" && state == "" {
		return Point{}, false, nil
	}
	if city != "" {
		// Nominatim matches "Waverly" more reliably than "WAVERLY".
		city = cases.Title(language.English).String(city)
	}

	p, ok, firstErr := n.search(ctx, nonEmpty(city, state, zip))
	if ok {
		return p, true, nil
	}
	if zip != "" {
		p, ok, err := n.search(ctx, nonEmpty(city, state))
		if ok {
			return p, true, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return Point{}, false, firstErr
}

func (n *Nominatim) search(ctx context.Context, parts []string) (Point, bool, error) {
	if len(parts) == 0 {
		return Point{}, false, nil
	}
	if err := n.gate.Wait(ctx); err != nil {
		return Point{}, false, err
	}

	q := strings.Join(parts, ", ") + ", USA"
	u := strings.TrimRight(n.cfg.BaseURL, "/") + "/search?" + url.Values{
		"q":      {q},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Point{}, false, err
	}
	req.Header.Set("User-Agent", n.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return Point{}, false, fmt.Errorf("nominatim: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Point{}, false, fmt.Errorf("nominatim: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Point{}, false, fmt.Errorf("nominatim: status %d", resp.StatusCode)
	}

	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &hits); err != nil {
		return Point{}, false, fmt.Errorf("nominatim: decode: %w", err)
	}
	if len(hits) == 0 {
		n.log.Debug("geo.geocode.miss", "query", q)
		return Point{}, false, nil
	}
	lat, err1 := strconv.ParseFloat(hits[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(hits[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return Point{}, false, fmt.Errorf("nominatim: bad coordinates %q,%q", hits[0].Lat, hits[0].Lon)
	}
	n.log.Debug("geo.geocode.hit", "query", q, "lat", lat, "lng", lng)
	return Point{Lat: lat, Lng: lng}, true, nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
