package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultRouterURL = "http://router.project-osrm.org"
	metersToMiles    = 0.000621371
)

type OSRMConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OSRM returns driving distances from an OSRM route service.
type OSRM struct {
	cfg  OSRMConfig
	http *http.Client
	log  *slog.Logger
}

func NewOSRM(cfg OSRMConfig, logger *slog.Logger) *OSRM {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultRouterURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OSRM{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: logger}
}

// DrivingMiles returns the route length in miles rounded to one decimal.
// ok is false when the service found no route.
func (o *OSRM) DrivingMiles(ctx context.Context, from, to Point) (float64, bool, error) {
	coords := fmtCoord(from) + ";" + fmtCoord(to)
	u := strings.TrimRight(o.cfg.BaseURL, "/") + "/route/v1/driving/" + coords + "?overview=false"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, false, err
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("osrm: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, false, fmt.Errorf("osrm: read body: %w", err)
	}

	var out struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"` // meters
		} `json:"routes"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, false, fmt.Errorf("osrm: status %d: decode: %w", resp.StatusCode, err)
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		o.log.Debug("geo.route.miss", "code", out.Code, "status", resp.StatusCode)
		return 0, false, nil
	}
	miles := math.Round(out.Routes[0].Distance*metersToMiles*10) / 10
	return miles, true, nil
}

// OSRM takes lng,lat order.
func fmtCoord(p Point) string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
