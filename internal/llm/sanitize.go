package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/freightbite/freight-extract/internal/extract"
)

var (
	reISODate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reMoneyJunk = regexp.MustCompile(`(?i)[$,\s]|usd`)
	reNonDigit  = regexp.MustCompile(`[^\d.]`)

	recordDateKeys = []string{"pickup_date", "delivery_date", "invoice_date"}
)

// NormalizeAndSanitizeJSON reshapes an LLM reply toward the record schema:
//   - renames common synonyms (rpm -> rate_per_mile, total -> total_rate, ...)
//   - coerces money strings like "$1,200.00" to numbers, drops negatives
//   - coerces weight to an integer and numeric zips/phones to strings
//   - normalizes M/D/YY dates, nulls anything that still is not YYYY-MM-DD
//   - removes unknown keys
//
// Values that cannot be coerced become null so the key set stays complete.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if cur, exists := m[to]; !exists || cur == nil {
				m[to] = v
			}
			delete(m, from)
		}
	}
	renamed("rpm", "rate_per_mile")
	renamed("total", "total_rate")
	renamed("balance_due", "amount_due")
	renamed("linehaul", "line_haul")
	renamed("equipment", "equipment_type")
	renamed("broker", "broker_name")
	renamed("truck", "truck_number")
	renamed("weight_lbs", "weight")

	for _, k := range recordMoneyKeys {
		if v, ok := m[k]; ok {
			f, keep := coerceMoney(v)
			if !keep {
				m[k] = nil
				dropped = append(dropped, k)
				continue
			}
			m[k] = f
		}
	}

	if v, ok := m["weight"]; ok && v != nil {
		if w, keep := coerceWeight(v); keep {
			m["weight"] = w
		} else {
			m["weight"] = nil
			dropped = append(dropped, "weight")
		}
	}

	for _, k := range recordStringKeys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				m[k] = nil
			} else {
				m[k] = s
			}
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			m[k] = nil
			dropped = append(dropped, k+"(type)")
		}
	}

	for _, k := range recordDateKeys {
		s, ok := m[k].(string)
		if !ok {
			continue
		}
		d := extract.NormalizeDate(s)
		if !reISODate.MatchString(d) {
			m[k] = nil
			dropped = append(dropped, k+"(format)")
			continue
		}
		m[k] = d
	}

	if v, ok := m["accessorials"]; ok && v != nil {
		acc, isMap := v.(map[string]any)
		if !isMap {
			m["accessorials"] = nil
			dropped = append(dropped, "accessorials(type)")
		} else {
			for name, amt := range maps.Clone(acc) {
				f, keep := coerceMoney(amt)
				if !keep || f == nil {
					delete(acc, name)
					dropped = append(dropped, "accessorials."+name)
					continue
				}
				acc[name] = f
			}
		}
	}

	allowed := map[string]struct{}{"weight": {}, "accessorials": {}}
	for _, k := range recordStringKeys {
		allowed[k] = struct{}{}
	}
	for _, k := range recordMoneyKeys {
		allowed[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// coerceMoney returns the number to store (nil for an explicit null) and whether to keep it.
func coerceMoney(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case float64:
		if t < 0 {
			return nil, false
		}
		return t, true
	case string:
		s := reMoneyJunk.ReplaceAllString(t, "")
		if s == "" || strings.EqualFold(s, "null") {
			return nil, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}

func coerceWeight(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return int(math.Round(t)), true
	case string:
		s := reNonDigit.ReplaceAllString(t, "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}
