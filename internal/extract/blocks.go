package extract

import (
	"regexp"
	"strings"

	"github.com/freightbite/freight-extract/internal/entity"
)

// Location is a city/state/zip triple; empty strings mean not found.
type Location struct {
	City  string
	State string
	Zip   string
}

// IsZero reports whether nothing was found.
func (l Location) IsZero() bool {
	return l.City == "" && l.State == "" && l.Zip == ""
}

// StopBlocks is what the pickup (PU) and delivery (SO) blocks yielded.
type StopBlocks struct {
	Origin       Location
	Destination  Location
	PickupDate   string // YYYY-MM-DD
	DeliveryDate string
}

var (
	rePickupMarker   = regexp.MustCompile(`(?i)\b(?:PU\s*1|PU\s*\d*|\bPU\b|Pickup)\b`)
	reDeliveryMarker = regexp.MustCompile(`(?i)\b(?:SO\s*2|SO\s*\d*|\bSO\b|Delivery|Dest\.?)\b`)
	// Case-sensitive on purpose: the state code must be printed in capitals.
	reBlockAddress = regexp.MustCompile(`\b(\w+)\s+([A-Z]{2})\s+(\d{5}(?:-\d{4})?)\b`)
)

// ExtractStopBlocks slices text into an origin block (after the first pickup marker, up
// to the delivery marker when that comes later) and a destination block (after the first
// delivery marker, up to the next pickup marker). Each block yields its last
// "City ST 12345" triple and its first date.
func ExtractStopBlocks(text string) StopBlocks {
	var out StopBlocks
	raw := strings.ReplaceAll(text, "\r", "\n")

	pu := rePickupMarker.FindStringIndex(raw)
	so := reDeliveryMarker.FindStringIndex(raw)

	if pu != nil {
		end := len(raw)
		if so != nil && so[0] > pu[0] {
			end = so[0]
		}
		if pu[1] <= end {
			block := raw[pu[1]:end]
			out.Origin = lastBlockAddress(block)
			out.PickupDate = firstDate(block)
		}
	}

	if so != nil {
		start := so[1]
		end := len(raw)
		if next := rePickupMarker.FindStringIndex(raw[start:]); next != nil && next[0] > 0 {
			end = start + next[0]
		}
		block := raw[start:end]
		out.Destination = lastBlockAddress(block)
		out.DeliveryDate = firstDate(block)
	}
	return out
}

func lastBlockAddress(block string) Location {
	all := reBlockAddress.FindAllStringSubmatch(block, -1)
	if len(all) == 0 {
		return Location{}
	}
	m := all[len(all)-1]
	return Location{
		City:  entity.Truncate(strings.ToUpper(strings.TrimSpace(m[1])), entity.MaxCityLen),
		State: entity.Truncate(strings.ToUpper(m[2]), entity.MaxStateLen),
		Zip:   m[3],
	}
}
