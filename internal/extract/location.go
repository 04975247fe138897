package extract

import (
	"regexp"
	"strings"

	"github.com/freightbite/freight-extract/internal/entity"
)

// Side selects which end of the lane a generic lookup is for.
type Side int

const (
	Origin Side = iota
	Destination
)

var (
	reOriginLabel = regexp.MustCompile(
		`(?i)\b(?:origin|from|pickup|ship\s*from)\b\s*[:\s]*([^\n]+?)(?:\s+(\w{2}))?\s+(\d{5}(?:-\d{4})?)?`)
	reDestinationLabel = regexp.MustCompile(
		`(?i)\b(?:destination|dest|to|delivery|ship\s*to)\b\s*[:\s]*([^\n]+?)(?:\s+(\w{2}))?\s+(\d{5}(?:-\d{4})?)?`)
	reCommaCityStateZip = regexp.MustCompile(`([A-Za-z \t.\-]+),\s*([A-Z]{2})\s+(\d{5}(?:-\d{4})?)`)
)

// ExtractLocation is the fallback for when the PU/SO blocks found nothing for side.
// It tries a labeled "origin:"/"to:" style phrase, then the first bare "City, ST 12345".
func ExtractLocation(text string, side Side) Location {
	re := reOriginLabel
	if side == Destination {
		re = reDestinationLabel
	}

	var out Location
	if m := re.FindStringSubmatch(text); m != nil {
		city := strings.TrimRight(strings.TrimSpace(m[1]), ",")
		if city != "" {
			out.City = entity.Truncate(city, entity.MaxCityLen)
		}
		if m[2] != "" {
			out.State = entity.Truncate(strings.ToUpper(m[2]), entity.MaxStateLen)
		}
		out.Zip = m[3]
	}

	if out.City == "" {
		if m := reCommaCityStateZip.FindStringSubmatch(text); m != nil {
			out.City = entity.Truncate(strings.TrimSpace(m[1]), entity.MaxCityLen)
			out.State = strings.ToUpper(m[2])
			out.Zip = m[3]
		}
	}
	return out
}
