package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/freightbite/freight-extract/internal/entity"
)

// LoadSpec is weight, commodity and equipment.
type LoadSpec struct {
	Weight        *int
	Commodity     string
	EquipmentType string
}

var reWeight = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)\s*(?:lbs?|pounds)\b`)

var commodityLabels = labelPatterns("commodity", "description", "product", "freight")

// EquipmentVocabulary is checked in order; the first literal found wins.
var EquipmentVocabulary = []string{
	"dry van", "reefer", "flatbed", "step deck", "hot shot", "box truck",
	"53'", "48'", "53ft", "48ft",
}

// ExtractLoadSpec pulls weight in pounds, the commodity line and the equipment type.
func ExtractLoadSpec(text string) LoadSpec {
	var out LoadSpec
	if m := reWeight.FindStringSubmatch(text); m != nil {
		if w, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			out.Weight = &w
		}
	}
	if v, ok := firstLabeledLine(text, commodityLabels); ok {
		out.Commodity = entity.Truncate(v, entity.MaxCommodityLen)
	}
	lower := strings.ToLower(text)
	for _, eq := range EquipmentVocabulary {
		if strings.Contains(lower, eq) {
			out.EquipmentType = eq
			break
		}
	}
	return out
}

// labelPatterns compiles "label: rest of line" patterns, one per label, in order.
func labelPatterns(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(labels))
	for i, l := range labels {
		out[i] = regexp.MustCompile(`(?i)` + l + `\s*[:\s]+([^\n]+)`)
	}
	return out
}

// firstLabeledLine returns the trimmed capture of the first pattern that matches.
func firstLabeledLine(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
