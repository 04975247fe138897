package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DateRole is the best-guess meaning of a date found in the text.
type DateRole string

const (
	RolePickup   DateRole = "pickup_date"
	RoleDelivery DateRole = "delivery_date"
	RoleInvoice  DateRole = "invoice_date"
	RoleGeneric  DateRole = "date_generic"
)

// DateCandidate is a raw date string and the role its label suggests.
type DateCandidate struct {
	Role DateRole
	Raw  string
}

const dateShape = `\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`

type dateRule struct {
	re   *regexp.Regexp
	role DateRole
}

// Labeled rules first so a labeled date claims its raw string before the generic pass.
var dateRules = []dateRule{
	{regexp.MustCompile(`(?i)(?:pickup|pick\s*up|pu)\s*date[:\s]*(` + dateShape + `)`), RolePickup},
	{regexp.MustCompile(`(?i)(?:delivery|deliv)\s*date[:\s]*(` + dateShape + `)`), RoleDelivery},
	{regexp.MustCompile(`(?i)(?:invoice|inv)\s*date[:\s]*(` + dateShape + `)`), RoleInvoice},
	{regexp.MustCompile(`(` + dateShape + `)`), RoleGeneric},
}

var (
	reDateParts    = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})`)
	reDateAnywhere = regexp.MustCompile(dateShape)
)

// ExtractDates returns date candidates in rule order, de-duplicated by raw string.
func ExtractDates(text string) []DateCandidate {
	lower := strings.ToLower(text)
	seen := map[string]struct{}{}
	var out []DateCandidate
	for _, rule := range dateRules {
		for _, m := range rule.re.FindAllStringSubmatch(lower, -1) {
			raw := strings.TrimSpace(m[1])
			if raw == "" {
				continue
			}
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}
			out = append(out, DateCandidate{Role: rule.role, Raw: raw})
		}
	}
	return out
}

// NormalizeDate turns M/D/YY(YY) or M-D-YY(YY) into YYYY-MM-DD.
// Two-digit years are taken as 20YY. Anything else comes back trimmed but unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	m := reDateParts.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) != 4 {
		year += 2000
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// firstDate finds the first date-shaped substring of s, normalized, or "".
func firstDate(s string) string {
	raw := reDateAnywhere.FindString(s)
	if raw == "" {
		return ""
	}
	return NormalizeDate(raw)
}
