package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// MoneyField names the record field a dollar amount is assigned to.
type MoneyField string

const (
	FieldAmountDue    MoneyField = "amount_due"
	FieldRatePerMile  MoneyField = "rate_per_mile"
	FieldTotalRate    MoneyField = "total_rate"
	FieldLineHaul     MoneyField = "line_haul"
	FieldDetention    MoneyField = "detention"
	FieldLumper       MoneyField = "lumper"
	FieldAccessorials MoneyField = "accessorials"
	FieldFactoringFee MoneyField = "factoring_fee"
)

// MoneyHit is one labeled amount.
type MoneyHit struct {
	Field  MoneyField
	Amount float64
}

// labelRule matches when re matches somewhere not immediately followed by notFollowedBy.
type labelRule struct {
	field         MoneyField
	re            *regexp.Regexp
	notFollowedBy *regexp.Regexp
}

func (r labelRule) match(s string) bool {
	for _, loc := range r.re.FindAllStringIndex(s, -1) {
		if r.notFollowedBy == nil || !r.notFollowedBy.MatchString(s[loc[1]:]) {
			return true
		}
	}
	return false
}

var rePerMileAhead = regexp.MustCompile(`^\s*per\s*mile`)

// moneyLabels is tested top to bottom on each lower-cased line; the first hit owns the line.
// rate_per_mile sits above total_rate so "$/mi" never lands in total_rate.
var moneyLabels = []labelRule{
	{field: FieldAmountDue, re: regexp.MustCompile(`amount\s*due|balance\s*due|balance\s*owed|amount\s*owed|payable\s*amount`)},
	{field: FieldRatePerMile, re: regexp.MustCompile(`rate\s*per\s*mile|per\s*mile|/\s*mi\b|\$\s*per\s*mile|rpm\b`)},
	{field: FieldTotalRate, re: regexp.MustCompile(`total\s*rate|total\s*amount|grand\s*total|invoice\s*total|total\s*charges|total\s*due|` +
		`sum\s*due|net\s*amount|pay\s*this\s*amount|freight\s*total|total\s*freight|` +
		`shipment\s*total|total\s*invoice|bill\s*total|price\b|load\s*rate|freight\s*rate`)},
	{field: FieldTotalRate, re: regexp.MustCompile(`\brate\b`), notFollowedBy: rePerMileAhead},
	{field: FieldLineHaul, re: regexp.MustCompile(`line\s*haul|linehaul|freight\s*charge|freight\s*charges|haul\s*rate`)},
	{field: FieldDetention, re: regexp.MustCompile(`detention`)},
	{field: FieldLumper, re: regexp.MustCompile(`lumper|lumpers`)},
	{field: FieldAccessorials, re: regexp.MustCompile(`accessorial|accessorials`)},
	{field: FieldFactoringFee, re: regexp.MustCompile(`factoring|factor\s*fee`)},
}

var reAmount = regexp.MustCompile(`\$?\s*([\d,]+(?:\.\d{1,2})?)`)

// fallbackRule is a whole-text pattern: a label, then an amount right after it. A hit
// whose line matches lineReject is skipped.
type fallbackRule struct {
	field         MoneyField
	label         *regexp.Regexp
	notFollowedBy *regexp.Regexp
	lineReject    *regexp.Regexp
}

var reAmountTail = regexp.MustCompile(`^\s*(?:\(USD\))?\s*[:\s]*\$?\s*([\d,]+(?:\.\d{1,2})?)`)

// rePerMileLine marks a line that quotes a per-mile rate anywhere on it.
var rePerMileLine = regexp.MustCompile(`(?i)per\s*mile|/\s*mi\b|\brpm\b`)

var moneyFallbacks = []fallbackRule{
	{field: FieldAmountDue, label: regexp.MustCompile(`(?i)amount\s*due`)},
	{field: FieldAmountDue, label: regexp.MustCompile(`(?i)balance\s*due`)},
	{field: FieldTotalRate, label: regexp.MustCompile(`(?i)total\s*(?:rate|amount|charges|due|freight|invoice)`)},
	{field: FieldTotalRate, label: regexp.MustCompile(`(?i)(?:grand\s*total|invoice\s*total|net\s*amount)`)},
	{field: FieldTotalRate, label: regexp.MustCompile(`(?i)(?:price|\brate\b)`), notFollowedBy: regexp.MustCompile(`(?i)^\s*per\s*mile`),
		lineReject: rePerMileLine},
	{field: FieldLineHaul, label: regexp.MustCompile(`(?i)line\s*haul`)},
}

// ExtractMoney scans text line by line against moneyLabels, then runs the whole-text
// fallbacks for fields the line pass did not find. Hits come back in discovery order.
func ExtractMoney(text string) []MoneyHit {
	lines := strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n")
	var hits []MoneyHit
	found := map[MoneyField]bool{}

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, rule := range moneyLabels {
			if !rule.match(lower) {
				continue
			}
			amount, ok := lineAmount(line)
			if !ok && i+1 < len(lines) && !hasAmount(line) {
				amount, ok = lineAmount(lines[i+1])
			}
			if ok {
				hits = append(hits, MoneyHit{Field: rule.field, Amount: amount})
				found[rule.field] = true
			}
			break
		}
	}

	for _, fb := range moneyFallbacks {
		if found[fb.field] {
			continue
		}
		if amount, ok := fb.find(text); ok {
			hits = append(hits, MoneyHit{Field: fb.field, Amount: amount})
			found[fb.field] = true
		}
	}
	return hits
}

// find returns the amount after the first usable label occurrence.
func (fb fallbackRule) find(text string) (float64, bool) {
	for _, loc := range fb.label.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if fb.notFollowedBy != nil && fb.notFollowedBy.MatchString(rest) {
			continue
		}
		if fb.lineReject != nil && fb.lineReject.MatchString(lineAt(text, loc[0], loc[1])) {
			continue
		}
		m := reAmountTail.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || v <= 0 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// lineAt returns the line of text holding [start, end).
func lineAt(text string, start, end int) string {
	from := strings.LastIndexByte(text[:start], '\n') + 1
	to := strings.IndexByte(text[end:], '\n')
	if to < 0 {
		return text[from:]
	}
	return text[from : end+to]
}

// lineAmount returns the first positive amount on line.
func lineAmount(line string) (float64, bool) {
	for _, m := range reAmount.FindAllStringSubmatch(strings.ReplaceAll(line, ",", ""), -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v > 0 {
			return v, true
		}
	}
	return 0, false
}

func hasAmount(line string) bool {
	return reAmount.MatchString(strings.ReplaceAll(line, ",", ""))
}
