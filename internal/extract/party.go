package extract

import (
	"regexp"
	"strings"

	"github.com/freightbite/freight-extract/internal/entity"
)

// Parties holds broker/truck and client details.
type Parties struct {
	BrokerName    string
	TruckNumber   string
	ClientName    string
	ClientAddress string
	ClientPhone   string
	ClientCity    string
	ClientState   string
	ClientZip     string
}

const maxClientLines = 4

var (
	brokerLabels     = labelPatterns("broker", "carrier", "dispatcher", "company")
	clientNameLabels = labelPatterns(`client\s*name`, `customer\s*name`)

	reTruck = regexp.MustCompile(`(?i)truck\s*#?\s*[:\s]*([A-Za-z0-9\-]+)`)
	rePhone = regexp.MustCompile(`\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	reSpace = regexp.MustCompile(`\s+`)
)

// clientLabels start a client block; the capture is the first line of the block.
var clientLabels = labelPatterns("client", "customer", `bill\s*to`, `sold\s*to`, "consignee", "payer")

// ExtractParties finds broker name, truck number and the client block.
func ExtractParties(text string) Parties {
	var out Parties
	if v, ok := firstLabeledLine(text, brokerLabels); ok {
		out.BrokerName = entity.Truncate(v, entity.MaxNameLen)
	}
	if m := reTruck.FindStringSubmatch(text); m != nil {
		out.TruckNumber = entity.Truncate(strings.TrimSpace(m[1]), entity.MaxTruckLen)
	}
	extractClient(text, &out)
	return out
}

// extractClient reads up to four non-empty lines after the first client label: the name,
// then address lines, with the last line scanned for a phone and "City, ST 12345".
func extractClient(text string, out *Parties) {
	lines := clientBlock(text)
	if len(lines) > 0 {
		out.ClientName = entity.Truncate(lines[0], entity.MaxNameLen)
	}
	if len(lines) > 1 {
		if len(lines) > 2 {
			out.ClientAddress = entity.Truncate(strings.Join(lines[1:len(lines)-1], " "), entity.MaxAddressLen)
		} else {
			out.ClientAddress = entity.Truncate(lines[1], entity.MaxAddressLen)
		}
		last := lines[len(lines)-1]
		if p := rePhone.FindString(last); p != "" {
			out.ClientPhone = entity.Truncate(reSpace.ReplaceAllString(p, " "), entity.MaxPhoneLen)
		}
		if m := reCommaCityStateZip.FindStringSubmatch(last); m != nil {
			out.ClientCity = entity.Truncate(strings.TrimSpace(m[1]), entity.MaxCityLen)
			out.ClientState = entity.Truncate(strings.ToUpper(m[2]), entity.MaxStateLen)
			out.ClientZip = m[3]
		}
	}

	if out.ClientName == "" {
		if v, ok := firstLabeledLine(text, clientNameLabels); ok {
			out.ClientName = entity.Truncate(v, entity.MaxNameLen)
		}
	}
}

// clientBlock returns the label line remainder plus the lines directly under it, stopping
// at the first blank line or after maxClientLines lines.
func clientBlock(text string) []string {
	for _, re := range clientLabels {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		var lines []string
		if first := strings.TrimSpace(text[loc[2]:loc[3]]); first != "" {
			lines = append(lines, first)
		}
		rest := text[loc[3]:]
		rest = strings.TrimPrefix(rest, "\r")
		rest = strings.TrimPrefix(rest, "\n")
		for _, ln := range strings.Split(rest, "\n") {
			if len(lines) >= maxClientLines {
				break
			}
			ln = strings.TrimSpace(ln)
			if ln == "" {
				break
			}
			lines = append(lines, ln)
		}
		return lines
	}
	return nil
}
