package entity

import "unicode/utf8"

// Length caps applied to every string field before a record leaves the extractor.
const (
	MaxCityLen      = 100
	MaxStateLen     = 2
	MaxZipLen       = 20
	MaxPhoneLen     = 30
	MaxNameLen      = 200
	MaxCommodityLen = 200
	MaxAddressLen   = 300
	MaxTruckLen     = 50
	MaxEquipmentLen = 50
)

// Accessorial keys used in ExtractedRecord.Accessorials.
const (
	AccessorialDetention = "detention"
	AccessorialLumper    = "lumper"
	AccessorialOther     = "other"
)

// ExtractedRecord is the structured view of one freight invoice or BOL.
// Every field is optional; nil marshals as null so the key set is always complete.
type ExtractedRecord struct {
	PickupDate   *string `json:"pickup_date"` // YYYY-MM-DD
	DeliveryDate *string `json:"delivery_date"`
	InvoiceDate  *string `json:"invoice_date"`

	OriginCity       *string `json:"origin_city"`
	OriginState      *string `json:"origin_state"`
	OriginZip        *string `json:"origin_zip"`
	DestinationCity  *string `json:"destination_city"`
	DestinationState *string `json:"destination_state"`
	DestinationZip   *string `json:"destination_zip"`

	TotalRate    *float64           `json:"total_rate"`
	AmountDue    *float64           `json:"amount_due"`
	LineHaul     *float64           `json:"line_haul"`
	RatePerMile  *float64           `json:"rate_per_mile"`
	Miles        *float64           `json:"miles"`
	Accessorials map[string]float64 `json:"accessorials"`
	Detention    *float64           `json:"detention"`
	Lumper       *float64           `json:"lumper"`
	FactoringFee *float64           `json:"factoring_fee"`

	Commodity     *string `json:"commodity"`
	Weight        *int    `json:"weight"` // pounds
	EquipmentType *string `json:"equipment_type"`

	BrokerName    *string `json:"broker_name"`
	TruckNumber   *string `json:"truck_number"`
	ClientName    *string `json:"client_name"`
	ClientAddress *string `json:"client_address"`
	ClientPhone   *string `json:"client_phone"`
	ClientCity    *string `json:"client_city"`
	ClientState   *string `json:"client_state"`
	ClientZip     *string `json:"client_zip"`
}

// NewExtractedRecord returns an empty record with a non-nil accessorials map.
func NewExtractedRecord() *ExtractedRecord {
	return &ExtractedRecord{Accessorials: map[string]float64{}}
}

// BaseCost is the first non-nil of amount_due, total_rate, line_haul.
func (r *ExtractedRecord) BaseCost() *float64 {
	for _, v := range []*float64{r.AmountDue, r.TotalRate, r.LineHaul} {
		if v != nil {
			return v
		}
	}
	return nil
}

// HasOrigin reports whether origin city or state is known.
func (r *ExtractedRecord) HasOrigin() bool {
	return nonEmpty(r.OriginCity) || nonEmpty(r.OriginState)
}

// HasDestination reports whether destination city or state is known.
func (r *ExtractedRecord) HasDestination() bool {
	return nonEmpty(r.DestinationCity) || nonEmpty(r.DestinationState)
}

// SetDetention sets detention and its accessorial mirror.
func (r *ExtractedRecord) SetDetention(v float64) {
	r.Detention = &v
	r.accessorials()[AccessorialDetention] = v
}

// SetLumper sets lumper and its accessorial mirror.
func (r *ExtractedRecord) SetLumper(v float64) {
	r.Lumper = &v
	r.accessorials()[AccessorialLumper] = v
}

// MirrorAccessorials copies top-level detention/lumper into the accessorials map.
func (r *ExtractedRecord) MirrorAccessorials() {
	r.accessorials()
	if r.Detention != nil {
		r.Accessorials[AccessorialDetention] = *r.Detention
	}
	if r.Lumper != nil {
		r.Accessorials[AccessorialLumper] = *r.Lumper
	}
}

// ApplyCaps truncates every string field to its documented maximum.
func (r *ExtractedRecord) ApplyCaps() {
	capStr(&r.OriginCity, MaxCityLen)
	capStr(&r.OriginState, MaxStateLen)
	capStr(&r.OriginZip, MaxZipLen)
	capStr(&r.DestinationCity, MaxCityLen)
	capStr(&r.DestinationState, MaxStateLen)
	capStr(&r.DestinationZip, MaxZipLen)
	capStr(&r.Commodity, MaxCommodityLen)
	capStr(&r.BrokerName, MaxNameLen)
	capStr(&r.TruckNumber, MaxTruckLen)
	capStr(&r.ClientName, MaxNameLen)
	capStr(&r.ClientAddress, MaxAddressLen)
	capStr(&r.ClientPhone, MaxPhoneLen)
	capStr(&r.ClientCity, MaxCityLen)
	capStr(&r.ClientState, MaxStateLen)
	capStr(&r.ClientZip, MaxZipLen)
}

func (r *ExtractedRecord) accessorials() map[string]float64 {
	if r.Accessorials == nil {
		r.Accessorials = map[string]float64{}
	}
	return r.Accessorials
}

func capStr(p **string, n int) {
	if *p == nil {
		return
	}
	s := Truncate(**p, n)
	*p = &s
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Deref returns *p or "" when p is nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nonEmpty(p *string) bool {
	return p != nil && *p != ""
}
