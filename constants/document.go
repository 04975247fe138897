package constants

import "strings"

// DocumentType classifies an uploaded freight document.
type DocumentType string

const (
	DocumentTypeInvoice   DocumentType = "invoice"
	DocumentTypeBOL       DocumentType = "bol"
	DocumentTypeRateSheet DocumentType = "rate_sheet"
	DocumentTypeContract  DocumentType = "contract"
	DocumentTypeOther     DocumentType = "other"
)

var allDocumentTypes = []DocumentType{
	DocumentTypeInvoice,
	DocumentTypeBOL,
	DocumentTypeRateSheet,
	DocumentTypeContract,
	DocumentTypeOther,
}

// DocumentTypes returns the accepted document types as strings.
func DocumentTypes() []string {
	result := make([]string, len(allDocumentTypes))
	for i, t := range allDocumentTypes {
		result[i] = string(t)
	}
	return result
}

// ParseDocumentType canonicalizes input. Unknown values return DocumentTypeOther, false.
func ParseDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	synonyms := map[string]DocumentType{
		"bill of lading": DocumentTypeBOL,
		"rate sheet":     DocumentTypeRateSheet,
		"ratesheet":      DocumentTypeRateSheet,
	}
	if t, ok := synonyms[normalized]; ok {
		return t, true
	}
	for _, t := range allDocumentTypes {
		if normalized == string(t) {
			return t, true
		}
	}
	return DocumentTypeOther, false
}

// CompanyType tags a row in companies.
type CompanyType string

const (
	CompanyTypeBroker  CompanyType = "broker"
	CompanyTypeShipper CompanyType = "shipper"
)

// RateType is stored in rates.rate_type.
type RateType string

const (
	RateTypePerMile          RateType = "per_mile"
	RateTypeFlat             RateType = "flat"
	RateTypePerHundredweight RateType = "per_hundredweight"
	RateTypeOther            RateType = "other"
)
