package entity

import "github.com/google/uuid"

// Rate is one lane price observation derived from a document.
type Rate struct {
	ID               uuid.UUID          `json:"id"`
	DocumentID       uuid.UUID          `json:"document_id"`
	CompanyID        uuid.UUID          `json:"company_id"`
	OriginCity       string             `json:"origin_city"`
	OriginState      string             `json:"origin_state"`
	DestinationCity  string             `json:"destination_city"`
	DestinationState string             `json:"destination_state"`
	RateType         string             `json:"rate_type"`
	RateAmount       float64            `json:"rate_amount"`
	AccessorialFees  map[string]float64 `json:"accessorial_fees"`
	EquipmentType    *string            `json:"equipment_type,omitempty"`
	MinWeight        *int               `json:"min_weight,omitempty"`
	Metadata         map[string]any     `json:"metadata,omitempty"`
}
