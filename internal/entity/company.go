package entity

import "github.com/google/uuid"

// Company is a broker or shipper known from past documents.
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CompanyType string    `json:"company_type"`
	Address     *string   `json:"address,omitempty"`
	City        *string   `json:"city,omitempty"`
	State       *string   `json:"state,omitempty"`
	Zip         *string   `json:"zip,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
}

// CompanyInfo carries optional contact fields for EnsureWithInfo; empty values are ignored.
type CompanyInfo struct {
	Address string
	City    string
	State   string
	Zip     string
	Phone   string
}
