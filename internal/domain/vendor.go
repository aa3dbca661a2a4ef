package domain

import (
	"strings"
	"time"
)

// Vendor is a payee record (banking and address details) owned by exactly
// one account. Vendor names are unique per owner, not globally.
type Vendor struct {
	ID                int64
	Name              string
	BankAccountNumber string
	BankName          string
	AddressLine1      string
	AddressLine2      string
	City              string
	Country           string
	Zip               string
	OwnerID           int64
	OwnerEmail        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// VendorInput carries the client-supplied fields for create and update.
// The owner is never part of the input; the service assigns it.
type VendorInput struct {
	Name              string
	BankAccountNumber string
	BankName          string
	AddressLine1      string
	AddressLine2      string
	City              string
	Country           string
	Zip               string
}

// Validate checks the presence-required fields and returns a ValidationError
// naming every missing one.
func (in VendorInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.BankAccountNumber) == "" {
		missing = append(missing, "bankAccountNumber")
	}
	if strings.TrimSpace(in.BankName) == "" {
		missing = append(missing, "bankName")
	}
	if strings.TrimSpace(in.AddressLine1) == "" {
		missing = append(missing, "addressLine1")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// SortOrder direction for vendor listings.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams holds pagination, sorting, and filtering options for vendor
// listings. Normalize clamps them to usable values.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
	Filter    string
}

// Normalize applies the defaults used by the HTTP surface: page >= 1,
// limit in [1, 100], name ascending.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.SortBy == "" {
		p.SortBy = "name"
	}
	if p.SortOrder != SortDesc {
		p.SortOrder = SortAsc
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// VendorPage is one page of vendors plus the pagination summary.
type VendorPage struct {
	Vendors     []Vendor
	TotalCount  int64
	TotalPages  int64
	CurrentPage int
	Limit       int
}

// NewVendorPage computes totalPages = ceil(totalCount / limit).
func NewVendorPage(vendors []Vendor, total int64, params ListParams) VendorPage {
	totalPages := total / int64(params.Limit)
	if total%int64(params.Limit) != 0 {
		totalPages++
	}
	return VendorPage{
		Vendors:     vendors,
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: params.Page,
		Limit:       params.Limit,
	}
}
