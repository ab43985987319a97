package types

import (
	"strings"
	"time"
)

// Record represents a single business listing extracted from a directory page.
type Record struct {
	// ID is a content-derived identifier, stable for identical container text.
	ID string `json:"id" bson:"id"`

	// Name is the non-Arabic company name.
	Name string `json:"company_name" bson:"company_name"`

	// NameArabic is the Arabic-script company name.
	NameArabic string `json:"company_name_arabic" bson:"company_name_arabic"`

	Contact      Contact      `json:"contact_info" bson:"contact_info"`
	Business     Business     `json:"business_info" bson:"business_info"`
	Registration Registration `json:"registration_info" bson:"registration_info"`
	Meta         Meta         `json:"extraction_metadata" bson:"extraction_metadata"`
}

// Contact holds the optional contact channels of a listing.
type Contact struct {
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
	Phone         string `json:"phone,omitempty" bson:"phone,omitempty"`
	Fax           string `json:"fax,omitempty" bson:"fax,omitempty"`
	Website       string `json:"website,omitempty" bson:"website,omitempty"`
	Address       string `json:"address,omitempty" bson:"address,omitempty"`
	AddressArabic string `json:"address_arabic,omitempty" bson:"address_arabic,omitempty"`
}

// Business holds free-text classification phrases for a listing.
type Business struct {
	Categories    []string `json:"categories" bson:"categories"`
	Products      []string `json:"products" bson:"products"`
	ExportMarkets []string `json:"export_markets" bson:"export_markets"`
}

// Registration holds commercial registration details, captured but not parsed.
type Registration struct {
	Number string `json:"registration_number,omitempty" bson:"registration_number,omitempty"`
	Date   string `json:"registration_date,omitempty" bson:"registration_date,omitempty"`
}

// Meta records where and when a record was extracted.
type Meta struct {
	ExtractedAt time.Time `json:"extracted_at" bson:"extracted_at"`
	SourceURL   string    `json:"source_url" bson:"source_url"`
}

// NewRecord creates an empty Record for a source URL.
func NewRecord(id, sourceURL string) *Record {
	return &Record{
		ID: id,
		Meta: Meta{
			ExtractedAt: time.Now().UTC(),
			SourceURL:   sourceURL,
		},
	}
}

// HasName reports whether the record carries at least one name.
func (r *Record) HasName() bool {
	return r.Name != "" || r.NameArabic != ""
}

// HasContact reports whether the record carries a usable contact channel
// (phone, email or address).
func (r *Record) HasContact() bool {
	return r.Contact.Phone != "" || r.Contact.Email != "" || r.Contact.Address != ""
}

// HasBusinessInfo reports whether the record carries category or product data.
func (r *Record) HasBusinessInfo() bool {
	return len(r.Business.Categories) > 0 || len(r.Business.Products) > 0
}

// DisplayName returns the best available name for logging.
func (r *Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.NameArabic != "" {
		return r.NameArabic
	}
	return "unknown"
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	clone.Business.Categories = append([]string(nil), r.Business.Categories...)
	clone.Business.Products = append([]string(nil), r.Business.Products...)
	clone.Business.ExportMarkets = append([]string(nil), r.Business.ExportMarkets...)
	return &clone
}

// ToFlatMap returns a flat map suitable for CSV export. List fields are
// joined with "; " and nested fields use dotted keys.
func (r *Record) ToFlatMap() map[string]string {
	flat := map[string]string{
		"id":                  r.ID,
		"company_name":        r.Name,
		"company_name_arabic": r.NameArabic,
		"email":               r.Contact.Email,
		"phone":               r.Contact.Phone,
		"fax":                 r.Contact.Fax,
		"website":             r.Contact.Website,
		"address":             r.Contact.Address,
		"address_arabic":      r.Contact.AddressArabic,
		"registration_number": r.Registration.Number,
		"registration_date":   r.Registration.Date,
		"source_url":          r.Meta.SourceURL,
		"extracted_at":        r.Meta.ExtractedAt.Format(time.RFC3339),
	}
	flat["categories"] = joinList(r.Business.Categories)
	flat["products"] = joinList(r.Business.Products)
	flat["export_markets"] = joinList(r.Business.ExportMarkets)
	return flat
}

func joinList(items []string) string {
	return strings.Join(items, "; ")
}
