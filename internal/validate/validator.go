// Package validate enforces per-field syntactic validity on raw records and
// produces cleaned, schema-conformant copies.
package validate

import (
	"log/slog"
	"regexp"

	"github.com/aymanhs/expodir/internal/text"
	"github.com/aymanhs/expodir/internal/types"
)

var (
	emailRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	websiteRe = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)

	// Separators allowed inside phone numbers; stripped before matching.
	phoneSepRe = regexp.MustCompile(`[\s\-()]`)

	// Accepted phone shapes after separator stripping: Egyptian
	// international, bare country code, local, or plain 7-11 digits.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`^\+20\d{9,10}$`),
		regexp.MustCompile(`^20\d{9,10}$`),
		regexp.MustCompile(`^0\d{9,10}$`),
		regexp.MustCompile(`^\d{7,11}$`),
	}
)

// Validator cleans records and rejects those without a usable name. Invalid
// optional sub-fields are dropped silently, never reported as errors.
type Validator struct {
	logger *slog.Logger
}

// New creates a new Validator.
func New(logger *slog.Logger) *Validator {
	return &Validator{
		logger: logger.With("component", "validator"),
	}
}

// Record returns a cleaned copy of r, or a ValidationError wrapping
// ErrMissingName when both name fields are empty after cleaning. The input
// record is never mutated.
func (v *Validator) Record(r *types.Record) (*types.Record, error) {
	name := text.Clean(r.Name)
	nameArabic := text.Clean(r.NameArabic)
	if name == "" && nameArabic == "" {
		return nil, &types.ValidationError{RecordID: r.ID, Err: types.ErrMissingName}
	}

	out := r.Clone()
	out.Name = name
	out.NameArabic = nameArabic
	out.Contact = v.contact(r.ID, r.Contact)
	out.Business = cleanBusiness(r.Business)
	out.Registration = types.Registration{
		Number: text.Clean(r.Registration.Number),
		Date:   text.Clean(r.Registration.Date),
	}
	return out, nil
}

// Batch validates a sequence of records, dropping rejected ones. Rejections
// are logged and counted, never fatal.
func (v *Validator) Batch(records []*types.Record) (kept []*types.Record, rejected int) {
	kept = make([]*types.Record, 0, len(records))
	for _, r := range records {
		clean, err := v.Record(r)
		if err != nil {
			rejected++
			v.logger.Debug("record rejected", "id", r.ID, "error", err)
			continue
		}
		kept = append(kept, clean)
	}
	if rejected > 0 {
		v.logger.Info("validation complete", "kept", len(kept), "rejected", rejected)
	}
	return kept, rejected
}

func (v *Validator) contact(id string, c types.Contact) types.Contact {
	out := types.Contact{
		// Address fields and fax are cleaned but not validated further.
		Address:       text.Clean(c.Address),
		AddressArabic: text.Clean(c.AddressArabic),
		Fax:           text.Clean(c.Fax),
	}

	if email := text.Clean(c.Email); email != "" {
		if ValidEmail(email) {
			out.Email = email
		} else {
			v.logger.Debug("email dropped", "id", id, "email", email)
		}
	}

	if phone := text.Clean(c.Phone); phone != "" {
		if ValidPhone(phone) {
			out.Phone = phone
		} else {
			v.logger.Debug("phone dropped", "id", id, "phone", phone)
		}
	}

	if website := text.Clean(c.Website); website != "" {
		if ValidWebsite(website) {
			out.Website = website
		} else {
			v.logger.Debug("website dropped", "id", id, "website", website)
		}
	}

	return out
}

func cleanBusiness(b types.Business) types.Business {
	return types.Business{
		Categories:    cleanList(b.Categories),
		Products:      cleanList(b.Products),
		ExportMarkets: cleanList(b.ExportMarkets),
	}
}

func cleanList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := text.Clean(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// ValidEmail reports whether s is a strictly shaped local@domain.tld address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPhone reports whether s matches an accepted Egyptian or generic phone
// shape once spaces, dashes and parentheses are stripped.
func ValidPhone(s string) bool {
	stripped := phoneSepRe.ReplaceAllString(s, "")
	for _, re := range phoneRes {
		if re.MatchString(stripped) {
			return true
		}
	}
	return false
}

// ValidWebsite reports whether s is an http(s) URL with a plausible host.
func ValidWebsite(s string) bool {
	return websiteRe.MatchString(s)
}
