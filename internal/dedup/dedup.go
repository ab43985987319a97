// Package dedup removes duplicate listing records by identity signature.
package dedup

import (
	"log/slog"
	"strings"

	"github.com/aymanhs/expodir/internal/text"
	"github.com/aymanhs/expodir/internal/types"
)

// Signature builds the dedup key for a record: lowercased/trimmed names, the
// last 7 digits of the phone number (when at least 7 remain after stripping)
// and the lowercased email, joined with "|". Empty components are omitted.
// A record with no usable components falls back to its ID.
func Signature(r *types.Record) string {
	var parts []string

	if name := strings.ToLower(strings.TrimSpace(r.Name)); name != "" {
		parts = append(parts, name)
	}
	if name := strings.ToLower(strings.TrimSpace(r.NameArabic)); name != "" {
		parts = append(parts, name)
	}
	if digits := text.Digits(r.Contact.Phone); len(digits) >= 7 {
		parts = append(parts, digits[len(digits)-7:])
	}
	if email := strings.ToLower(strings.TrimSpace(r.Contact.Email)); email != "" {
		parts = append(parts, email)
	}

	if len(parts) == 0 {
		return r.ID
	}
	return strings.Join(parts, "|")
}

// Deduplicator filters record sets down to one representative per signature.
type Deduplicator struct {
	logger *slog.Logger
}

// New creates a new Deduplicator.
func New(logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		logger: logger.With("component", "dedup"),
	}
}

// Filter returns a new slice retaining the first occurrence per signature,
// preserving the original relative order of survivors. Records are read,
// never mutated.
func (d *Deduplicator) Filter(records []*types.Record) []*types.Record {
	if len(records) == 0 {
		return records
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]*types.Record, 0, len(records))
	dropped := 0

	for _, r := range records {
		sig := Signature(r)
		if _, ok := seen[sig]; ok {
			dropped++
			d.logger.Debug("duplicate dropped", "name", r.DisplayName(), "id", r.ID)
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, r)
	}

	d.logger.Info("deduplication complete", "unique", len(out), "duplicates", dropped)
	return out
}
