// Package extract turns directory page markup into raw listing records via
// cascading selector strategies and label-anchored regex recovery.
package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"

	"github.com/aymanhs/expodir/internal/types"
)

// Extractor builds raw records from directory pages.
type Extractor struct {
	logger *slog.Logger
}

// New creates a new Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With("component", "extractor"),
	}
}

// Page extracts every listing record found on one page. Containers whose
// extraction fails are skipped; a page with no recognizable containers
// yields an empty slice, which is not an error.
func (e *Extractor) Page(page *types.Page) ([]*types.Record, error) {
	if len(page.Body) == 0 {
		return nil, nil
	}

	doc, err := page.Document()
	if err != nil {
		return nil, &types.ExtractError{URL: page.URL, Err: err}
	}

	containers := Containers(doc)
	e.logger.Info("containers located", "url", page.URL, "count", len(containers))

	records := make([]*types.Record, 0, len(containers))
	for i, container := range containers {
		rec, err := e.record(container, page.URL)
		if err != nil {
			e.logger.Error("container skipped", "url", page.URL, "index", i+1, "error", err)
			continue
		}
		if rec.HasName() {
			records = append(records, rec)
			e.logger.Debug("record extracted", "index", i+1, "name", rec.DisplayName())
		} else {
			e.logger.Debug("container skipped: no name found", "index", i+1)
		}
	}

	e.logger.Info("page extracted", "url", page.URL, "records", len(records))
	return records, nil
}

// record extracts one record from one container. A panic in any field group
// is contained here so one malformed container never aborts the page.
func (e *Extractor) record(container *goquery.Selection, sourceURL string) (rec *types.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = &types.ExtractError{URL: sourceURL, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	raw := container.Text()

	rec = types.NewRecord(RecordID(raw), sourceURL)
	rec.Name, rec.NameArabic = Names(container)
	rec.Contact = Contact(raw)
	rec.Business = Business(raw)
	rec.Registration = Registration(raw)

	return rec, nil
}

// RecordID derives a stable identifier from the first 100 characters of the
// container's trimmed text. Identical container text yields identical IDs,
// which deduplication relies on as a last resort.
func RecordID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	runes := []rune(trimmed)
	if len(runes) > 100 {
		trimmed = string(runes[:100])
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(trimmed))
}
