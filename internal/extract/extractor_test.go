package extract

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/aymanhs/expodir/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const listingHTML = `<html><body><div class="exporter_directory">
<div class="co_node">
<div class="co_title">Delta Textiles Export</div>
<div class="co_title">شركة دلتا للغزل والنسيج</div>
Tel: 0123456789
email: info@deltatex.example.com
Address: 14 Corniche El Nil, Cairo, Egypt
Sector: Textiles, Garments
Products: Cotton Yarn، Woven Fabric
</div>
<div class="co_node">
<div class="co_title">Nile Foods</div>
Phone: +201001234567
www.nilefoods.example.com
</div>
</div></body></html>`

func fixturePage(t *testing.T, html string) *types.Page {
	t.Helper()
	return &types.Page{URL: "http://directory.example.com/exporters?page=1", Body: []byte(html)}
}

func TestExtractorPage(t *testing.T) {
	e := New(testLogger)

	records, err := e.Page(fixturePage(t, listingHTML))
	if err != nil {
		t.Fatalf("extract page: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Name != "Delta Textiles Export" {
		t.Errorf("name = %q", first.Name)
	}
	if first.NameArabic != "شركة دلتا للغزل والنسيج" {
		t.Errorf("arabic name = %q", first.NameArabic)
	}
	if first.Contact.Phone != "0123456789" {
		t.Errorf("phone = %q", first.Contact.Phone)
	}
	if first.Contact.Email != "info@deltatex.example.com" {
		t.Errorf("email = %q", first.Contact.Email)
	}
	if first.Contact.Address == "" || !strings.Contains(first.Contact.Address, "Corniche El Nil") {
		t.Errorf("address = %q", first.Contact.Address)
	}
	if len(first.Business.Categories) == 0 {
		t.Error("expected categories")
	}
	if first.ID == "" {
		t.Error("expected a record ID")
	}
	if first.Meta.SourceURL != "http://directory.example.com/exporters?page=1" {
		t.Errorf("source url = %q", first.Meta.SourceURL)
	}

	second := records[1]
	if second.Name != "Nile Foods" {
		t.Errorf("second name = %q", second.Name)
	}
	if second.Contact.Website != "http://nilefoods.example.com" {
		t.Errorf("website = %q", second.Contact.Website)
	}
}

func TestExtractorArabicOnlyHeading(t *testing.T) {
	// A container with only an Arabic heading and no contact info is still
	// retained: the Arabic name alone satisfies the name invariant.
	html := `<html><body><div class="co_node"><h3>شركة النور</h3></div></body></html>`
	e := New(testLogger)

	records, err := e.Page(fixturePage(t, html))
	if err != nil {
		t.Fatalf("extract page: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.NameArabic != "شركة النور" {
		t.Errorf("arabic name = %q", r.NameArabic)
	}
	if r.Name != "" {
		t.Errorf("unexpected latin name %q", r.Name)
	}
	if r.HasContact() {
		t.Error("expected empty contact info")
	}
}

func TestExtractorNamelessContainerDropped(t *testing.T) {
	html := `<html><body><div class="co_node">tel: 0123456789 fax: 0123456780 email: x@y.com</div></body></html>`
	e := New(testLogger)

	records, err := e.Page(fixturePage(t, html))
	if err != nil {
		t.Fatalf("extract page: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected nameless container to be dropped, got %d records", len(records))
	}
}

func TestExtractorEmptyBody(t *testing.T) {
	e := New(testLogger)
	records, err := e.Page(&types.Page{URL: "http://directory.example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestRecordIDStable(t *testing.T) {
	a := RecordID("  Delta Textiles Export\nTel: 0123456789  ")
	b := RecordID("  Delta Textiles Export\nTel: 0123456789  ")
	if a != b {
		t.Errorf("IDs differ for identical text: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("ID length = %d, want 16", len(a))
	}
	if c := RecordID("something else entirely"); c == a {
		t.Error("distinct text produced identical IDs")
	}
}

func TestRecordIDUsesPrefixOnly(t *testing.T) {
	prefix := strings.Repeat("ع", 100)
	if RecordID(prefix+" tail one") != RecordID(prefix+" tail two") {
		t.Error("ID should depend only on the first 100 characters")
	}
}
