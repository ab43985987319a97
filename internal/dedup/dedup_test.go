package dedup

import (
	"log/slog"
	"os"
	"testing"

	"github.com/aymanhs/expodir/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func record(id, name, arabic, phone, email string) *types.Record {
	r := types.NewRecord(id, "http://example.com")
	r.Name = name
	r.NameArabic = arabic
	r.Contact.Phone = phone
	r.Contact.Email = email
	return r
}

func TestSignatureComposition(t *testing.T) {
	tests := []struct {
		name string
		rec  *types.Record
		want string
	}{
		{
			"all_components",
			record("id1", " Delta Export ", "شركة دلتا", "+20 100 123 4567", "Sales@Delta.COM"),
			"delta export|شركة دلتا|1234567|sales@delta.com",
		},
		{
			"name_only",
			record("id2", "Delta Export", "", "", ""),
			"delta export",
		},
		{
			"short_phone_omitted",
			record("id3", "Delta", "", "123456", ""),
			"delta",
		},
		{
			"fallback_to_id",
			record("id4", "", "", "", ""),
			"id4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Signature(tt.rec); got != tt.want {
				t.Errorf("Signature = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignatureStableUnderCleaning(t *testing.T) {
	// Names reach deduplication already normalized by validation, so only
	// edge whitespace, letter case and phone formatting may vary here.
	a := record("x", "  Delta Export ", "", "0123456789", "A@B.com")
	b := record("y", "Delta Export", "", "(012) 345-6789", "a@b.com")
	if Signature(a) != Signature(b) {
		t.Errorf("signatures differ: %q vs %q", Signature(a), Signature(b))
	}
}

func TestFilterKeepsFirstOccurrence(t *testing.T) {
	d := New(testLogger)

	first := record("a", "Delta Export", "", "0100 1234567", "")
	second := record("b", "Delta Export", "", "(010) 01234567", "") // same last 7 digits
	third := record("c", "Nile Foods", "", "", "")

	out := d.Filter([]*types.Record{first, second, third})
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	if out[0] != first {
		t.Error("first occurrence should survive")
	}
	if out[1] != third {
		t.Error("relative order of survivors should be preserved")
	}
}

func TestFilterIdempotent(t *testing.T) {
	d := New(testLogger)

	records := []*types.Record{
		record("a", "Delta Export", "", "0123456789", ""),
		record("b", "Delta Export", "", "0123456789", ""),
		record("c", "", "شركة النور", "", ""),
	}

	once := d.Filter(records)
	twice := d.Filter(once)
	if len(twice) != len(once) {
		t.Fatalf("second pass removed records: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("record %d changed between passes", i)
		}
	}
}

func TestFilterEmptyInput(t *testing.T) {
	d := New(testLogger)
	if out := d.Filter(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %d", len(out))
	}
}

func TestFilterDistinctIDsNoFalsePositives(t *testing.T) {
	d := New(testLogger)

	// No names, phones or emails: signature falls back to distinct IDs.
	records := []*types.Record{
		record("a", "", "", "", ""),
		record("b", "", "", "", ""),
	}
	if out := d.Filter(records); len(out) != 2 {
		t.Errorf("expected both records kept, got %d", len(out))
	}
}
