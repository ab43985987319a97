package validate

import (
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/aymanhs/expodir/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestRecordRejectsMissingName(t *testing.T) {
	v := New(testLogger)

	r := types.NewRecord("abc123", "http://example.com")
	r.Name = "   "
	r.NameArabic = "\t\n"
	r.Contact.Email = "a@b.com"

	_, err := v.Record(r)
	if err == nil {
		t.Fatal("expected rejection for record without names")
	}
	if !errors.Is(err, types.ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
}

func TestRecordKeepsEitherName(t *testing.T) {
	v := New(testLogger)

	tests := []struct {
		name   string
		latin  string
		arabic string
	}{
		{"latin_only", "Delta Export", ""},
		{"arabic_only", "", "شركة النور"},
		{"both", "Delta Export", "شركة النور"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := types.NewRecord("id1", "http://example.com")
			r.Name = tt.latin
			r.NameArabic = tt.arabic
			out, err := v.Record(r)
			if err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}
			if out.Name != tt.latin || out.NameArabic != tt.arabic {
				t.Errorf("names = %q/%q", out.Name, out.NameArabic)
			}
		})
	}
}

func TestRecordDropsInvalidContactSilently(t *testing.T) {
	v := New(testLogger)

	r := types.NewRecord("id2", "http://example.com")
	r.Name = "Delta Export"
	r.Contact = types.Contact{
		Email:   "not-an-email",
		Phone:   "123",
		Website: "ftp://delta.example.com",
		Fax:     "  02 2575  9999 ",
		Address: "  14  Corniche El Nil ",
	}

	out, err := v.Record(r)
	if err != nil {
		t.Fatalf("invalid sub-fields must not reject the record: %v", err)
	}
	if out.Contact.Email != "" {
		t.Errorf("email should be dropped, got %q", out.Contact.Email)
	}
	if out.Contact.Phone != "" {
		t.Errorf("phone should be dropped, got %q", out.Contact.Phone)
	}
	if out.Contact.Website != "" {
		t.Errorf("website should be dropped, got %q", out.Contact.Website)
	}
	if out.Contact.Fax != "02 2575 9999" {
		t.Errorf("fax should be cleaned, got %q", out.Contact.Fax)
	}
	if out.Contact.Address != "14 Corniche El Nil" {
		t.Errorf("address should be cleaned, got %q", out.Contact.Address)
	}
}

func TestRecordKeepsValidContact(t *testing.T) {
	v := New(testLogger)

	r := types.NewRecord("id3", "http://example.com")
	r.NameArabic = "شركة النور"
	r.Contact = types.Contact{
		Email:   "sales@delta.example.com",
		Phone:   "0123456789",
		Website: "http://delta.example.com",
	}

	out, err := v.Record(r)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if out.Contact.Email != "sales@delta.example.com" {
		t.Errorf("email = %q", out.Contact.Email)
	}
	if out.Contact.Phone != "0123456789" {
		t.Errorf("phone = %q", out.Contact.Phone)
	}
	if out.Contact.Website != "http://delta.example.com" {
		t.Errorf("website = %q", out.Contact.Website)
	}
}

func TestRecordDoesNotMutateInput(t *testing.T) {
	v := New(testLogger)

	r := types.NewRecord("id4", "http://example.com")
	r.Name = "  Delta   Export  "
	r.Business.Categories = []string{" Textiles "}

	out, err := v.Record(r)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if r.Name != "  Delta   Export  " {
		t.Errorf("input record mutated: %q", r.Name)
	}
	if r.Business.Categories[0] != " Textiles " {
		t.Errorf("input list mutated: %q", r.Business.Categories[0])
	}
	if out.Name != "Delta Export" {
		t.Errorf("output not cleaned: %q", out.Name)
	}
	if !reflect.DeepEqual(out.Business.Categories, []string{"Textiles"}) {
		t.Errorf("output list = %v", out.Business.Categories)
	}
}

func TestBatchCountsRejections(t *testing.T) {
	v := New(testLogger)

	good := types.NewRecord("g", "http://example.com")
	good.Name = "Delta Export"
	bad := types.NewRecord("b", "http://example.com")

	kept, rejected := v.Batch([]*types.Record{good, bad, good.Clone()})
	if len(kept) != 2 || rejected != 1 {
		t.Errorf("kept=%d rejected=%d, want 2/1", len(kept), rejected)
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+201001234567", true},
		{"+20100123456", true},
		{"201001234567", true},
		{"0123456789", true},
		{"0 12 345 67 89", true},
		{"(02) 2575-1234", true},
		{"1234567", true},
		{"12345678901", true},
		{"123456", false},
		{"123456789012", false},
		{"+1 555 0100", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidPhone(tt.phone); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.com", true},
		{"first.last+tag@sub.domain.eg", true},
		{"missing-at.com", false},
		{"a@b", false},
		{"a b@c.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestValidWebsite(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://delta.example.com", true},
		{"https://delta.example.com/path?x=1", true},
		{"www.delta.example.com", false},
		{"ftp://delta.example.com", false},
		{"http://bad host.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidWebsite(tt.url); got != tt.want {
			t.Errorf("ValidWebsite(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
