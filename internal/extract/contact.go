package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aymanhs/expodir/internal/text"
	"github.com/aymanhs/expodir/internal/types"
)

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// phoneRes are tried in priority order; the first pattern class producing a
// match with at least 7 digits wins. Order is behaviorally significant:
// label-anchored text beats the Egyptian international form, which beats the
// bare country-code form, the local form and the generic grouped-digit form.
var phoneRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:tel|phone|تليفون|هاتف)[\s:]*([+\d\s\-()]{7,20})`),
	regexp.MustCompile(`(\+20\d{9,10})`),
	regexp.MustCompile(`(20\d{9,10})`),
	regexp.MustCompile(`(0\d{9,10})`),
	regexp.MustCompile(`(\d{3,4}[-\s]?\d{3,4}[-\s]?\d{3,4})`),
}

var faxRe = regexp.MustCompile(`(?i)(?:fax|فاكس)[\s:]*([+\d\s\-()]{7,20})`)

var websiteRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:www\.|https?://)([\w.-]+\.[a-zA-Z]{2,})`),
	regexp.MustCompile(`(?i)(www\.[\w.-]+\.[a-zA-Z]{2,})`),
}

var addressIndicators = []string{"address", "عنوان", "addr"}

var addressRes = compileIndicatorPatterns(addressIndicators)

// Contact extracts contact channels from a container's full plain text.
// Extraction is regex-driven: directory markup gives contact data no
// reliable structure, only label-anchored free text.
func Contact(raw string) types.Contact {
	var c types.Contact

	if m := emailRe.FindString(raw); m != "" {
		c.Email = m
	}

	c.Phone = firstPhone(raw)

	if m := faxRe.FindStringSubmatch(raw); m != nil {
		c.Fax = strings.TrimSpace(m[1])
	}

	for _, re := range websiteRes {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		website := m[1]
		if !strings.HasPrefix(website, "http") {
			website = "http://" + website
		}
		c.Website = website
		break
	}

	c.Address, c.AddressArabic = firstAddress(raw)

	return c
}

// firstPhone walks the phone pattern classes in priority order and returns
// the first candidate that still has >=7 digits after stripping separators.
func firstPhone(raw string) string {
	for _, re := range phoneRes {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			if len(text.Digits(m[1])) >= 7 {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}

// firstAddress scans address indicators in order; the first capture longer
// than 10 characters is stored under the key matching its script and the
// scan stops.
func firstAddress(raw string) (address, addressArabic string) {
	for _, re := range addressRes {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(candidate) <= 10 {
			continue
		}
		if text.IsArabic(candidate) {
			return "", candidate
		}
		return candidate, ""
	}
	return "", ""
}

// compileIndicatorPatterns builds label-anchored line-capture patterns, one
// per indicator, preserving indicator order.
func compileIndicatorPatterns(indicators []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(indicators))
	for _, ind := range indicators {
		res = append(res, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(ind)+`[\s:]*([^\n\r]+)`))
	}
	return res
}
