package extract

import (
	"regexp"
	"strings"

	"github.com/aymanhs/expodir/internal/types"
)

// Registration-number patterns across the label variants seen in the
// directory (registration, commercial, tax), first match wins. The value is
// 5-20 chars of alphanumerics with separators.
var regNumberRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:reg|registration|license|رقم\s*التسجيل|رخصة)[\s#:]*([A-Z0-9\-/]{5,20})`),
	regexp.MustCompile(`(?i)(?:commercial|تجاري)[\s#:]*([A-Z0-9\-/]{5,20})`),
	regexp.MustCompile(`(?i)(?:tax|ضريبي)[\s#:]*([A-Z0-9\-/]{5,20})`),
}

// Date patterns in priority order: establishment year, "since" year, then
// explicit day/month/year in either order with / or - separators.
var regDateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:established|founded|تأسست|أنشئت)[\s:]*(\d{4})`),
	regexp.MustCompile(`(?i)(?:since|منذ)[\s:]*(\d{4})`),
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
	regexp.MustCompile(`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`),
}

// Registration captures the registration number and date from a container's
// plain text. Values are captured verbatim, not semantically parsed.
func Registration(raw string) types.Registration {
	var reg types.Registration

	for _, re := range regNumberRes {
		if m := re.FindStringSubmatch(raw); m != nil {
			reg.Number = strings.TrimSpace(m[1])
			break
		}
	}

	for _, re := range regDateRes {
		if m := re.FindStringSubmatch(raw); m != nil {
			reg.Date = strings.TrimSpace(m[1])
			break
		}
	}

	return reg
}
