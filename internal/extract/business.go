package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aymanhs/expodir/internal/text"
	"github.com/aymanhs/expodir/internal/types"
)

// Keyword families for the three business-info groups, each listing English
// and Arabic synonyms.
var (
	categoryIndicators = []string{
		"category", "categories", "sector", "industry", "field",
		"نشاط", "قطاع", "مجال", "تخصص", "فئة",
	}
	productIndicators = []string{
		"product", "products", "goods", "items", "manufacture",
		"منتج", "منتجات", "سلع", "بضائع", "تصنيع",
	}
	marketIndicators = []string{
		"export", "market", "markets", "countries", "destination",
		"تصدير", "أسواق", "سوق", "دول", "وجهة",
	}

	categoryRes = compileIndicatorPatterns(categoryIndicators)
	productRes  = compileIndicatorPatterns(productIndicators)
	marketRes   = compileIndicatorPatterns(marketIndicators)
)

// listDelimiters in priority order: the first one present in a capture is
// used to split it. Includes the Arabic comma and semicolon.
var listDelimiters = []string{",", "،", ";", "؛", "|", "\n", "-"}

// Business extracts the category, product and export-market phrase lists
// from a container's plain text.
func Business(raw string) types.Business {
	return types.Business{
		Categories:    phraseList(raw, categoryRes),
		Products:      phraseList(raw, productRes),
		ExportMarkets: phraseList(raw, marketRes),
	}
}

// phraseList collects every capture of every indicator pattern, splits each
// into items, then cleans and deduplicates the result preserving first-seen
// order.
func phraseList(raw string, res []*regexp.Regexp) []string {
	var items []string
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			items = append(items, SplitListItems(m[1])...)
		}
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		cleaned := text.Clean(item)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

// SplitListItems splits a captured phrase on the first delimiter found from
// the priority list; with no delimiter the whole capture is one item. Items
// outside [3,100] characters are dropped.
func SplitListItems(capture string) []string {
	if capture == "" {
		return nil
	}

	var parts []string
	for _, delim := range listDelimiters {
		if strings.Contains(capture, delim) {
			for _, p := range strings.Split(capture, delim) {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
			break
		}
	}
	if parts == nil {
		if p := strings.TrimSpace(capture); p != "" {
			parts = []string{p}
		}
	}

	out := parts[:0]
	for _, p := range parts {
		if n := utf8.RuneCountInString(p); n >= 3 && n <= 100 {
			out = append(out, p)
		}
	}
	return out
}
