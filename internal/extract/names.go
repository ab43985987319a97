package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/aymanhs/expodir/internal/text"
)

var (
	// nameSelectors match the directory's own title markup.
	nameSelectors = []string{
		".co_title",
		"div.co_title",
		".company-name",
		".name",
	}

	// genericNameSelectors are tried when the specific ones find nothing.
	genericNameSelectors = []string{
		"h1", "h2", "h3", "h4", "h5", "h6",
		".title",
		"strong", "b",
		"td:first-child",
		".first",
		`a[href*="/co/"]`,
	}

	// nonNameKeywords mark lines that are labels rather than names, in
	// both scripts. Used by the plain-text fallback scan.
	nonNameKeywords = []string{
		"tel", "phone", "email", "fax", "address",
		"القطاع",  // sector
		"محافظة", // governorate
	}
)

// Names extracts the company name in each script from one container.
// Candidates found by selectors compete per script bucket and the longest
// wins; ties keep the first found. When no selector yields a name the first
// five lines of the container's plain text are scanned.
func Names(container *goquery.Selection) (name, nameArabic string) {
	name, nameArabic = namesFromSelectors(container, nameSelectors)

	if name == "" && nameArabic == "" {
		name, nameArabic = namesFromSelectors(container, genericNameSelectors)
	}

	if name == "" && nameArabic == "" {
		name, nameArabic = namesFromText(container.Text())
	}

	return text.Clean(name), text.Clean(nameArabic)
}

func namesFromSelectors(container *goquery.Selection, selectors []string) (name, nameArabic string) {
	for _, sel := range selectors {
		container.Find(sel).Each(func(_ int, s *goquery.Selection) {
			candidate := strings.TrimSpace(s.Text())
			if utf8.RuneCountInString(candidate) <= 3 {
				return
			}
			if text.IsArabic(candidate) {
				if longer(candidate, nameArabic) {
					nameArabic = candidate
				}
			} else {
				if longer(candidate, name) {
					name = candidate
				}
			}
		})
	}
	return name, nameArabic
}

// namesFromText scans the first five lines of plain text, skipping label
// lines, and keeps the first candidate found per script.
func namesFromText(raw string) (name, nameArabic string) {
	lines := strings.Split(raw, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= 5 {
			continue
		}
		if text.ContainsAny(line, nonNameKeywords) {
			continue
		}
		if text.IsArabic(line) {
			if nameArabic == "" {
				nameArabic = line
			}
		} else if name == "" {
			name = line
		}
		if name != "" && nameArabic != "" {
			break
		}
	}
	return name, nameArabic
}

// longer reports whether candidate should replace current. Strictly longer
// wins, so the first candidate of a given length is kept on ties.
func longer(candidate, current string) bool {
	return current == "" || utf8.RuneCountInString(candidate) > utf8.RuneCountInString(current)
}
