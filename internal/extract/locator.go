package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Selector tables for locating listing containers.
var (
	// specificSelectors match the known markup of the exporters directory.
	specificSelectors = []string{
		".co_node",
		"div.co_node",
		".exporter_directory .co_node",
	}

	// specificXPaths are tried when the CSS tier finds nothing, to survive
	// class-attribute drift (extra classes, changed tag names).
	specificXPaths = []string{
		`//*[contains(concat(' ', normalize-space(@class), ' '), ' co_node ')]`,
		`//*[contains(concat(' ', normalize-space(@class), ' '), ' exporter ')]//*[contains(@class, 'node')]`,
	}

	// genericSelectors cast a wide net; candidates are kept only if they
	// pass the listing heuristic below.
	genericSelectors = []string{
		".company",
		".exporter",
		".listing",
		".item",
		".entry",
		".record",
		"tr",
		".row",
		`div[class*="company"]`,
		`div[class*="exporter"]`,
		`div[class*="business"]`,
		"li",
		"article",
		".card",
		".box",
	}

	// listingIndicators is a bilingual lexicon of fragments that suggest a
	// node holds one business listing. Matched case-insensitively.
	listingIndicators = []string{
		"شركة",  // company
		"مؤسسة", // institution
		"company",
		"corp",
		"ltd",
		"inc",
		"co.",
		"tel:",
		"phone:",
		"email:",
		"@",
		"www.",
		"http",
		"fax:",
		"address:",
		"عنوان",   // address
		"تليفون",  // phone
		"فاكس",    // fax
		"بريد",    // mail
	}
)

// Containers returns the subset of document nodes that plausibly represent
// one listing record each, in document order of discovery. Site-specific CSS
// selectors are tried first, then XPath equivalents, then the generic list
// filtered by looksLikeListing. The result is deduplicated by node identity.
func Containers(doc *goquery.Document) []*goquery.Selection {
	var nodes []*html.Node

	for _, sel := range specificSelectors {
		nodes = append(nodes, doc.Find(sel).Nodes...)
	}

	if len(nodes) == 0 && len(doc.Nodes) > 0 {
		for _, xp := range specificXPaths {
			found, err := htmlquery.QueryAll(doc.Nodes[0], xp)
			if err != nil {
				continue
			}
			nodes = append(nodes, found...)
		}
	}

	if len(nodes) == 0 {
		for _, sel := range genericSelectors {
			doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
				if looksLikeListing(s) {
					nodes = append(nodes, s.Nodes...)
				}
			})
		}
	}

	seen := make(map[*html.Node]struct{}, len(nodes))
	out := make([]*goquery.Selection, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, goquery.NewDocumentFromNode(n).Selection)
	}
	return out
}

// looksLikeListing accepts a node when its visible text is at least 10
// characters and mentions two or more listing indicators, or when it is
// longer than 100 characters regardless of indicator count.
func looksLikeListing(s *goquery.Selection) bool {
	text := strings.TrimSpace(s.Text())
	length := utf8.RuneCountInString(text)
	if length < 10 {
		return false
	}

	lower := strings.ToLower(text)
	count := 0
	for _, indicator := range listingIndicators {
		if strings.Contains(lower, indicator) {
			count++
		}
	}
	return count >= 2 || length > 100
}
