// Package pager discovers further listing pages (pagination and category
// links) from a fetched directory page, bounded to the directory's domain.
package pager

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aymanhs/expodir/internal/types"
)

// Anchors whose href or enclosing markup suggests pagination.
var paginationSelectors = []string{
	`a[href*="page"]`,
	`a[href*="Page"]`,
	`a[href*="p="]`,
	`a[href*="pagenum"]`,
	".pagination a",
	".pager a",
	".page-numbers a",
}

// Link texts that mark a "next page" anchor in either language.
// cascadia has no :contains, so text matching is done explicitly.
var nextLinkTexts = []string{"Next", "التالي", ">", "»"}

// Anchors that lead to category or section listings.
var categorySelectors = []string{
	`a[href*="category"]`,
	`a[href*="section"]`,
	`a[href*="type"]`,
	`a[href*="filter"]`,
	".menu a",
	".nav a",
	".categories a",
}

var nextSelectors = []string{
	`a[rel="next"]`,
	".pagination .next",
	".pager .next",
	".page-numbers .next",
}

// Binary and media links are never listing pages.
var skipExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".zip", ".rar", ".jpg", ".png", ".gif",
}

var skipPrefixes = []string{"mailto:", "tel:", "javascript:", "#"}

// Pager tracks discovered listing URLs for one crawl.
type Pager struct {
	logger           *slog.Logger
	baseDomain       string
	followCategories bool
	seen             *seenSet
}

// New creates a Pager rooted at the given start URL. Only links on the
// start URL's domain are followed.
func New(startURL string, followCategories bool, logger *slog.Logger) (*Pager, error) {
	u, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parse start url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("start url %q has no host", startURL)
	}
	return &Pager{
		logger:           logger.With("component", "pager"),
		baseDomain:       u.Host,
		followCategories: followCategories,
		seen:             newSeenSet(),
	}, nil
}

// MarkSeen records a URL as already visited or queued.
func (p *Pager) MarkSeen(rawURL string) {
	p.seen.Mark(rawURL)
}

// Seen reports whether a URL was already visited or queued.
func (p *Pager) Seen(rawURL string) bool {
	return p.seen.Has(rawURL)
}

// DiscoverLinks returns listing URLs found on the page that have not been
// seen before. Returned URLs are marked seen, so repeated calls across
// pages never yield the same URL twice.
func (p *Pager) DiscoverLinks(page *types.Page) []string {
	doc, err := page.Document()
	if err != nil {
		p.logger.Debug("unparseable page", "url", page.URL, "error", err)
		return nil
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return nil
	}

	var found []string
	collect := func(sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		full, ok := p.resolve(base, href)
		if !ok {
			return
		}
		if p.seen.Has(full) {
			return
		}
		p.seen.Mark(full)
		found = append(found, full)
	}

	selectors := paginationSelectors
	if p.followCategories {
		selectors = append(append([]string{}, paginationSelectors...), categorySelectors...)
	}
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			collect(sel)
		})
	}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		for _, marker := range nextLinkTexts {
			if strings.Contains(text, marker) {
				collect(sel)
				return
			}
		}
	})

	if len(found) > 0 {
		p.logger.Debug("discovered links", "url", page.URL, "count", len(found))
	}
	return found
}

// NextPage returns the single next-page URL from the current page, or ""
// when the listing has no further pages.
func (p *Pager) NextPage(page *types.Page) string {
	doc, err := page.Document()
	if err != nil {
		return ""
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		return ""
	}

	for _, selector := range nextSelectors {
		if href, ok := doc.Find(selector).First().Attr("href"); ok {
			if full, ok := p.resolve(base, href); ok {
				return full
			}
		}
	}

	var next string
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		for _, marker := range nextLinkTexts {
			if !strings.Contains(text, marker) {
				continue
			}
			href, ok := sel.Attr("href")
			if !ok {
				continue
			}
			if full, ok := p.resolve(base, href); ok {
				next = full
				return false
			}
		}
		return true
	})
	return next
}

// resolve joins an href against the page URL and applies the skip rules.
func (p *Pager) resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	full := base.ResolveReference(ref)

	if full.Scheme != "http" && full.Scheme != "https" {
		return "", false
	}
	if full.Host != p.baseDomain {
		return "", false
	}
	fullLower := strings.ToLower(full.String())
	for _, ext := range skipExtensions {
		if strings.HasSuffix(fullLower, ext) {
			return "", false
		}
	}
	return full.String(), true
}
