package types

import (
	"bytes"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page represents one fetched directory page.
type Page struct {
	// URL is the address the page was requested from.
	URL string

	// FinalURL is the address after any redirects.
	FinalURL string

	// StatusCode is the HTTP status code (0 for browser-rendered pages
	// where the protocol status is not exposed).
	StatusCode int

	// Headers are the response HTTP headers, if available.
	Headers http.Header

	// Body is the raw page markup.
	Body []byte

	// ContentType is the MIME type of the response.
	ContentType string

	// FetchDuration is how long the fetch took.
	FetchDuration time.Duration

	// FetchedAt is when the page was received.
	FetchedAt time.Time

	// doc caches the parsed document.
	doc *goquery.Document
}

// NewPage creates a Page from an http.Response body.
func NewPage(url string, httpResp *http.Response, body []byte, duration time.Duration) *Page {
	return &Page{
		URL:           url,
		FinalURL:      httpResp.Request.URL.String(),
		StatusCode:    httpResp.StatusCode,
		Headers:       httpResp.Header,
		Body:          body,
		ContentType:   httpResp.Header.Get("Content-Type"),
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// NewBrowserPage creates a Page from headless browser output.
func NewBrowserPage(url, finalURL string, body []byte, duration time.Duration) *Page {
	return &Page{
		URL:           url,
		FinalURL:      finalURL,
		Headers:       make(http.Header),
		Body:          body,
		ContentType:   "text/html",
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// Document returns the parsed goquery document, lazily initializing it.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx or came from a
// browser fetch (which reports no status).
func (p *Page) IsSuccess() bool {
	return p.StatusCode == 0 || (p.StatusCode >= 200 && p.StatusCode < 300)
}
