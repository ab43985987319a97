package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// Some directory deployments render listings with JavaScript; this
// fetcher handles those pages the HTTP fetcher cannot.
type BrowserFetcher struct {
	browser  *rod.Browser
	cfg      *config.FetcherConfig
	logger   *slog.Logger
	stealthy bool
	pagePool chan *rod.Page
	maxPages int
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithStealth enables stealth patches on every page.
func WithStealth() BrowserOption {
	return func(bf *BrowserFetcher) { bf.stealthy = true }
}

// WithMaxPages sets the maximum number of concurrent browser pages.
func WithMaxPages(n int) BrowserOption {
	return func(bf *BrowserFetcher) { bf.maxPages = n }
}

// NewBrowserFetcher creates a new headless browser fetcher.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger, opts ...BrowserOption) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:      &cfg.Fetcher,
		logger:   logger.With("component", "browser_fetcher"),
		maxPages: 2,
	}

	for _, opt := range opts {
		opt(bf)
	}

	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf.browser = browser
	bf.pagePool = make(chan *rod.Page, bf.maxPages)

	bf.logger.Info("browser fetcher ready",
		"max_pages", bf.maxPages,
		"stealth", bf.stealthy,
	)

	return bf, nil
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*types.Page, error) {
	start := time.Now()

	page, err := bf.getPage()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}
	defer bf.putPage(page)

	page = page.Context(ctx)

	timeout := bf.cfg.RequestTimeout
	if err := page.Timeout(timeout).Navigate(rawURL); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}

	if err := page.Timeout(timeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", rawURL, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	result := types.NewBrowserPage(rawURL, finalURL, []byte(html), duration)

	bf.logger.Debug("browser fetch complete",
		"url", rawURL,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return result, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	close(bf.pagePool)
	for page := range bf.pagePool {
		_ = page.Close()
	}
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

// getPage retrieves a page from the pool or creates a new one. Stealth
// patches are applied at page creation and persist across pool reuse, so
// every page handed out is already patched.
func (bf *BrowserFetcher) getPage() (*rod.Page, error) {
	select {
	case page := <-bf.pagePool:
		return page, nil
	default:
	}
	if bf.stealthy {
		page, err := stealth.Page(bf.browser)
		if err != nil {
			return nil, fmt.Errorf("stealth page: %w", err)
		}
		return page, nil
	}
	return bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

// putPage returns a page to the pool.
func (bf *BrowserFetcher) putPage(page *rod.Page) {
	// Navigate to blank to free memory from the last page
	_ = page.Navigate("about:blank")

	select {
	case bf.pagePool <- page:
	default:
		_ = page.Close() // Pool full, close the page
	}
}
