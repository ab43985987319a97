package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/types"
)

// Server errors and rate limits are retried; other status codes are not.
var retryStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

const (
	maxBackoff    = 60 * time.Second
	maxBackoff429 = 5 * time.Minute
)

// HTTPFetcher implements Fetcher using net/http with retry, backoff and
// client-side rate limiting.
type HTTPFetcher struct {
	client     *http.Client
	cfg        *config.FetcherConfig
	limiter    *rate.Limiter
	logger     *slog.Logger
	userAgents []string
	uaIndex    atomic.Int64
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Fetcher.MaxIdleConns / 2,
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Fetcher.TLSInsecure,
		},
		DisableCompression: true, // We handle decompression ourselves (including brotli)
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.Fetcher.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.Fetcher.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.Fetcher.MaxRedirects)
		}
		return nil
	}

	client := &http.Client{
		Transport:     transport,
		Jar:           jar,
		Timeout:       cfg.Fetcher.RequestTimeout,
		CheckRedirect: redirectPolicy,
	}

	return &HTTPFetcher{
		client:     client,
		cfg:        &cfg.Fetcher,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Fetcher.RatePerSecond), 1),
		logger:     logger.With("component", "http_fetcher"),
		userAgents: cfg.Fetcher.UserAgents,
	}, nil
}

// Fetch retrieves a page, retrying transient failures with exponential
// backoff. Rate-limited responses get longer waits and honor Retry-After.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*types.Page, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(lastErr, attempt)
			f.logger.Warn("retrying fetch",
				"url", rawURL,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		var fe *types.FetchError
		if !errors.As(err, &fe) || !fe.IsRetryable() {
			return nil, err
		}
	}

	return nil, &types.FetchError{
		URL: rawURL,
		Err: fmt.Errorf("%w (%d attempts): %v", types.ErrMaxRetries, f.cfg.MaxRetries+1, lastErr),
	}
}

// fetchOnce executes a single HTTP request.
func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (*types.Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	httpReq.Header.Set("User-Agent", f.nextUserAgent())
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "ar,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	httpReq.Header.Set("Connection", "keep-alive")

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		retryable := isRetryableError(err)
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			err = fmt.Errorf("%w: %v", types.ErrTimeout, err)
		}
		return nil, &types.FetchError{
			URL:       rawURL,
			Err:       err,
			Retryable: retryable,
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(httpResp.Header.Get("Retry-After"))
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP 429: rate limited (retry after %s): %s", retryAfter, strings.TrimSpace(string(body))),
			Retryable:  true,
			RetryAfter: retryAfter,
		}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body))),
			Retryable:  retryStatus[httpResp.StatusCode],
		}
	}

	if ct := httpResp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, &types.FetchError{
			URL: rawURL,
			Err: fmt.Errorf("%w: content-type %q", types.ErrNotHTML, ct),
		}
	}

	var reader io.Reader = httpResp.Body
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, f.cfg.MaxBodySize)
	}

	reader, err = decompressReader(httpResp, reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &types.FetchError{URL: rawURL, Err: types.ErrEmptyResponse, Retryable: true}
	}

	page := types.NewPage(rawURL, httpResp, body, duration)

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"status", page.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return page, nil
}

// Close releases resources.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// nextUserAgent returns the next User-Agent in rotation.
func (f *HTTPFetcher) nextUserAgent() string {
	if len(f.userAgents) == 0 {
		return "expodir/" + config.Version
	}
	idx := f.uaIndex.Add(1) % int64(len(f.userAgents))
	return f.userAgents[idx]
}

// backoffDelay computes the wait before the given retry attempt.
// Rate-limited responses get their own, more patient schedule.
func backoffDelay(err error, attempt int) time.Duration {
	var fe *types.FetchError
	if errors.As(err, &fe) && fe.StatusCode == http.StatusTooManyRequests {
		if fe.RetryAfter > 0 {
			return fe.RetryAfter
		}
		d := time.Duration(1<<(attempt-1)) * 30 * time.Second
		if d > maxBackoff429 {
			return maxBackoff429
		}
		return d
	}
	d := time.Duration(1<<attempt) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableError checks if a network error warrants a retry.
// Covers timeouts, connection resets, unexpected EOF, and connection refused.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	// Context cancellation is NOT retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Unexpected EOF mid-stream
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if netErr, ok := err.(net.Error); ok {
		if netErr.Timeout() {
			return true
		}
	}
	// Connection reset by peer, connection refused
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return true
		}
	}
	return false
}

// parseRetryAfter parses the Retry-After header value.
// Supports both integer seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil {
		d := time.Duration(secs) * time.Second
		if d > maxBackoff429 {
			return maxBackoff429
		}
		return d
	}
	if t, err := http.ParseTime(header); err == nil {
		d := time.Until(t)
		if d < 0 {
			return time.Second
		}
		if d > maxBackoff429 {
			return maxBackoff429
		}
		return d
	}
	return 0
}
