package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Fetcher.RatePerSecond = 1000 // don't throttle tests
	cfg.Fetcher.RequestTimeout = 5 * time.Second
	cfg.Fetcher.MaxRetries = 0
	return cfg
}

func newTestFetcher(t *testing.T, cfg *config.Config) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFetchSuccess(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	cfg := testConfig()
	f := newTestFetcher(t, cfg)

	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.StatusCode != 200 {
		t.Errorf("status = %d", page.StatusCode)
	}
	if !strings.Contains(string(page.Body), "hello") {
		t.Errorf("body = %q", page.Body)
	}
	if !strings.Contains(page.ContentType, "text/html") {
		t.Errorf("content type = %q", page.ContentType)
	}
	if gotLang != "ar,en;q=0.9" {
		t.Errorf("accept-language = %q", gotLang)
	}
	found := false
	for _, ua := range cfg.Fetcher.UserAgents {
		if ua == gotUA {
			found = true
		}
	}
	if !found {
		t.Errorf("user-agent %q not from configured pool", gotUA)
	}
}

func TestFetchGzipBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("<html>compressed listing</html>"))
		_ = gz.Close()
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(string(page.Body), "compressed listing") {
		t.Errorf("body not decompressed: %q", page.Body)
	}
}

func TestFetchNonHTMLRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, types.ErrNotHTML) {
		t.Fatalf("expected ErrNotHTML, got %v", err)
	}
}

func TestFetchClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Fetcher.MaxRetries = 3
	f := newTestFetcher(t, cfg)

	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 404 {
		t.Errorf("expected FetchError with status 404, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("404 should not be retried, got %d requests", hits.Load())
	}
}

func TestFetchServerErrorRetried(t *testing.T) {
	if testing.Short() {
		t.Skip("waits through a retry backoff")
	}
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>recovered</html>"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Fetcher.MaxRetries = 1
	f := newTestFetcher(t, cfg)

	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch after retry: %v", err)
	}
	if !strings.Contains(string(page.Body), "recovered") {
		t.Errorf("body = %q", page.Body)
	}
	if hits.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", hits.Load())
	}
}

func TestFetchRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, types.ErrMaxRetries) {
		t.Fatalf("expected ErrMaxRetries, got %v", err)
	}
}

func TestFetchRateLimitCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "42")
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(t, testConfig())
	_, err := f.fetchOnce(context.Background(), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !fe.IsRetryable() {
		t.Error("429 should be retryable")
	}
	if fe.RetryAfter != 42*time.Second {
		t.Errorf("retry-after = %v, want 42s", fe.RetryAfter)
	}
}

func TestFetchTimeoutWrapsSentinel(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	cfg := testConfig()
	cfg.Fetcher.RequestTimeout = 50 * time.Millisecond
	f := newTestFetcher(t, cfg)

	_, err := f.fetchOnce(context.Background(), srv.URL)
	if !errors.Is(err, types.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestBackoffDelay(t *testing.T) {
	plain := &types.FetchError{StatusCode: 500, Retryable: true}
	limited := &types.FetchError{StatusCode: 429, Retryable: true}
	hinted := &types.FetchError{StatusCode: 429, Retryable: true, RetryAfter: 90 * time.Second}

	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{"first_retry", plain, 1, 2 * time.Second},
		{"second_retry", plain, 2, 4 * time.Second},
		{"capped", plain, 10, 60 * time.Second},
		{"rate_limited_first", limited, 1, 30 * time.Second},
		{"rate_limited_capped", limited, 6, 5 * time.Minute},
		{"retry_after_honored", hinted, 1, 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backoffDelay(tt.err, tt.attempt); got != tt.want {
				t.Errorf("backoffDelay = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"10", 10 * time.Second},
		{"9000", 5 * time.Minute},
		{"soon", 0},
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestRandomDelayBounds(t *testing.T) {
	min, max := 100*time.Millisecond, 300*time.Millisecond
	for i := 0; i < 50; i++ {
		d := RandomDelay(min, max)
		if d < min || d > max {
			t.Fatalf("delay %v outside [%v, %v]", d, min, max)
		}
	}
	if d := RandomDelay(max, min); d != max {
		t.Errorf("inverted bounds should return min argument, got %v", d)
	}
}
