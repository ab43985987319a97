package runner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/observability"
	"github.com/aymanhs/expodir/internal/storage"
	"github.com/aymanhs/expodir/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeFetcher serves canned pages keyed by URL.
type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*types.Page, error) {
	html, ok := f.pages[url]
	if !ok {
		return nil, &types.FetchError{URL: url, StatusCode: 404, Err: errors.New("not found")}
	}
	f.fetched = append(f.fetched, url)
	return &types.Page{URL: url, StatusCode: 200, Body: []byte(html)}, nil
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return "fake" }

func testRunConfig(outputPath string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scrape.StartURL = "http://directory.example.com/exporters"
	cfg.Scrape.MaxPages = 10
	cfg.Scrape.DelayMin = 0
	cfg.Scrape.DelayMax = 0
	cfg.Storage.OutputPath = outputPath
	return cfg
}

func TestRunFullPipeline(t *testing.T) {
	pages := map[string]string{
		"http://directory.example.com/exporters": `<html><body>
			<div class="co_node"><div class="co_title">Delta Textiles Export</div>Tel: 0123456789</div>
			<div class="co_node"><div class="co_title">Nile Foods</div></div>
			<a href="/exporters?page=2">Next</a>
			<a href="/exporters?page=404">3</a>
		</body></html>`,
		// Repeats Delta so deduplication has work to do.
		"http://directory.example.com/exporters?page=2": `<html><body>
			<div class="co_node"><div class="co_title">Delta Textiles Export</div>Tel: 0123456789</div>
		</body></html>`,
	}

	outputPath := filepath.Join(t.TempDir(), "companies.json")
	cfg := testRunConfig(outputPath)

	store, err := storage.NewJSONStorage(outputPath, cfg.Scrape.StartURL, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeFetcher{pages: pages}
	r, err := New(cfg, f, store, observability.NewMetrics(testLogger), testLogger)
	if err != nil {
		t.Fatalf("create runner: %v", err)
	}

	report, stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close storage: %v", err)
	}

	if stats.PagesFetched != 2 {
		t.Errorf("pages_fetched = %d, want 2", stats.PagesFetched)
	}
	if stats.PagesFailed != 1 {
		t.Errorf("pages_failed = %d, want 1", stats.PagesFailed)
	}
	if stats.RecordsExtracted != 3 {
		t.Errorf("records_extracted = %d, want 3", stats.RecordsExtracted)
	}
	if stats.RecordsDuplicate != 1 {
		t.Errorf("records_duplicate = %d, want 1", stats.RecordsDuplicate)
	}
	if stats.RecordsStored != 2 {
		t.Errorf("records_stored = %d, want 2", stats.RecordsStored)
	}
	if report.TotalRecords != 2 {
		t.Errorf("report total = %d, want 2", report.TotalRecords)
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	var env storage.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if len(env.Companies) != 2 {
		t.Errorf("stored companies = %d, want 2", len(env.Companies))
	}
	if env.SessionInfo == nil || env.SessionInfo.TotalPagesScraped != 2 {
		t.Errorf("session info = %+v", env.SessionInfo)
	}
	if env.Quality == nil || env.Quality.TotalRecords != 2 {
		t.Errorf("quality report = %+v", env.Quality)
	}
}

func TestRunRespectsMaxPages(t *testing.T) {
	// An endless pagination chain; the bound must stop the crawl.
	pages := map[string]string{}
	pages["http://directory.example.com/exporters"] = `<a href="/exporters?page=1">Next</a>`
	for i := 1; i <= 20; i++ {
		pages["http://directory.example.com/exporters?page="+strconv.Itoa(i)] =
			`<a href="/exporters?page=` + strconv.Itoa(i+1) + `">Next</a>`
	}

	cfg := testRunConfig(filepath.Join(t.TempDir(), "companies.json"))
	cfg.Scrape.MaxPages = 3

	store, err := storage.NewJSONStorage(cfg.Storage.OutputPath, cfg.Scrape.StartURL, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeFetcher{pages: pages}
	r, err := New(cfg, f, store, observability.NewMetrics(testLogger), testLogger)
	if err != nil {
		t.Fatal(err)
	}

	_, stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := stats.PagesFetched + stats.PagesFailed; got != 3 {
		t.Errorf("page attempts = %d, want 3", got)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testRunConfig(filepath.Join(t.TempDir(), "companies.json"))
	store, err := storage.NewJSONStorage(cfg.Storage.OutputPath, cfg.Scrape.StartURL, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeFetcher{pages: map[string]string{}}
	r, err := New(cfg, f, store, observability.NewMetrics(testLogger), testLogger)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, stats, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("cancelled run should still finalize: %v", err)
	}
	if stats.PagesFetched != 0 {
		t.Errorf("pages_fetched = %d, want 0", stats.PagesFetched)
	}
}
