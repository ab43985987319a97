package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/quality"
	"github.com/aymanhs/expodir/internal/types"
)

// Envelope is the top-level structure of the JSON corpus file.
type Envelope struct {
	Metadata    Metadata           `json:"metadata"`
	SessionInfo *types.SessionInfo `json:"session_info,omitempty"`
	Quality     *quality.Report    `json:"quality,omitempty"`
	Companies   []*types.Record    `json:"companies"`
}

// Metadata describes the corpus as a whole.
type Metadata struct {
	ScraperVersion string `json:"scraper_version"`
	ExtractionDate string `json:"extraction_date"`
	SourceWebsite  string `json:"source_website"`
	TotalCompanies int    `json:"total_companies"`
	DataFormat     string `json:"data_format"`
}

const dataFormat = "Egypt Exporters Directory"

// --- JSON Storage ---

// JSONStorage buffers records and writes the full corpus envelope on Close.
type JSONStorage struct {
	path    string
	source  string
	records []*types.Record
	session *types.SessionInfo
	report  *quality.Report
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath, source string, logger *slog.Logger) (*JSONStorage, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "json", Err: fmt.Errorf("create output dir: %w", err)}
	}

	return &JSONStorage{
		path:    outputPath,
		source:  source,
		records: make([]*types.Record, 0),
		logger:  logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(records []*types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	s.logger.Debug("records buffered", "count", len(records), "total", len(s.records))
	return nil
}

// SetSession attaches run info and the quality report to the envelope.
func (s *JSONStorage) SetSession(info *types.SessionInfo, report *quality.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = info
	s.report = report
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return &types.StorageError{Backend: "json", Err: fmt.Errorf("create output file: %w", err)}
	}
	defer f.Close()

	env := Envelope{
		Metadata: Metadata{
			ScraperVersion: config.Version,
			ExtractionDate: time.Now().Format(time.RFC3339),
			SourceWebsite:  s.source,
			TotalCompanies: len(s.records),
			DataFormat:     dataFormat,
		},
		SessionInfo: s.session,
		Quality:     s.report,
		Companies:   s.records,
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	// Keep Arabic text and URLs readable in the output file.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return &types.StorageError{Backend: "json", Err: fmt.Errorf("encode JSON: %w", err)}
	}

	s.logger.Info("JSON written", "path", s.path, "companies", len(s.records))
	return nil
}

// --- JSONL Storage ---

// JSONLStorage writes records as newline-delimited JSON (one per line).
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage (streaming writes).
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("create output dir: %w", err)}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("create output file: %w", err)}
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)

	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    enc,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(records []*types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if err := s.enc.Encode(r); err != nil {
			return &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("encode JSONL: %w", err)}
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "companies", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// --- CSV Storage ---

// CSVStorage writes flattened records as CSV rows.
type CSVStorage struct {
	path    string
	file    *os.File
	writer  *csv.Writer
	headers []string
	mu      sync.Mutex
	count   int
	logger  *slog.Logger
}

// NewCSVStorage creates a new CSV file storage.
func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "csv", Err: fmt.Errorf("create output dir: %w", err)}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, &types.StorageError{Backend: "csv", Err: fmt.Errorf("create output file: %w", err)}
	}

	return &CSVStorage{
		path:   outputPath,
		file:   f,
		writer: csv.NewWriter(f),
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(records []*types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		flat := r.ToFlatMap()

		// Detect headers on first record
		if s.headers == nil {
			s.headers = make([]string, 0, len(flat))
			for k := range flat {
				s.headers = append(s.headers, k)
			}
			sort.Strings(s.headers)

			if err := s.writer.Write(s.headers); err != nil {
				return &types.StorageError{Backend: "csv", Err: fmt.Errorf("write CSV header: %w", err)}
			}
		}

		row := make([]string, len(s.headers))
		for i, h := range s.headers {
			row[i] = flat[h]
		}
		if err := s.writer.Write(row); err != nil {
			return &types.StorageError{Backend: "csv", Err: fmt.Errorf("write CSV row: %w", err)}
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "companies", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
