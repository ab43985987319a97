package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aymanhs/expodir/internal/config"
	"github.com/aymanhs/expodir/internal/quality"
	"github.com/aymanhs/expodir/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of records.
	Store(records []*types.Record) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// SessionWriter is implemented by backends that embed run metadata and
// the quality report in their output.
type SessionWriter interface {
	SetSession(info *types.SessionInfo, report *quality.Report)
}

// New creates the storage backend configured in cfg. The source URL is
// recorded in file output metadata. A comma-separated type such as
// "json,csv" fans out to every listed backend; file backends after the
// first write next to the configured output path with their own extension.
func New(cfg config.StorageConfig, source string, logger *slog.Logger) (Storage, error) {
	names := strings.Split(cfg.Type, ",")
	if len(names) == 1 {
		return newBackend(strings.TrimSpace(names[0]), cfg.OutputPath, cfg, source, logger)
	}

	backends := make([]Storage, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		path := cfg.OutputPath
		if i > 0 {
			path = withExtension(cfg.OutputPath, name)
		}
		backend, err := newBackend(name, path, cfg, source, logger)
		if err != nil {
			for _, b := range backends {
				_ = b.Close()
			}
			return nil, err
		}
		backends = append(backends, backend)
	}
	return NewMultiStorage(backends, logger), nil
}

func newBackend(name, path string, cfg config.StorageConfig, source string, logger *slog.Logger) (Storage, error) {
	switch name {
	case "json":
		return NewJSONStorage(path, source, logger)
	case "jsonl":
		return NewJSONLStorage(path, logger)
	case "csv":
		return NewCSVStorage(path, logger)
	case "mongodb":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", name)
	}
}

// withExtension swaps the extension of path for the backend's own, so a
// fan-out never writes two backends into the same file.
func withExtension(path, backend string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + backend
}
