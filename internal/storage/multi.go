package storage

import (
	"log/slog"

	"github.com/aymanhs/expodir/internal/quality"
	"github.com/aymanhs/expodir/internal/types"
)

// MultiStorage writes records to multiple backends simultaneously.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Store(records []*types.Record) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(records); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SetSession forwards run info to backends that embed it in their output.
func (s *MultiStorage) SetSession(info *types.SessionInfo, report *quality.Report) {
	for _, backend := range s.backends {
		if sw, ok := backend.(SessionWriter); ok {
			sw.SetSession(info, report)
		}
	}
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			s.logger.Error("backend close failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
