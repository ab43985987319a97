package fetcher

import (
	"context"
	"math/rand"
	"time"

	"github.com/aymanhs/expodir/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the page at the given URL.
	Fetch(ctx context.Context, url string) (*types.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// RandomDelay returns a uniformly random duration in [min, max].
// Used between page fetches to avoid hammering the directory.
func RandomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
