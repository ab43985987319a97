package pager

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// seenSet tracks visited URLs so the same listing page is never fetched
// twice, even when linked under syntactically different URLs.
type seenSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{seen: make(map[string]struct{}, 256)}
}

// Has returns true if the URL (after canonicalization) has been seen.
func (s *seenSet) Has(rawURL string) bool {
	hash := hashURL(CanonicalizeURL(rawURL))

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[hash]
	return ok
}

// Mark records a URL as seen.
func (s *seenSet) Mark(rawURL string) {
	hash := hashURL(CanonicalizeURL(rawURL))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[hash] = struct{}{}
}

// Count returns the number of unique URLs seen.
func (s *seenSet) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// CanonicalizeURL normalizes a URL for deduplication:
// - lowercases scheme and host
// - removes fragment
// - sorts query parameters
// - removes trailing slash (except root)
// - removes default ports (80 for http, 443 for https)
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// hashURL creates a compact hash of a canonical URL string.
func hashURL(canonicalURL string) string {
	h := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(h[:16])
}
