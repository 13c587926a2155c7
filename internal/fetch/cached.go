package fetch

import (
	"context"
	"sync"
	"time"
)

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (*Result, error)
}

// HTTPFetcher fetches pages directly with URL.
type HTTPFetcher struct {
	Options *Options
}

// Fetch implements Fetcher.
func (f HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	return URL(ctx, urlStr, f.Options)
}

// DefaultCacheTTL is how long a fetched page is reused.
const DefaultCacheTTL = 15 * time.Minute

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	TTL        time.Duration
	MaxEntries int
}

type cacheEntry struct {
	result    Result
	fetchedAt time.Time
}

// CachedFetcher keeps successful fetches in memory for a TTL so repeated
// requests for the same job description reuse the page. Failures are not cached.
type CachedFetcher struct {
	next       Fetcher
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedFetcher wraps next with an in-memory cache.
func NewCachedFetcher(next Fetcher, config CachedFetcherConfig) *CachedFetcher {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 256
	}
	return &CachedFetcher{
		next:       next,
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
}

// Fetch returns a cached page when fresh, otherwise fetches and caches it.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	f.mu.Lock()
	if e, ok := f.entries[urlStr]; ok && f.now().Sub(e.fetchedAt) < f.ttl {
		f.mu.Unlock()
		r := e.result
		return &r, nil
	}
	f.mu.Unlock()

	result, err := f.next.Fetch(ctx, urlStr)
	if err != nil {
		return result, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) >= f.maxEntries {
		f.evictOldest()
	}
	f.entries[urlStr] = cacheEntry{result: *result, fetchedAt: f.now()}
	return result, nil
}

// Invalidate drops a URL from the cache.
func (f *CachedFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, urlStr)
}

// Len returns the number of cached pages.
func (f *CachedFetcher) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *CachedFetcher) evictOldest() {
	var oldestURL string
	var oldest time.Time
	for u, e := range f.entries {
		if oldestURL == "" || e.fetchedAt.Before(oldest) {
			oldestURL, oldest = u, e.fetchedAt
		}
	}
	delete(f.entries, oldestURL)
}
