package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls map[string]int
	fail  bool
}

func (f *countingFetcher) Fetch(_ context.Context, urlStr string) (*Result, error) {
	f.calls[urlStr]++
	if f.fail {
		return nil, &Error{URL: urlStr, Message: "boom"}
	}
	return &Result{URL: urlStr, HTML: "<p>" + urlStr + "</p>", StatusCode: 200}, nil
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{calls: make(map[string]int)}
}

func TestCachedFetcher_ReusesFreshResult(t *testing.T) {
	next := newCountingFetcher()
	f := NewCachedFetcher(next, CachedFetcherConfig{TTL: time.Minute})
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return clock }

	first, err := f.Fetch(context.Background(), "https://a.example/jd")
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), "https://a.example/jd")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls["https://a.example/jd"])

	clock = clock.Add(2 * time.Minute)
	_, err = f.Fetch(context.Background(), "https://a.example/jd")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls["https://a.example/jd"])
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	next := newCountingFetcher()
	next.fail = true
	f := NewCachedFetcher(next, CachedFetcherConfig{})

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), "https://a.example/jd")
		var fetchErr *Error
		require.True(t, errors.As(err, &fetchErr))
	}
	assert.Equal(t, 2, next.calls["https://a.example/jd"])
	assert.Zero(t, f.Len())
}

func TestCachedFetcher_EvictsOldest(t *testing.T) {
	next := newCountingFetcher()
	f := NewCachedFetcher(next, CachedFetcherConfig{MaxEntries: 2})
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, u := range []string{"https://a", "https://b", "https://c"} {
		_, err := f.Fetch(context.Background(), u)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.Len())

	_, err := f.Fetch(context.Background(), "https://a")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls["https://a"], "oldest entry was evicted")
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	next := newCountingFetcher()
	f := NewCachedFetcher(next, CachedFetcherConfig{})

	_, err := f.Fetch(context.Background(), "https://a")
	require.NoError(t, err)
	f.Invalidate("https://a")
	_, err = f.Fetch(context.Background(), "https://a")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls["https://a"])
}
