package translator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultCacheSize      = 1000
	DefaultRequestTimeout = 1200 * time.Millisecond
)

// mojibake is a stray sequence some translation services prepend to results.
const mojibake = "âª"

// Result is the outcome of one translation. Fallback means Text is the source
// text because the adapter failed or returned nothing usable.
type Result struct {
	Text     string
	Cached   bool
	Fallback bool
}

// Stats counts backend activity.
type Stats struct {
	Requests  uint64
	CacheHits uint64
	Fallbacks uint64
	CacheLen  int
}

// Backend wraps an Adapter with a cache, a per-request timeout and source
// fallback. It never fails: the worst case is the untranslated text.
type Backend struct {
	name    string
	adapter Adapter
	cache   *lru.Cache[string, string]
	timeout time.Duration

	requests  atomic.Uint64
	cacheHits atomic.Uint64
	fallbacks atomic.Uint64
}

// NewBackend creates a backend. Non-positive cacheSize and timeout fall back to
// the defaults.
func NewBackend(name string, adapter Adapter, cacheSize int, timeout time.Duration) (*Backend, error) {
	if adapter == nil {
		return nil, fmt.Errorf("translator %s: adapter required", name)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("translator %s: create cache: %w", name, err)
	}

	return &Backend{
		name:    name,
		adapter: adapter,
		cache:   cache,
		timeout: timeout,
	}, nil
}

// Translate returns the translation of text.
func (b *Backend) Translate(ctx context.Context, text string) Result {
	if cached, ok := b.cache.Get(text); ok {
		b.cacheHits.Add(1)
		return Result{Text: cached, Cached: true}
	}

	id := b.requests.Add(1)
	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	raw, err := b.adapter.Translate(reqCtx, text)
	duration := time.Since(start)
	if err != nil {
		log.Printf("translator %s: request #%d failed after %v: %v", b.name, id, duration, err)
		return b.fallback(text)
	}

	cleaned := Clean(raw)
	if cleaned == "" {
		log.Printf("translator %s: request #%d returned nothing usable", b.name, id)
		return b.fallback(text)
	}

	b.cache.Add(text, cleaned)
	log.Printf("translator %s: request #%d took %v: %q -> %q", b.name, id, duration, text, cleaned)
	return Result{Text: cleaned}
}

func (b *Backend) fallback(text string) Result {
	b.fallbacks.Add(1)
	return Result{Text: text, Fallback: true}
}

// Stats returns a snapshot of the counters.
func (b *Backend) Stats() Stats {
	return Stats{
		Requests:  b.requests.Load(),
		CacheHits: b.cacheHits.Load(),
		Fallbacks: b.fallbacks.Load(),
		CacheLen:  b.cache.Len(),
	}
}

// Clean strips the mojibake marker and surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, mojibake, ""))
}
