package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/singleflight"
)

const catalogueKey = "catalogue"

// Options configures caching.
type Options struct {
	TTL         time.Duration // sheet data lifetime, default 1h
	FallbackTTL time.Duration // fallback data lifetime, default 5m
	CacheSize   int           // LRU entries for the catalogue and filter results, default 128
}

type cacheEntry struct {
	items   []Item
	source  Source
	expires time.Time
}

// Store serves the catalogue from an LRU cache, loading it on a miss.
// Concurrent misses share a single load.
type Store struct {
	loader Loader
	opts   Options
	cache  *lru.Cache
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	lastErr    error
	lastLoaded time.Time
}

// NewStore creates a Store. loader may be nil, in which case the fallback
// dataset is always served.
func NewStore(loader Loader, opts Options, logger *slog.Logger) (*Store, error) {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.FallbackTTL <= 0 {
		opts.FallbackTTL = 5 * time.Minute
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create catalogue cache: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		loader: loader,
		opts:   opts,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Get returns the catalogue. It never fails: on any load error the
// fallback dataset is returned and the cause is logged.
func (s *Store) Get(ctx context.Context) ([]Item, Source) {
	if e, ok := s.cached(catalogueKey); ok {
		return e.items, SourceCache
	}

	v, _, _ := s.group.Do(catalogueKey, func() (any, error) {
		if e, ok := s.cached(catalogueKey); ok {
			return e, nil
		}
		return s.load(ctx), nil
	})
	e := v.(*cacheEntry)
	return e.items, e.source
}

// Refresh reloads the catalogue from the sheet and overwrites the cache.
// On failure the current cache is kept and the error returned.
func (s *Store) Refresh(ctx context.Context) (int, error) {
	if s.loader == nil {
		return 0, fmt.Errorf("catalogue sheet is not configured")
	}
	items, err := s.loader.Load(ctx)
	s.recordLoad(err)
	if err != nil {
		s.logger.Warn("catalogue refresh failed", "error", err)
		return 0, fmt.Errorf("refresh catalogue: %w", err)
	}
	s.cache.Purge()
	s.put(catalogueKey, items, SourceSheet, s.opts.TTL)
	s.logger.Info("catalogue refreshed", "items", len(items))
	return len(items), nil
}

// Status reports the last load error and time.
func (s *Store) Status() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoaded, s.lastErr
}

func (s *Store) load(ctx context.Context) *cacheEntry {
	if s.loader != nil {
		items, err := s.loader.Load(ctx)
		s.recordLoad(err)
		if err == nil {
			return s.put(catalogueKey, items, SourceSheet, s.opts.TTL)
		}
		s.logger.Warn("catalogue load failed, serving fallback data", "error", err)
	}
	return s.put(catalogueKey, Fallback(), SourceFallback, s.opts.FallbackTTL)
}

func (s *Store) recordLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err == nil {
		s.lastLoaded = s.now()
	}
}

func (s *Store) cached(key string) (*cacheEntry, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(*cacheEntry)
	if !s.now().Before(e.expires) {
		s.cache.Remove(key)
		return nil, false
	}
	return e, true
}

func (s *Store) put(key string, items []Item, source Source, ttl time.Duration) *cacheEntry {
	e := &cacheEntry{items: items, source: source, expires: s.now().Add(ttl)}
	s.cache.Add(key, e)
	return e
}

// Find returns the item with the given id.
func (s *Store) Find(ctx context.Context, id string) (Item, bool) {
	items, _ := s.Get(ctx)
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Filter returns the items matching f. Results are cached alongside the
// catalogue and expire with it.
func (s *Store) Filter(ctx context.Context, f Filter) []Item {
	items, _ := s.Get(ctx)
	key := fmt.Sprintf("filter:%s|%s|%s|%s|%d",
		f.Category, strings.ToLower(f.Sugar), strings.ToLower(f.Country), strings.ToLower(f.Query), f.Limit)
	if e, ok := s.cached(key); ok {
		return e.items
	}
	out := Apply(items, f)
	if base, ok := s.cached(catalogueKey); ok {
		s.cache.Add(key, &cacheEntry{items: out, source: base.source, expires: base.expires})
	}
	return out
}

// Apply filters items without caching.
func Apply(items []Item, f Filter) []Item {
	var out []Item
	for _, it := range items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Sugar != "" && !strings.EqualFold(it.Sugar, f.Sugar) {
			continue
		}
		if f.Country != "" && !strings.EqualFold(it.Country, f.Country) {
			continue
		}
		out = append(out, it)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		out = Search(out, q)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// searchItems implements fuzzy.Source over item names.
type searchItems []Item

func (s searchItems) Len() int { return len(s) }

func (s searchItems) String(i int) string { return strings.ToLower(s[i].Name) }

// Search ranks items by fuzzy name match, best first.
func Search(items []Item, query string) []Item {
	matches := fuzzy.FindFrom(strings.ToLower(strings.TrimSpace(query)), searchItems(items))
	out := make([]Item, len(matches))
	for i, m := range matches {
		out[i] = items[m.Index]
	}
	return out
}

// ByCategory groups items per category.
func ByCategory(items []Item) map[Category][]Item {
	out := make(map[Category][]Item)
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it)
	}
	return out
}

// Values returns the distinct non-empty values of an attribute, sorted.
func Values(items []Item, attribute string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		v := it.Attribute(attribute)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
