// Package reference translates foreign-key-shaped field values into their
// human-readable display labels by cross-referencing the target resource's
// records.
package reference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Resolver resolves reference values against a per-resource index keyed by
// the reference's value field, cached with a TTL. Lookups are O(1) per value;
// the index is rebuilt lazily after expiry or invalidation.
type Resolver struct {
	records    store.Store
	defaultTTL time.Duration
	maxEntries int
	stats      Instrumentor

	mu    sync.RWMutex
	cache map[string]cacheEntry // key: "{resource}:{valueField}"
}

// Instrumentor receives cache hit/miss outcomes. Satisfied by the
// observability metrics without importing it here.
type Instrumentor interface {
	RecordReferenceCacheHit(resource string)
	RecordReferenceCacheMiss(resource string)
}

type cacheEntry struct {
	index     map[any]model.Record
	records   []model.Record
	expiresAt time.Time
}

// NewResolver creates a Resolver over the given record store.
func NewResolver(records store.Store, defaultTTL time.Duration, maxEntries int) *Resolver {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Resolver{
		records:    records,
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		cache:      make(map[string]cacheEntry),
	}
}

// SetInstrumentor attaches cache metrics. Call before sharing the resolver.
func (r *Resolver) SetInstrumentor(stats Instrumentor) {
	r.stats = stats
}

// Resolve returns the display label for value under the given reference, or
// the raw value unchanged when the target resource, index, or record cannot
// be found. It never fails: a miss is graceful degradation, not an error.
func (r *Resolver) Resolve(ctx context.Context, value any, ref model.ReferenceDef) any {
	if ref.Resource == "" || ref.ValueField == "" || ref.DisplayField == "" {
		return value
	}

	entry, err := r.entryFor(ctx, ref.Resource, ref.ValueField)
	if err != nil {
		return value
	}

	rec, ok := entry.index[value]
	if !ok {
		return value
	}
	display, ok := rec[ref.DisplayField]
	if !ok {
		return value
	}
	return display
}

// Options returns label/value pairs for every record of the referenced
// resource, in collection order. Used to populate reference dropdowns.
func (r *Resolver) Options(ctx context.Context, ref model.ReferenceDef) ([]model.OptionDescriptor, error) {
	entry, err := r.entryFor(ctx, ref.Resource, ref.ValueField)
	if err != nil {
		return nil, err
	}

	options := make([]model.OptionDescriptor, 0, len(entry.records))
	for _, rec := range entry.records {
		value, ok := rec[ref.ValueField]
		if !ok {
			continue
		}
		label := fmt.Sprint(rec[ref.DisplayField])
		options = append(options, model.OptionDescriptor{Label: label, Value: value})
	}
	return options, nil
}

// Invalidate drops all cached indexes for a resource. Wired to the store's
// mutation hook so labels never lag behind writes.
func (r *Resolver) Invalidate(resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := resource + ":"
	for k := range r.cache {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(r.cache, k)
		}
	}
}

// CacheLen returns the number of cached indexes. For testing.
func (r *Resolver) CacheLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// entryFor returns the cached index for (resource, valueField), building it
// from a full listing on miss or expiry.
func (r *Resolver) entryFor(ctx context.Context, resource, valueField string) (cacheEntry, error) {
	key := resource + ":" + valueField

	r.mu.RLock()
	entry, exists := r.cache[key]
	r.mu.RUnlock()
	if exists && time.Now().Before(entry.expiresAt) {
		if r.stats != nil {
			r.stats.RecordReferenceCacheHit(resource)
		}
		return entry, nil
	}
	if r.stats != nil {
		r.stats.RecordReferenceCacheMiss(resource)
	}

	result, err := r.records.GetList(ctx, resource, store.ListParams{})
	if err != nil {
		return cacheEntry{}, err
	}

	index := make(map[any]model.Record, len(result.Data))
	for _, rec := range result.Data {
		v, ok := rec[valueField]
		if !ok {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			continue // composite values are never valid reference keys
		}
		if _, dup := index[v]; !dup {
			index[v] = rec
		}
	}

	entry = cacheEntry{
		index:     index,
		records:   result.Data,
		expiresAt: time.Now().Add(r.defaultTTL),
	}

	r.mu.Lock()
	if len(r.cache) >= r.maxEntries {
		r.evictExpired()
	}
	r.cache[key] = entry
	r.mu.Unlock()

	return entry, nil
}

// evictExpired removes expired entries. Must be called with mu held.
func (r *Resolver) evictExpired() {
	now := time.Now()
	for k, v := range r.cache {
		if now.After(v.expiresAt) {
			delete(r.cache, k)
		}
	}
}
