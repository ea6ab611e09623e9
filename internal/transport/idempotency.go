package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// IdempotencyStore deduplicates submit requests that carry an
// X-Idempotency-Key header. The key format is "idem:{pageId}:{componentId}:{key}".
type IdempotencyStore interface {
	// Check looks up a previous response by key. If the key exists and the
	// input hash matches, the cached response is returned for replay. If the
	// key exists but the hash differs, a conflict error is returned.
	Check(ctx context.Context, key string, inputHash string) (result *CachedResponse, found bool, err error)

	// Store saves a response keyed by the idempotency key with a TTL.
	Store(ctx context.Context, key string, inputHash string, result CachedResponse, ttl time.Duration) error
}

// CachedResponse is a replayable submit outcome.
type CachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// idempotencyEntry is the stored value for an idempotency key.
type idempotencyEntry struct {
	InputHash string         `json:"input_hash"`
	Result    CachedResponse `json:"result"`
}

// MemoryIdempotencyStore is an in-memory IdempotencyStore with TTL support.
// Suitable for single-instance deployments; a multi-instance deployment needs
// a shared store in front of it.
type MemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
}

type memEntry struct {
	data      idempotencyEntry
	expiresAt time.Time
}

// NewMemoryIdempotencyStore creates a new in-memory idempotency store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]*memEntry),
	}
}

// Check looks up a cached response. Returns a conflict error if the input
// hash differs from the stored one.
func (s *MemoryIdempotencyStore) Check(_ context.Context, key string, inputHash string) (*CachedResponse, bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	if entry.data.InputHash != inputHash {
		return nil, true, model.NewConflictError(
			fmt.Sprintf("idempotency key %q already used with different input", key),
		)
	}

	result := entry.data.Result
	return &result, true, nil
}

// Store saves a response with TTL.
func (s *MemoryIdempotencyStore) Store(_ context.Context, key string, inputHash string, result CachedResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &memEntry{
		data: idempotencyEntry{
			InputHash: inputHash,
			Result:    result,
		},
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Len returns the number of entries (including expired ones). For testing.
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// HealthCheck reports the store as healthy. It exists so the readiness
// endpoint can treat this store uniformly with external-backed ones.
func (s *MemoryIdempotencyStore) HealthCheck(_ context.Context) error {
	return nil
}

// FormatIdempotencyKey builds the standard idempotency key.
func FormatIdempotencyKey(pageID, componentID, key string) string {
	return fmt.Sprintf("idem:%s:%s:%s", pageID, componentID, key)
}

// hashInput fingerprints a request body for idempotency comparison.
func hashInput(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
