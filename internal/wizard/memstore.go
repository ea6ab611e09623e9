// Package wizard runs multi-step form sessions: a linear step machine with
// per-step required-field validation and a final submit that writes the
// accumulated values through the record store.
package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// InstanceStore holds wizard sessions in memory with TTL expiry. Sessions
// are short-lived by nature; an abandoned wizard should not outlive its
// user's attention span, let alone the process.
type InstanceStore struct {
	mu        sync.RWMutex
	instances map[string]*model.WizardInstance
	expiry    map[string]time.Time
	ttl       time.Duration
}

// NewInstanceStore creates an InstanceStore with the given session TTL.
func NewInstanceStore(ttl time.Duration) *InstanceStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InstanceStore{
		instances: make(map[string]*model.WizardInstance),
		expiry:    make(map[string]time.Time),
		ttl:       ttl,
	}
}

// Put stores an instance and refreshes its expiry.
func (s *InstanceStore) Put(inst *model.WizardInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[inst.ID] = inst
	s.expiry[inst.ID] = time.Now().Add(s.ttl)
}

// Get returns a copy of the instance with the given id, or false when it is
// unknown or expired.
func (s *InstanceStore) Get(id string) (model.WizardInstance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances[id]
	if !ok {
		return model.WizardInstance{}, false
	}
	if time.Now().After(s.expiry[id]) {
		return model.WizardInstance{}, false
	}

	out := *inst
	out.Values = make(model.Record, len(inst.Values))
	for k, v := range inst.Values {
		out.Values[k] = v
	}
	return out, true
}

// Delete removes an instance.
func (s *InstanceStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, id)
	delete(s.expiry, id)
}

// Len returns the number of live instances. For testing.
func (s *InstanceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

// RunCleanup evicts expired sessions at the given interval until the context
// is cancelled.
func (s *InstanceStore) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *InstanceStore) evictExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, deadline := range s.expiry {
		if now.After(deadline) {
			delete(s.instances, id)
			delete(s.expiry, id)
		}
	}
}
