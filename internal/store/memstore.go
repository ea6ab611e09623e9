package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// MemoryStore is the in-memory record store driver. It owns all record
// slices exclusively; every read hands out copies.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]model.Record
	schemas     *SchemaSet
	hooks       []func(resource string)
}

// NewMemoryStore builds a store seeded from the resource definitions. Seed
// records are validated against the derived field schemas; a bad seed fails
// construction rather than surfacing later as a render error.
func NewMemoryStore(resources map[string]model.ResourceDef) (*MemoryStore, error) {
	s := &MemoryStore{
		collections: make(map[string][]model.Record, len(resources)),
		schemas:     NewSchemaSet(resources),
	}

	for name, def := range resources {
		records := make([]model.Record, 0, len(def.Data))
		for i, seed := range def.Data {
			if errs := s.schemas.Validate(name, seed); len(errs) > 0 {
				return nil, fmt.Errorf("seeding %s[%d]: %s", name, i, errs[0].Message)
			}
			records = append(records, cloneRecord(seed))
		}
		s.collections[name] = records
	}

	return s, nil
}

// AddMutationHook registers a callback invoked after every successful write
// to a resource. Used for reference cache invalidation.
func (s *MemoryStore) AddMutationHook(fn func(resource string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *MemoryStore) notify(resource string) {
	for _, fn := range s.hooks {
		fn(resource)
	}
}

// GetList returns records matching the filter, sorted and paginated.
func (s *MemoryStore) GetList(_ context.Context, resource string, p ListParams) (ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, exists := s.collections[resource]
	if !exists {
		return ListResult{}, model.NewResourceNotFoundError(resource)
	}
	return runList(records, p), nil
}

// GetOne returns the record with the given id.
func (s *MemoryStore) GetOne(_ context.Context, resource, id string) (model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, exists := s.collections[resource]
	if !exists {
		return nil, model.NewResourceNotFoundError(resource)
	}
	for _, rec := range records {
		if recordID(rec) == id {
			return cloneRecord(rec), nil
		}
	}
	return nil, model.NewRecordNotFoundError(resource, id)
}

// Create validates and appends a record, synthesizing an id when absent.
func (s *MemoryStore) Create(_ context.Context, resource string, data model.Record) (model.Record, error) {
	s.mu.Lock()

	records, exists := s.collections[resource]
	if !exists {
		s.mu.Unlock()
		return nil, model.NewResourceNotFoundError(resource)
	}

	if errs := s.schemas.Validate(resource, data); len(errs) > 0 {
		s.mu.Unlock()
		return nil, model.NewValidationError(errs)
	}

	rec := cloneRecord(data)
	if recordID(rec) == "" {
		rec["id"] = synthesizeID()
	}
	s.collections[resource] = append(records, rec)
	s.mu.Unlock()

	s.notify(resource)
	return cloneRecord(rec), nil
}

// Update shallow-merges data over the stored record. The id is immutable.
func (s *MemoryStore) Update(_ context.Context, resource, id string, data model.Record) (model.Record, error) {
	s.mu.Lock()

	records, exists := s.collections[resource]
	if !exists {
		s.mu.Unlock()
		return nil, model.NewResourceNotFoundError(resource)
	}

	if errs := s.schemas.Validate(resource, data); len(errs) > 0 {
		s.mu.Unlock()
		return nil, model.NewValidationError(errs)
	}

	for i, rec := range records {
		if recordID(rec) == id {
			merged := mergeRecord(rec, data)
			records[i] = merged
			s.mu.Unlock()

			s.notify(resource)
			return cloneRecord(merged), nil
		}
	}

	s.mu.Unlock()
	return nil, model.NewRecordNotFoundError(resource, id)
}

// Delete removes and returns the record with the given id.
func (s *MemoryStore) Delete(_ context.Context, resource, id string) (model.Record, error) {
	s.mu.Lock()

	records, exists := s.collections[resource]
	if !exists {
		s.mu.Unlock()
		return nil, model.NewResourceNotFoundError(resource)
	}

	for i, rec := range records {
		if recordID(rec) == id {
			s.collections[resource] = append(records[:i:i], records[i+1:]...)
			s.mu.Unlock()

			s.notify(resource)
			return cloneRecord(rec), nil
		}
	}

	s.mu.Unlock()
	return nil, model.NewRecordNotFoundError(resource, id)
}

// Aggregate reduces the filtered collection with the given function.
func (s *MemoryStore) Aggregate(_ context.Context, resource string, p AggregateParams) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, exists := s.collections[resource]
	if !exists {
		return 0, model.NewResourceNotFoundError(resource)
	}
	return runAggregate(records, p)
}

// Resources returns the known collection names, sorted.
func (s *MemoryStore) Resources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheck always succeeds for the in-memory driver.
func (s *MemoryStore) HealthCheck(_ context.Context) error {
	return nil
}

// Len returns the number of records in a resource. For testing.
func (s *MemoryStore) Len(resource string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[resource])
}
