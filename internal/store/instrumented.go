package store

import (
	"context"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Instrumentor receives record store operation outcomes. Satisfied by the
// observability metrics without importing it here.
type Instrumentor interface {
	RecordStoreOperation(resource, operation, status string, duration time.Duration)
	RecordStoreValidationFailure(resource string)
}

// instrumentedStore decorates a Store with per-operation metrics.
type instrumentedStore struct {
	inner Store
	m     Instrumentor
}

// NewInstrumentedStore wraps a Store so every operation is recorded.
func NewInstrumentedStore(inner Store, m Instrumentor) Store {
	return &instrumentedStore{inner: inner, m: m}
}

func (s *instrumentedStore) record(resource, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if envErr, ok := err.(*model.ErrorEnvelope); ok && envErr.Code == model.ErrValidationError {
			s.m.RecordStoreValidationFailure(resource)
		}
	}
	s.m.RecordStoreOperation(resource, operation, status, time.Since(start))
}

func (s *instrumentedStore) GetList(ctx context.Context, resource string, p ListParams) (ListResult, error) {
	start := time.Now()
	result, err := s.inner.GetList(ctx, resource, p)
	s.record(resource, "get_list", start, err)
	return result, err
}

func (s *instrumentedStore) GetOne(ctx context.Context, resource, id string) (model.Record, error) {
	start := time.Now()
	rec, err := s.inner.GetOne(ctx, resource, id)
	s.record(resource, "get_one", start, err)
	return rec, err
}

func (s *instrumentedStore) Create(ctx context.Context, resource string, data model.Record) (model.Record, error) {
	start := time.Now()
	rec, err := s.inner.Create(ctx, resource, data)
	s.record(resource, "create", start, err)
	return rec, err
}

func (s *instrumentedStore) Update(ctx context.Context, resource, id string, data model.Record) (model.Record, error) {
	start := time.Now()
	rec, err := s.inner.Update(ctx, resource, id, data)
	s.record(resource, "update", start, err)
	return rec, err
}

func (s *instrumentedStore) Delete(ctx context.Context, resource, id string) (model.Record, error) {
	start := time.Now()
	rec, err := s.inner.Delete(ctx, resource, id)
	s.record(resource, "delete", start, err)
	return rec, err
}

func (s *instrumentedStore) Aggregate(ctx context.Context, resource string, p AggregateParams) (float64, error) {
	start := time.Now()
	v, err := s.inner.Aggregate(ctx, resource, p)
	s.record(resource, "aggregate", start, err)
	return v, err
}

func (s *instrumentedStore) Resources() []string {
	return s.inner.Resources()
}

func (s *instrumentedStore) AddMutationHook(fn func(resource string)) {
	s.inner.AddMutationHook(fn)
}

func (s *instrumentedStore) HealthCheck(ctx context.Context) error {
	return s.inner.HealthCheck(ctx)
}
