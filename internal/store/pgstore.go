package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// PgStore persists records in PostgreSQL as JSONB documents. It backs the
// "postgres" persistence mode and shares the same query pipeline as the
// other drivers.
type PgStore struct {
	mu      sync.Mutex
	pool    *pgxpool.Pool
	schemas *SchemaSet
	known   map[string]bool
	hooks   []func(resource string)
}

// NewPgStore wires a store onto an existing connection pool, creates the
// records table if needed, and seeds empty collections.
func NewPgStore(ctx context.Context, pool *pgxpool.Pool, resources map[string]model.ResourceDef) (*PgStore, error) {
	s := &PgStore{
		pool:    pool,
		schemas: NewSchemaSet(resources),
		known:   make(map[string]bool, len(resources)),
	}
	for name := range resources {
		s.known[name] = true
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	if err := s.seed(ctx, resources); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PgStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS app_records (
			seq      BIGSERIAL PRIMARY KEY,
			resource TEXT NOT NULL,
			id       TEXT NOT NULL,
			doc      JSONB NOT NULL,
			UNIQUE (resource, id)
		)`)
	if err != nil {
		return fmt.Errorf("pgstore: create schema: %w", err)
	}
	return nil
}

func (s *PgStore) seed(ctx context.Context, resources map[string]model.ResourceDef) error {
	for name, def := range resources {
		var count int
		if err := s.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM app_records WHERE resource = $1`, name,
		).Scan(&count); err != nil {
			return fmt.Errorf("pgstore: counting %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		for i, seed := range def.Data {
			if errs := s.schemas.Validate(name, seed); len(errs) > 0 {
				return fmt.Errorf("seeding %s[%d]: %s", name, i, errs[0].Message)
			}
			rec := cloneRecord(seed)
			if recordID(rec) == "" {
				rec["id"] = synthesizeID()
			}
			if err := s.insert(ctx, name, rec); err != nil {
				return fmt.Errorf("seeding %s[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}

func (s *PgStore) insert(ctx context.Context, resource string, rec model.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO app_records (resource, id, doc) VALUES ($1, $2, $3)`,
		resource, recordID(rec), doc)
	return err
}

func (s *PgStore) load(ctx context.Context, resource string) ([]model.Record, error) {
	if !s.known[resource] {
		return nil, model.NewResourceNotFoundError(resource)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM app_records WHERE resource = $1 ORDER BY seq`, resource)
	if err != nil {
		return nil, fmt.Errorf("pgstore: listing %s: %w", resource, err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("pgstore: scanning %s: %w", resource, err)
		}
		var rec model.Record
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("pgstore: decoding %s record: %w", resource, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AddMutationHook registers a callback invoked after every successful write.
func (s *PgStore) AddMutationHook(fn func(resource string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *PgStore) notify(resource string) {
	for _, fn := range s.hooks {
		fn(resource)
	}
}

// GetList returns records matching the filter, sorted and paginated.
func (s *PgStore) GetList(ctx context.Context, resource string, p ListParams) (ListResult, error) {
	records, err := s.load(ctx, resource)
	if err != nil {
		return ListResult{}, err
	}
	return runList(records, p), nil
}

// GetOne returns the record with the given id.
func (s *PgStore) GetOne(ctx context.Context, resource, id string) (model.Record, error) {
	if !s.known[resource] {
		return nil, model.NewResourceNotFoundError(resource)
	}

	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM app_records WHERE resource = $1 AND id = $2`, resource, id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewRecordNotFoundError(resource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: reading %s/%s: %w", resource, id, err)
	}

	var rec model.Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("pgstore: decoding %s/%s: %w", resource, id, err)
	}
	return rec, nil
}

// Create validates and inserts a record, synthesizing an id when absent.
func (s *PgStore) Create(ctx context.Context, resource string, data model.Record) (model.Record, error) {
	if !s.known[resource] {
		return nil, model.NewResourceNotFoundError(resource)
	}
	if errs := s.schemas.Validate(resource, data); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	rec := cloneRecord(data)
	if recordID(rec) == "" {
		rec["id"] = synthesizeID()
	}

	s.mu.Lock()
	err := s.insert(ctx, resource, rec)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("pgstore: inserting into %s: %w", resource, err)
	}

	s.notify(resource)
	return rec, nil
}

// Update shallow-merges data over the stored record. The id is immutable.
func (s *PgStore) Update(ctx context.Context, resource, id string, data model.Record) (model.Record, error) {
	if errs := s.schemas.Validate(resource, data); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	s.mu.Lock()
	existing, err := s.GetOne(ctx, resource, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	merged := mergeRecord(existing, data)
	doc, err := json.Marshal(merged)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE app_records SET doc = $1 WHERE resource = $2 AND id = $3`,
		doc, resource, id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("pgstore: updating %s/%s: %w", resource, id, err)
	}

	s.notify(resource)
	return merged, nil
}

// Delete removes and returns the record with the given id.
func (s *PgStore) Delete(ctx context.Context, resource, id string) (model.Record, error) {
	s.mu.Lock()
	existing, err := s.GetOne(ctx, resource, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`DELETE FROM app_records WHERE resource = $1 AND id = $2`, resource, id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("pgstore: deleting %s/%s: %w", resource, id, err)
	}

	s.notify(resource)
	return existing, nil
}

// Aggregate reduces the filtered collection with the given function.
func (s *PgStore) Aggregate(ctx context.Context, resource string, p AggregateParams) (float64, error) {
	records, err := s.load(ctx, resource)
	if err != nil {
		return 0, err
	}
	return runAggregate(records, p)
}

// Resources returns the known collection names, sorted.
func (s *PgStore) Resources() []string {
	names := make([]string, 0, len(s.known))
	for name := range s.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheck pings the underlying pool.
func (s *PgStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
