package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// SQLiteStore persists records in a single SQLite file, one row per record
// with the record body as a JSON document. It backs the "file" persistence
// mode. Query semantics are identical to the memory driver: collections are
// materialized and run through the shared pipeline, so filter, sort, and
// aggregate behavior cannot drift between drivers.
type SQLiteStore struct {
	mu      sync.Mutex
	db      *sql.DB
	schemas *SchemaSet
	known   map[string]bool
	hooks   []func(resource string)
}

// NewSQLiteStore opens (or creates) the database at path and seeds any
// resource whose collection is empty.
func NewSQLiteStore(path string, resources map[string]model.ResourceDef) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	s := &SQLiteStore{
		db:      db,
		schemas: NewSchemaSet(resources),
		known:   make(map[string]bool, len(resources)),
	}
	for name := range resources {
		s.known[name] = true
	}

	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seed(resources); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			seq      INTEGER PRIMARY KEY AUTOINCREMENT,
			resource TEXT NOT NULL,
			id       TEXT NOT NULL,
			doc      TEXT NOT NULL,
			UNIQUE (resource, id)
		)`)
	if err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}
	return nil
}

// seed inserts seed data for every resource that has no rows yet. Existing
// collections are left untouched so restarts keep user writes.
func (s *SQLiteStore) seed(resources map[string]model.ResourceDef) error {
	for name, def := range resources {
		var count int
		if err := s.db.QueryRow(
			`SELECT COUNT(*) FROM records WHERE resource = ?`, name,
		).Scan(&count); err != nil {
			return fmt.Errorf("sqlite: counting %s: %w", name, err)
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
			if err := s.insert(context.Background(), name, rec); err != nil {
				return fmt.Errorf("seeding %s[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) insert(ctx context.Context, resource string, rec model.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (resource, id, doc) VALUES (?, ?, ?)`,
		resource, recordID(rec), string(doc))
	return err
}

// load materializes a collection in insertion order.
func (s *SQLiteStore) load(ctx context.Context, resource string) ([]model.Record, error) {
	if !s.known[resource] {
		return nil, model.NewResourceNotFoundError(resource)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM records WHERE resource = ? ORDER BY seq`, resource)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", resource, err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s: %w", resource, err)
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("sqlite: decoding %s record: %w", resource, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AddMutationHook registers a callback invoked after every successful write.
func (s *SQLiteStore) AddMutationHook(fn func(resource string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *SQLiteStore) notify(resource string) {
	for _, fn := range s.hooks {
		fn(resource)
	}
}

// GetList returns records matching the filter, sorted and paginated.
func (s *SQLiteStore) GetList(ctx context.Context, resource string, p ListParams) (ListResult, error) {
	records, err := s.load(ctx, resource)
	if err != nil {
		return ListResult{}, err
	}
	return runList(records, p), nil
}

// GetOne returns the record with the given id.
func (s *SQLiteStore) GetOne(ctx context.Context, resource, id string) (model.Record, error) {
	if !s.known[resource] {
		return nil, model.NewResourceNotFoundError(resource)
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM records WHERE resource = ? AND id = ?`, resource, id,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, model.NewRecordNotFoundError(resource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading %s/%s: %w", resource, id, err)
	}

	var rec model.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("sqlite: decoding %s/%s: %w", resource, id, err)
	}
	return rec, nil
}

// Create validates and inserts a record, synthesizing an id when absent.
func (s *SQLiteStore) Create(ctx context.Context, resource string, data model.Record) (model.Record, error) {
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
		return nil, fmt.Errorf("sqlite: inserting into %s: %w", resource, err)
	}

	s.notify(resource)
	return rec, nil
}

// Update shallow-merges data over the stored record. The id is immutable.
func (s *SQLiteStore) Update(ctx context.Context, resource, id string, data model.Record) (model.Record, error) {
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

	_, err = s.db.ExecContext(ctx,
		`UPDATE records SET doc = ? WHERE resource = ? AND id = ?`,
		string(doc), resource, id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating %s/%s: %w", resource, id, err)
	}

	s.notify(resource)
	return merged, nil
}

// Delete removes and returns the record with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, resource, id string) (model.Record, error) {
	s.mu.Lock()
	existing, err := s.GetOne(ctx, resource, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM records WHERE resource = ? AND id = ?`, resource, id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("sqlite: deleting %s/%s: %w", resource, id, err)
	}

	s.notify(resource)
	return existing, nil
}

// Aggregate reduces the filtered collection with the given function.
func (s *SQLiteStore) Aggregate(ctx context.Context, resource string, p AggregateParams) (float64, error) {
	records, err := s.load(ctx, resource)
	if err != nil {
		return 0, err
	}
	return runAggregate(records, p)
}

// Resources returns the known collection names, sorted.
func (s *SQLiteStore) Resources() []string {
	names := make([]string, 0, len(s.known))
	for name := range s.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheck pings the underlying database.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
