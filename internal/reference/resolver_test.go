package reference

import (
	"context"
	"testing"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func newTestResolver(t *testing.T) (*Resolver, store.Store) {
	t.Helper()
	records, err := store.NewMemoryStore(map[string]model.ResourceDef{
		"departments": {
			Fields: map[string]model.FieldDef{
				"name": {Type: "text"},
			},
			Data: []model.Record{
				{"id": "d1", "name": "Engineering"},
				{"id": "d2", "name": "Operations"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewMemoryStore error: %v", err)
	}
	r := NewResolver(records, time.Minute, 10)
	records.AddMutationHook(r.Invalidate)
	return r, records
}

func deptRef() model.ReferenceDef {
	return model.ReferenceDef{Resource: "departments", DisplayField: "name", ValueField: "id"}
}

func TestResolver_Resolve_displayLabel(t *testing.T) {
	r, _ := newTestResolver(t)

	got := r.Resolve(context.Background(), "d1", deptRef())
	if got != "Engineering" {
		t.Errorf("Resolve = %v, want Engineering", got)
	}
}

func TestResolver_Resolve_missFallsBackToRawValue(t *testing.T) {
	r, _ := newTestResolver(t)

	if got := r.Resolve(context.Background(), "d99", deptRef()); got != "d99" {
		t.Errorf("unknown value: Resolve = %v, want d99", got)
	}

	badRef := model.ReferenceDef{Resource: "ghosts", DisplayField: "name", ValueField: "id"}
	if got := r.Resolve(context.Background(), "d1", badRef); got != "d1" {
		t.Errorf("unknown resource: Resolve = %v, want d1", got)
	}

	if got := r.Resolve(context.Background(), "d1", model.ReferenceDef{}); got != "d1" {
		t.Errorf("empty reference: Resolve = %v, want d1", got)
	}
}

func TestResolver_Options(t *testing.T) {
	r, _ := newTestResolver(t)

	opts, err := r.Options(context.Background(), deptRef())
	if err != nil {
		t.Fatalf("Options error: %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("len(opts) = %d, want 2", len(opts))
	}
	if opts[0].Label != "Engineering" || opts[0].Value != "d1" {
		t.Errorf("opts[0] = %+v", opts[0])
	}
	if opts[1].Label != "Operations" || opts[1].Value != "d2" {
		t.Errorf("opts[1] = %+v", opts[1])
	}
}

func TestResolver_Invalidate_onWrite(t *testing.T) {
	r, records := newTestResolver(t)

	// Prime the cache, then rename via the store. The mutation hook must
	// drop the index so the next lookup sees the new label.
	if got := r.Resolve(context.Background(), "d1", deptRef()); got != "Engineering" {
		t.Fatalf("Resolve = %v, want Engineering", got)
	}
	if r.CacheLen() != 1 {
		t.Fatalf("CacheLen = %d, want 1", r.CacheLen())
	}

	if _, err := records.Update(context.Background(), "departments", "d1", model.Record{"name": "Platform"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if r.CacheLen() != 0 {
		t.Fatalf("CacheLen after write = %d, want 0", r.CacheLen())
	}

	if got := r.Resolve(context.Background(), "d1", deptRef()); got != "Platform" {
		t.Errorf("Resolve after rename = %v, want Platform", got)
	}
}
