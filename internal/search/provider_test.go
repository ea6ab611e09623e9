package search

import (
	"context"
	"testing"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func searchFixture() model.AppConfig {
	return model.AppConfig{
		Auth: model.AuthConfig{Roles: []string{"admin", "viewer"}},
		Resources: map[string]model.ResourceDef{
			"employees": {
				Fields: map[string]model.FieldDef{
					"name":   {Type: "text"},
					"email":  {Type: "text"},
					"salary": {Type: "number"},
				},
				Permissions: map[string][]string{
					"admin":  {"*"},
					"viewer": {"view"},
				},
				Data: []model.Record{
					{"id": "e1", "name": "Grace Hopper", "email": "grace@navy.mil", "salary": float64(120)},
					{"id": "e2", "name": "Ada Lovelace", "email": "ada@analytical.engine", "salary": float64(90)},
				},
			},
			"projects": {
				Fields: map[string]model.FieldDef{
					"title": {Type: "text"},
				},
				Permissions: map[string][]string{
					"admin": {"*"},
				},
				Data: []model.Record{
					{"id": "p1", "title": "Grace period billing"},
				},
			},
		},
	}
}

func newSearchProvider(t *testing.T) *Provider {
	t.Helper()
	cfg := searchFixture()
	registry := appconfig.NewRegistry(cfg, "1.0.0", "dead")
	records, err := store.NewMemoryStore(cfg.Resources)
	if err != nil {
		t.Fatalf("NewMemoryStore error: %v", err)
	}
	return NewProvider(registry, permission.NewGate(registry), records, time.Second, 50)
}

func TestProvider_Search_shortQueryRejected(t *testing.T) {
	p := newSearchProvider(t)

	_, err := p.Search(context.Background(), &model.RequestContext{SubjectID: "u1", Role: "admin"}, " g ")
	envErr, ok := err.(*model.ErrorEnvelope)
	if !ok || envErr.Code != model.ErrBadRequest {
		t.Errorf("err = %v, want BAD_REQUEST", err)
	}
}

func TestProvider_Search_caseInsensitiveContains(t *testing.T) {
	p := newSearchProvider(t)

	resp, err := p.Search(context.Background(), &model.RequestContext{SubjectID: "u1", Role: "admin"}, "GRACE")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3: %+v", resp.Total, resp.Results)
	}
	// Sorted by resource, then record, then field.
	r := resp.Results
	if r[0].Resource != "employees" || r[0].RecordID != "e1" || r[0].Field != "email" {
		t.Errorf("results[0] = %+v", r[0])
	}
	if r[1].Field != "name" || r[1].Value != "Grace Hopper" {
		t.Errorf("results[1] = %+v", r[1])
	}
	if r[2].Resource != "projects" || r[2].RecordID != "p1" {
		t.Errorf("results[2] = %+v", r[2])
	}
	if resp.Sources["employees"] != "ok" || resp.Sources["projects"] != "ok" {
		t.Errorf("sources = %v", resp.Sources)
	}
}

func TestProvider_Search_permissionFiltersResources(t *testing.T) {
	p := newSearchProvider(t)

	resp, err := p.Search(context.Background(), &model.RequestContext{SubjectID: "u2", Role: "viewer"}, "grace")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	for _, r := range resp.Results {
		if r.Resource == "projects" {
			t.Errorf("viewer must not see projects matches: %+v", r)
		}
	}
	if _, ok := resp.Sources["projects"]; ok {
		t.Errorf("projects should not be scanned for viewer: %v", resp.Sources)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}

func TestProvider_Search_nonTextFieldsIgnored(t *testing.T) {
	p := newSearchProvider(t)

	// "120" only appears in a numeric field.
	resp, err := p.Search(context.Background(), &model.RequestContext{SubjectID: "u1", Role: "admin"}, "120")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("total = %d, want 0: %+v", resp.Total, resp.Results)
	}
}

func TestProvider_Search_maxPerResourceCapsMatches(t *testing.T) {
	cfg := searchFixture()
	registry := appconfig.NewRegistry(cfg, "1.0.0", "dead")
	records, err := store.NewMemoryStore(cfg.Resources)
	if err != nil {
		t.Fatalf("NewMemoryStore error: %v", err)
	}
	p := NewProvider(registry, permission.NewGate(registry), records, time.Second, 1)

	resp, err := p.Search(context.Background(), &model.RequestContext{SubjectID: "u1", Role: "admin"}, "grace")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	perResource := map[string]int{}
	for _, r := range resp.Results {
		perResource[r.Resource]++
	}
	for resource, n := range perResource {
		if n > 1 {
			t.Errorf("%s matches = %d, want at most 1", resource, n)
		}
	}
}
