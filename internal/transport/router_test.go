package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/config"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/reference"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/render"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/search"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/transform"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/wizard"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

func routerFixture() model.AppConfig {
	return model.AppConfig{
		App: model.AppInfo{Name: "HR", Version: "1.0.0"},
		Auth: model.AuthConfig{
			Roles: []string{"admin"},
			Users: []model.UserDef{
				{ID: "u1", Name: "Admin", Email: "admin@example.com", Password: "hunter22", Role: "admin"},
			},
		},
		Resources: map[string]model.ResourceDef{
			"employees": {
				Fields: map[string]model.FieldDef{
					"name": {Type: "text"},
				},
				Permissions: map[string][]string{"admin": {"*"}},
				Data: []model.Record{
					{"id": "e1", "name": "Ada"},
				},
			},
		},
		Pages: []model.PageDef{{
			ID: "people", Title: "People", Path: "/people", ShowInSidebar: true,
			Zones: []model.ZoneDef{{
				Name: "main",
				Components: []model.ComponentDef{{
					Type: model.ComponentDataTable,
					Props: json.RawMessage(`{
						"resource": "employees",
						"columns": [{"field": "name"}],
						"formValidationRules": {"name": {"required": true}}
					}`),
				}},
			}},
		}},
		Settings: model.Settings{EnableAuth: true},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("ONESHOT_AUTH_SECRET", testSecret)

	cfg := config.Defaults()
	appCfg := routerFixture()
	registry := appconfig.NewRegistry(appCfg, appCfg.App.Version, "0ddba11")
	records, err := store.NewMemoryStore(appCfg.Resources)
	if err != nil {
		t.Fatalf("NewMemoryStore error: %v", err)
	}
	gate := permission.NewGate(registry)
	refs := reference.NewResolver(records, time.Minute, 100)
	engine := transform.NewEngine(records, refs)
	factory := render.NewFactory(gate)
	pages := render.NewPageProvider(registry, factory)
	data := render.NewDataProvider(registry, gate, records, refs, engine)
	instances := wizard.NewInstanceStore(time.Minute)
	wizards := wizard.NewEngine(registry, gate, records, instances)
	searcher := search.NewProvider(registry, gate, records, time.Second, 50)
	metrics := observability.InitMetrics(prometheus.NewRegistry())
	idem := NewMemoryIdempotencyStore()

	auth, err := NewAuthenticator(cfg.Identity, registry, metrics)
	if err != nil {
		t.Fatalf("NewAuthenticator error: %v", err)
	}

	return NewRouter(Dependencies{
		Config:        cfg,
		Logger:        zap.NewNop(),
		Registry:      registry,
		Gate:          gate,
		Records:       records,
		Pages:         pages,
		Data:          data,
		Wizards:       wizards,
		Search:        searcher,
		Metrics:       metrics,
		Authenticator: auth,
		Idempotency:   idem,
		Ready: observability.ReadinessChecks{
			ConfigLoaded: func() bool { return true },
			RecordStore:  records,
		},
	})
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/ui/auth/login",
		strings.NewReader(`{"email": "admin@example.com", "password": "hunter22"}`))
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("login unmarshal: %v", err)
	}
	return resp.Token
}

func authedRequest(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestRouter_publicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ui/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/ui/health status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ui/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/ui/ready status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRouter_protectedEndpointsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ui/app", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("/ui/app without token status = %d, want 401", w.Code)
	}
}

func TestRouter_pageAndDataFlow(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	w := authedRequest(t, router, "GET", "/ui/navigation", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("navigation status = %d, body = %s", w.Code, w.Body.String())
	}

	w = authedRequest(t, router, "GET", "/ui/pages/people", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("page status = %d, body = %s", w.Code, w.Body.String())
	}

	w = authedRequest(t, router, "GET", "/ui/pages/people/components/main:0/data", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("data status = %d, body = %s", w.Code, w.Body.String())
	}
	var table model.TableData
	if err := json.Unmarshal(w.Body.Bytes(), &table); err != nil {
		t.Fatalf("table unmarshal: %v", err)
	}
	if table.Total != 1 {
		t.Errorf("total = %d, want 1", table.Total)
	}
}

func TestRouter_submitIdempotencyReplay(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)
	body := `{"values": {"name": "Grace"}}`

	first := httptest.NewRequest("POST", "/ui/pages/people/components/main:0/submit", strings.NewReader(body))
	first.Header.Set("Authorization", "Bearer "+token)
	first.Header.Set("X-Idempotency-Key", "req-1")
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, first)
	if w1.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body = %s", w1.Code, w1.Body.String())
	}

	second := httptest.NewRequest("POST", "/ui/pages/people/components/main:0/submit", strings.NewReader(body))
	second.Header.Set("Authorization", "Bearer "+token)
	second.Header.Set("X-Idempotency-Key", "req-1")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, second)

	if w2.Code != http.StatusOK {
		t.Fatalf("replay status = %d", w2.Code)
	}
	if w2.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("replay header missing")
	}
	if w1.Body.String() != w2.Body.String() {
		t.Errorf("replayed body differs: %s vs %s", w1.Body.String(), w2.Body.String())
	}

	// Same key, different input: conflict.
	third := httptest.NewRequest("POST", "/ui/pages/people/components/main:0/submit",
		strings.NewReader(`{"values": {"name": "Linus"}}`))
	third.Header.Set("Authorization", "Bearer "+token)
	third.Header.Set("X-Idempotency-Key", "req-1")
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, third)
	if w3.Code != http.StatusConflict {
		t.Errorf("conflicting replay status = %d, want 409", w3.Code)
	}
}

func TestRouter_resourcePassthroughCRUD(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	w := authedRequest(t, router, "POST", "/ui/resources/employees/records", `{"name": "Grace"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created model.Record
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("create unmarshal: %v", err)
	}
	id, _ := created["id"].(string)

	w = authedRequest(t, router, "PATCH", "/ui/resources/employees/records/"+id, `{"name": "Grace H."}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = authedRequest(t, router, "DELETE", "/ui/resources/employees/records/"+id, "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}

	w = authedRequest(t, router, "GET", "/ui/resources/employees/records/"+id, "", token)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}

	w = authedRequest(t, router, "GET", "/ui/resources/ghosts/records", "", token)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown resource status = %d, want 404", w.Code)
	}
}

func TestRouter_searchEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	w := authedRequest(t, router, "GET", "/ui/search?q=ada", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp model.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("search unmarshal: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1: %+v", resp.Total, resp.Results)
	}

	w = authedRequest(t, router, "GET", "/ui/search?q=a", "", token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("short query status = %d, want 400", w.Code)
	}
}
