// Package integration spins up the full runtime router over an in-memory
// record store and exercises it over real HTTP.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
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
	"github.com/vivek100/oneShotCodeGen-sub000/internal/transport"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/wizard"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

const testSecret = "integration-test-secret-0123456789abcdef"

// Harness runs a fully wired runtime server against a fixture app config.
type Harness struct {
	Server   *httptest.Server
	Registry *appconfig.Registry
	Records  store.Store
}

// NewHarness builds the runtime for the given app config and starts an HTTP
// server for it. The server is torn down with the test.
func NewHarness(t *testing.T, appCfg model.AppConfig) *Harness {
	t.Helper()
	t.Setenv("ONESHOT_AUTH_SECRET", testSecret)

	cfg := config.Defaults()
	registry := appconfig.NewRegistry(appCfg, appCfg.App.Version, "integration")
	records, err := store.NewMemoryStore(appCfg.Resources)
	if err != nil {
		t.Fatalf("building record store: %v", err)
	}
	gate := permission.NewGate(registry)
	refs := reference.NewResolver(records, time.Minute, 100)
	records.AddMutationHook(refs.Invalidate)
	engine := transform.NewEngine(records, refs)
	factory := render.NewFactory(gate)
	metrics := observability.InitMetrics(prometheus.NewRegistry())
	instances := wizard.NewInstanceStore(time.Minute)

	auth, err := transport.NewAuthenticator(cfg.Identity, registry, metrics)
	if err != nil {
		t.Fatalf("building authenticator: %v", err)
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:        cfg,
		Logger:        zap.NewNop(),
		Registry:      registry,
		Gate:          gate,
		Records:       records,
		Pages:         render.NewPageProvider(registry, factory),
		Data:          render.NewDataProvider(registry, gate, records, refs, engine),
		Wizards:       wizard.NewEngine(registry, gate, records, instances),
		Search:        search.NewProvider(registry, gate, records, time.Second, 50),
		Metrics:       metrics,
		Authenticator: auth,
		Idempotency:   transport.NewMemoryIdempotencyStore(),
		Ready: observability.ReadinessChecks{
			ConfigLoaded: func() bool { return true },
			RecordStore:  records,
		},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &Harness{Server: srv, Registry: registry, Records: records}
}

// Login authenticates a configured user and returns their token.
func (h *Harness) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp := h.POST(t, "/ui/auth/login", map[string]any{
		"email": email, "password": password,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	h.ParseJSON(t, resp, &body)
	return body.Token
}

// GET issues an authenticated GET request.
func (h *Harness) GET(t *testing.T, path, token string) *http.Response {
	t.Helper()
	return h.do(t, http.MethodGet, path, nil, token)
}

// POST issues an authenticated POST request with a JSON body.
func (h *Harness) POST(t *testing.T, path string, body any, token string) *http.Response {
	t.Helper()
	return h.do(t, http.MethodPost, path, body, token)
}

func (h *Harness) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, h.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// ParseJSON decodes a response body and closes it.
func (h *Harness) ParseJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// AssertStatus fails the test when the response status differs, printing the
// body for diagnosis.
func (h *Harness) AssertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, want, body)
	}
}
