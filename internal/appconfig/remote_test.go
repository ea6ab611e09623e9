package appconfig

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func remoteServer(t *testing.T, status int, configJSON string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app-version/latest" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("project_id") != "p-1" {
			http.Error(w, "unknown project", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"config_json": %s, "app": {"versionNumber": "3.2.1"}}`, configJSON)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSource_FetchLatest(t *testing.T) {
	srv := remoteServer(t, http.StatusOK, `{"app": {"name": "HR"}}`)
	rs := NewRemoteSource(RemoteOptions{
		BaseURL:   srv.URL,
		ProjectID: "p-1",
	}, nil, zap.NewNop())

	cfg, version, checksum, err := rs.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest error: %v", err)
	}
	if cfg.App.Name != "HR" || version != "3.2.1" {
		t.Errorf("cfg = %+v, version = %q", cfg.App, version)
	}
	if checksum == "" {
		t.Error("checksum empty")
	}
}

func TestRemoteSource_FetchLatest_serverError(t *testing.T) {
	srv := remoteServer(t, http.StatusInternalServerError, `{}`)
	rs := NewRemoteSource(RemoteOptions{
		BaseURL:   srv.URL,
		ProjectID: "p-1",
	}, nil, zap.NewNop())

	if _, _, _, err := rs.FetchLatest(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestRemoteSource_breakerShortCircuitsAfterFailures(t *testing.T) {
	srv := remoteServer(t, http.StatusInternalServerError, `{}`)
	rs := NewRemoteSource(RemoteOptions{
		BaseURL:          srv.URL,
		ProjectID:        "p-1",
		FailureThreshold: 2,
		BreakerTimeout:   time.Minute,
	}, nil, zap.NewNop())

	for i := 0; i < 2; i++ {
		if _, _, _, err := rs.FetchLatest(context.Background()); err == nil {
			t.Fatal("expected fetch failure")
		}
	}

	_, _, _, err := rs.FetchLatest(context.Background())
	if err != ErrBreakerOpen {
		t.Errorf("err = %v, want ErrBreakerOpen", err)
	}
}

func TestRemoteSource_pollSwapsRegistryOnNewChecksum(t *testing.T) {
	srv := remoteServer(t, http.StatusOK, `{
		"app": {"name": "HR", "version": "3.2.1"},
		"auth": {"roles": ["admin"]},
		"resources": {"employees": {"fields": {"name": {"type": "text"}}}},
		"pages": [{"id": "people", "title": "People", "path": "/people"}]
	}`)
	registry := NewRegistry(registryConfig(), "1.0.0", "old-checksum")
	rs := NewRemoteSource(RemoteOptions{
		BaseURL:   srv.URL,
		ProjectID: "p-1",
	}, registry, zap.NewNop())

	rs.poll(context.Background())

	if registry.Version() != "3.2.1" {
		t.Errorf("version = %q, want 3.2.1", registry.Version())
	}
	if _, ok := registry.GetPage("people"); !ok {
		t.Error("new config not served after poll")
	}
}

func TestRemoteSource_pollRejectsInvalidConfig(t *testing.T) {
	// Page without id or path: fatal validation errors.
	srv := remoteServer(t, http.StatusOK, `{
		"auth": {"roles": ["admin"]},
		"pages": [{"title": "Broken"}]
	}`)
	registry := NewRegistry(registryConfig(), "1.0.0", "old-checksum")
	rs := NewRemoteSource(RemoteOptions{
		BaseURL:   srv.URL,
		ProjectID: "p-1",
	}, registry, zap.NewNop())

	rs.poll(context.Background())

	if registry.Version() != "1.0.0" {
		t.Errorf("version = %q, want untouched 1.0.0", registry.Version())
	}
}
