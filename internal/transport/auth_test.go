package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/config"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func authConfig(enableAuth bool) model.AppConfig {
	return model.AppConfig{
		Auth: model.AuthConfig{
			Roles: []string{"admin"},
			Users: []model.UserDef{
				{ID: "u1", Name: "Admin", Email: "admin@example.com", Password: "hunter22", Role: "admin"},
			},
		},
		Settings: model.Settings{EnableAuth: enableAuth},
	}
}

func newAuthenticator(t *testing.T, enableAuth bool) (*Authenticator, *appconfig.Registry) {
	t.Helper()
	t.Setenv("ONESHOT_AUTH_SECRET", testSecret)

	registry := appconfig.NewRegistry(authConfig(enableAuth), "1.0.0", "f00d")
	metrics := observability.InitMetrics(prometheus.NewRegistry())
	identity := config.Defaults().Identity

	a, err := NewAuthenticator(identity, registry, metrics)
	if err != nil {
		t.Fatalf("NewAuthenticator error: %v", err)
	}
	return a, registry
}

func TestNewAuthenticator_rejectsShortSecret(t *testing.T) {
	t.Setenv("ONESHOT_AUTH_SECRET", "tooshort")
	registry := appconfig.NewRegistry(authConfig(true), "1.0.0", "f00d")
	metrics := observability.InitMetrics(prometheus.NewRegistry())

	if _, err := NewAuthenticator(config.Defaults().Identity, registry, metrics); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestAuthenticator_HandleLogin_success(t *testing.T) {
	a, _ := newAuthenticator(t, true)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/ui/auth/login",
		strings.NewReader(`{"email": "admin@example.com", "password": "hunter22"}`))
	a.HandleLogin()(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		Subject   struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"subject"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body unmarshal: %v", err)
	}
	if resp.Token == "" || resp.Subject.ID != "u1" || resp.Subject.Role != "admin" {
		t.Errorf("response = %+v", resp)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt = %v, want future", resp.ExpiresAt)
	}
}

func TestAuthenticator_HandleLogin_wrongPassword(t *testing.T) {
	a, _ := newAuthenticator(t, true)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/ui/auth/login",
		strings.NewReader(`{"email": "admin@example.com", "password": "wrong"}`))
	a.HandleLogin()(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthenticator_HandleLogin_unknownUser(t *testing.T) {
	a, _ := newAuthenticator(t, true)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/ui/auth/login",
		strings.NewReader(`{"email": "ghost@example.com", "password": "whatever"}`))
	a.HandleLogin()(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthenticator_Middleware_roundTrip(t *testing.T) {
	a, _ := newAuthenticator(t, true)

	// Issue a token through login, then present it.
	w := httptest.NewRecorder()
	a.HandleLogin()(w, httptest.NewRequest("POST", "/ui/auth/login",
		strings.NewReader(`{"email": "admin@example.com", "password": "hunter22"}`)))
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("login unmarshal: %v", err)
	}

	var rctx *model.RequestContext
	handler := a.Middleware(BuildRequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx = model.MustRequestContext(r.Context())
	})))

	w = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/ui/app", nil)
	r.Header.Set("Authorization", "Bearer "+login.Token)
	handler.ServeHTTP(w, r)

	if rctx == nil {
		t.Fatalf("handler not reached: status = %d, body = %s", w.Code, w.Body.String())
	}
	if rctx.SubjectID != "u1" || rctx.Role != "admin" || rctx.Email != "admin@example.com" {
		t.Errorf("request context = %+v", rctx)
	}
}

func TestAuthenticator_Middleware_missingHeader(t *testing.T) {
	a, _ := newAuthenticator(t, true)

	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/ui/app", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthenticator_Middleware_garbageToken(t *testing.T) {
	a, _ := newAuthenticator(t, true)

	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a garbage token")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/ui/app", nil)
	r.Header.Set("Authorization", "Bearer not.a.token")
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthenticator_Middleware_disabledAuthRunsAsAnonymousAdmin(t *testing.T) {
	a, _ := newAuthenticator(t, false)

	var rctx *model.RequestContext
	handler := a.Middleware(BuildRequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx = model.MustRequestContext(r.Context())
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/ui/app", nil))

	if rctx == nil {
		t.Fatalf("handler not reached: status = %d", w.Code)
	}
	if rctx.SubjectID != "anonymous" || rctx.Role != "admin" {
		t.Errorf("request context = %+v", rctx)
	}
}
