package transport

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/config"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Authenticator issues and verifies the HMAC-signed tokens used by the
// runtime's own login endpoint. User accounts come from the app config's
// auth.users block.
type Authenticator struct {
	cfg      config.IdentityConfig
	registry *appconfig.Registry
	metrics  *observability.Metrics
	secret   []byte
}

// NewAuthenticator creates an Authenticator. The signing secret is read from
// the environment variable named by cfg.SecretEnv.
func NewAuthenticator(cfg config.IdentityConfig, registry *appconfig.Registry, metrics *observability.Metrics) (*Authenticator, error) {
	secret := os.Getenv(cfg.SecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("auth: environment variable %s is not set", cfg.SecretEnv)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("auth: secret in %s must be at least 32 bytes", cfg.SecretEnv)
	}
	return &Authenticator{
		cfg:      cfg,
		registry: registry,
		metrics:  metrics,
		secret:   []byte(secret),
	}, nil
}

// loginRequest is the body of POST /ui/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries the issued token and the subject it identifies.
type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Subject   struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"subject"`
}

// HandleLogin authenticates a configured user by email and password and
// returns a signed token.
func (a *Authenticator) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, model.NewBadRequestError("request body must be valid JSON"))
			return
		}
		if req.Email == "" || req.Password == "" {
			WriteError(w, r, model.NewBadRequestError("email and password are required"))
			return
		}

		user, ok := a.registry.GetUser(req.Email)
		if !ok || subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
			a.metrics.RecordAuthLogin("failure")
			WriteError(w, r, model.NewUnauthorizedError("Invalid email or password"))
			return
		}

		token, expiresAt, err := a.issue(user)
		if err != nil {
			a.metrics.RecordAuthLogin("failure")
			WriteError(w, r, model.NewInternalError())
			return
		}

		a.metrics.RecordAuthLogin("success")
		resp := loginResponse{Token: token, ExpiresAt: expiresAt}
		resp.Subject.ID = user.ID
		resp.Subject.Name = user.Name
		resp.Subject.Email = user.Email
		resp.Subject.Role = user.Role
		WriteJSON(w, http.StatusOK, resp)
	}
}

// issue creates a signed token for the given user.
func (a *Authenticator) issue(user model.UserDef) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"iss":   a.cfg.Issuer,
		"aud":   a.cfg.Audience,
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Middleware verifies the Authorization header and stores verified claims in
// the request context. When the app config disables authentication, requests
// run as an anonymous admin instead.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.registry.Config().Settings.EnableAuth {
			ctx := WithClaims(r.Context(), map[string]any{
				"sub":  "anonymous",
				"role": "admin",
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			WriteError(w, r, model.NewUnauthorizedError("Missing authorization header"))
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			WriteError(w, r, model.NewUnauthorizedError("Invalid authorization header format"))
			return
		}
		tokenStr := auth[7:]

		token, err := jwt.Parse(tokenStr,
			func(token *jwt.Token) (any, error) {
				return a.secret, nil
			},
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithIssuer(a.cfg.Issuer),
			jwt.WithAudience(a.cfg.Audience),
			jwt.WithLeeway(a.cfg.Leeway),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			WriteError(w, r, model.NewUnauthorizedError(classifyJWTError(err)))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			WriteError(w, r, model.NewUnauthorizedError("Invalid token"))
			return
		}

		ctx := WithClaims(r.Context(), map[string]any(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func classifyJWTError(err error) string {
	s := err.Error()
	switch {
	case strings.Contains(s, "expired"):
		return "Token expired"
	case strings.Contains(s, "issuer"):
		return "Invalid token issuer"
	case strings.Contains(s, "audience"):
		return "Invalid token audience"
	case strings.Contains(s, "signing method"):
		return "Disallowed signing algorithm"
	case strings.Contains(s, "signature"):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}
