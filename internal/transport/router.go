package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/config"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/observability"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/render"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/search"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/wizard"
)

// Dependencies wires the router to the rest of the runtime.
type Dependencies struct {
	Config        *config.Config
	Logger        *zap.Logger
	Registry      *appconfig.Registry
	Gate          *permission.Gate
	Records       store.Store
	Pages         *render.PageProvider
	Data          *render.DataProvider
	Wizards       *wizard.Engine
	Search        *search.Provider
	Metrics       *observability.Metrics
	Authenticator *Authenticator
	Idempotency   IdempotencyStore
	Ready         observability.ReadinessChecks
}

// NewRouter builds the complete HTTP router. Health, readiness, metrics, and
// login are public; everything else sits behind authentication.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery(deps.Logger))
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(RequestID)
	r.Use(SecurityHeaders)
	r.Use(observability.TracingMiddleware)

	r.Get("/ui/health", observability.HandleHealth())
	r.Get("/ui/ready", observability.HandleReady(deps.Ready))
	if deps.Config.Observability.Metrics.Enabled {
		r.Method(http.MethodGet, deps.Config.Observability.Metrics.Path, observability.Handler())
	}
	r.Post("/ui/auth/login", deps.Authenticator.HandleLogin())

	r.Group(func(r chi.Router) {
		r.Use(deps.Authenticator.Middleware)
		r.Use(BuildRequestContext)
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))
		r.Use(RequestLogging(deps.Logger))
		r.Use(deps.Metrics.MetricsMiddleware)

		r.Get("/ui/app", handleGetApp(deps.Pages))
		r.Get("/ui/navigation", handleGetNavigation(deps.Pages))
		r.Get("/ui/pages/{pageID}", handleGetPage(deps.Pages))
		r.Get("/ui/pages/{pageID}/components/{componentID}", handleGetComponent(deps.Pages))
		r.Get("/ui/pages/{pageID}/components/{componentID}/data", handleComponentData(deps.Data))
		r.Post("/ui/pages/{pageID}/components/{componentID}/submit",
			handleComponentSubmit(deps.Data, deps.Idempotency, deps.Config.Idempotency.DefaultTTL))

		res := &resourceHandlers{
			registry: deps.Registry,
			gate:     deps.Gate,
			records:  deps.Records,
			data:     deps.Data,
		}
		r.Route("/ui/resources/{resource}", func(r chi.Router) {
			r.Get("/records", res.list)
			r.Post("/records", res.create)
			r.Get("/records/{id}", res.getOne)
			r.Patch("/records/{id}", res.update)
			r.Delete("/records/{id}", res.delete)
			r.Get("/aggregate", res.aggregate)
			r.Get("/options", res.options)
		})

		r.Get("/ui/search", handleSearch(deps.Search, deps.Metrics))

		wiz := &wizardHandlers{engine: deps.Wizards, metrics: deps.Metrics}
		r.Route("/ui/wizards", func(r chi.Router) {
			r.Post("/{pageID}/{componentID}/start", wiz.start)
			r.Route("/instances/{instanceID}", func(r chi.Router) {
				r.Get("/", wiz.get)
				r.Post("/advance", wiz.advance)
				r.Post("/back", wiz.back)
				r.Post("/submit", wiz.submit)
				r.Post("/cancel", wiz.cancel)
			})
		})
	})

	return r
}
