package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/vinaykumar231/WOFR-Backend/internal/access"
	"github.com/vinaykumar231/WOFR-Backend/internal/assignments"
	"github.com/vinaykumar231/WOFR-Backend/internal/auth"
	"github.com/vinaykumar231/WOFR-Backend/internal/catalog"
	"github.com/vinaykumar231/WOFR-Backend/internal/mappings"
	"github.com/vinaykumar231/WOFR-Backend/internal/observability"
	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/settings"
	"github.com/vinaykumar231/WOFR-Backend/internal/tenants"
	"github.com/vinaykumar231/WOFR-Backend/internal/users"
	"github.com/vinaykumar231/WOFR-Backend/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Tokens  *auth.TokenService
	Metrics *observability.Metrics

	AuthHandler        *auth.Handler
	RolesHandler       *catalog.Handler
	ModulesHandler     *catalog.Handler
	ActionsHandler     *catalog.Handler
	MappingsHandler    *mappings.Handler
	AssignmentsHandler *assignments.Handler
	AccessHandler      *access.Handler
	TenantsHandler     *tenants.Handler
	UsersHandler       *users.Handler
	SettingsHandler    *settings.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Tokens:  params.Tokens,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, httpx.TypeNotFound, "Not Found", "no route for "+r.URL.Path)
	})

	if params.AuthHandler != nil {
		authLimit := 20
		if params.Config != nil && params.Config.AuthRateLimit > 0 {
			authLimit = params.Config.AuthRateLimit
		}
		r.Route("/auth/v1", func(r chi.Router) {
			r.Use(httprate.LimitByIP(authLimit, time.Minute))
			params.AuthHandler.MountRoutes(r)
		})
	}

	r.Route("/v1", func(r chi.Router) {
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.ModulesHandler != nil {
			r.Route("/modules", params.ModulesHandler.MountRoutes)
		}
		if params.ActionsHandler != nil {
			r.Route("/actions", params.ActionsHandler.MountRoutes)
		}
		if params.MappingsHandler != nil {
			r.Route("/mappings", params.MappingsHandler.MountRoutes)
		}
		if params.AssignmentsHandler != nil {
			r.Route("/user-assignments", params.AssignmentsHandler.MountUserRoutes)
			r.Route("/tenant-user-assignments", params.AssignmentsHandler.MountTenantUserRoutes)
		}
		if params.AccessHandler != nil {
			r.Route("/access", params.AccessHandler.MountRoutes)
		}
		if params.TenantsHandler != nil {
			r.Route("/tenants", params.TenantsHandler.MountTenantRoutes)
			r.Route("/tenant-users", params.TenantsHandler.MountTenantUserRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.SettingsHandler != nil {
			r.Route("/config-values", params.SettingsHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
