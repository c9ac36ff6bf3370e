package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fleetops/fleet-console/internal/auth"
	"github.com/fleetops/fleet-console/internal/lov"
	"github.com/fleetops/fleet-console/internal/observability"
	"github.com/fleetops/fleet-console/internal/rbac"
	"github.com/fleetops/fleet-console/internal/shared"
	"github.com/fleetops/fleet-console/internal/view"
	"github.com/fleetops/fleet-console/jobs"
	"github.com/fleetops/fleet-console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	LOVHandler     *lov.Handler
	JobHandler     *jobs.Handler
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	var identity func(http.Handler) http.Handler
	if params.AuthHandler != nil {
		identity = params.AuthHandler.Identify
	}
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		Identity:       identity,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Landing page for unauthenticated users
	r.Get(auth.WelcomePath, func(w http.ResponseWriter, r *http.Request) {
		csrfToken, _ := params.CSRFManager.EnsureToken(shared.SessionFromContext(r.Context()))
		data := view.NewTemplateData(r, "Welcome", csrfToken, nil)
		if err := params.Templates.Render(w, "pages/welcome.html", data); err != nil {
			params.Logger.Error("render welcome", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Use(params.AuthHandler.RequireUser)
		}

		r.With(params.RBACMiddleware.RequireAny(shared.PermDashboardView)).Get("/", func(w http.ResponseWriter, r *http.Request) {
			csrfToken, _ := params.CSRFManager.EnsureToken(shared.SessionFromContext(r.Context()))
			data := view.NewTemplateData(r, "Dashboard", csrfToken, map[string]any{
				"AppEnv": params.Config.AppEnv,
			})
			if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
				params.Logger.Error("render home", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		})

		if params.LOVHandler != nil {
			r.Route(lov.BasePath, params.LOVHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.With(params.RBACMiddleware.RequireAny(shared.PermJobsView)).Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
