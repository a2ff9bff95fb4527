package main

import (
	"net/http"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/auth"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/gate"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/handlers"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/logger"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/metrics"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/middleware"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/policy"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	handler  http.Handler
	db       *gorm.DB
	authGate *policy.AuthGate
	metrics  *metrics.HTTPMetrics
}

// NewApp wires services, handlers and middleware. reg receives the HTTP
// metrics; nil uses a private registry.
func NewApp(db *gorm.DB, reg *prometheus.Registry) *App {
	app := &App{
		mux:      http.NewServeMux(),
		db:       db,
		authGate: policy.NewAuthGate(db, policy.DefaultCacheTTL),
		metrics:  metrics.NewHTTPMetrics("interventi", reg),
	}
	view.SetCanProfileResolver(func(r *http.Request, resource, action string) bool {
		return app.authGate.CanProfile(r.Context(), gate.Action(action), resource)
	})
	view.SetIsAdminResolver(func(r *http.Request) bool {
		return app.authGate.IsAdmin(r.Context())
	})
	app.setupRoutes()

	// the metrics middleware wraps the mux directly so r.Pattern is set
	var h http.Handler = app.metrics.Middleware(app.mux)
	h = middleware.Prefs(h)
	h = auth.Middleware(h)
	h = middleware.Recover(h)
	h = middleware.Logging(logger.WithComponent("http"))(h)
	app.handler = middleware.RequestID(h)
	return app
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// crudHandler is implemented by the four entity handlers.
type crudHandler interface {
	List(http.ResponseWriter, *http.Request)
	New(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

func (a *App) setupRoutes() {
	suppliers := services.NewSupplierService(a.db)
	operators := services.NewOperatorService(a.db)
	clients := services.NewClientService(a.db)
	interventions := services.NewInterventionService(a.db)
	ah := handlers.NewAuthHandler(a.db)
	ds := handlers.NewDatasetHandler(a.db)
	ih := handlers.NewInterventionHandler(interventions, operators, clients)
	admin := handlers.NewAdminHandler(a.db, a.authGate)

	// Public
	a.mux.HandleFunc("GET /health", handlers.Health)
	a.mux.HandleFunc("GET /healthz", handlers.Ready(a.db))
	a.mux.Handle("GET /metrics", a.metrics.Handler())
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/interventions", http.StatusSeeOther)
	})

	// Resources
	a.mux.Handle("GET /interventions/dates", a.protect("intervention", gate.ActionList, ih.Dates))
	a.resource("intervention", ih, ds)
	a.resource("client", handlers.NewClientHandler(clients), ds)
	a.resource("operator", handlers.NewOperatorHandler(operators, suppliers), ds)
	a.resource("supplier", handlers.NewSupplierHandler(suppliers), ds)

	// Admin
	a.mux.Handle("GET /admin/profiles", a.admin(admin.Profiles))
	a.mux.Handle("POST /admin/profiles", a.admin(admin.CreateProfile))
	a.mux.Handle("POST /admin/profiles/{id}/delete", a.admin(admin.DeleteProfile))
	a.mux.Handle("DELETE /admin/profiles/{id}", a.admin(admin.DeleteProfile))
	a.mux.Handle("GET /admin/profiles/{id}/permissions", a.admin(admin.EditPermissions))
	a.mux.Handle("POST /admin/profiles/{id}/permissions", a.admin(admin.SavePermissions))
	a.mux.Handle("GET /admin/users", a.admin(admin.Users))
	a.mux.Handle("POST /admin/users/{id}/profile", a.admin(admin.AssignProfile))
}

// resource registers the CRUD and dataset routes of one entity under
// /{name}s, each guarded by name:action.
func (a *App) resource(name string, h crudHandler, ds *handlers.DatasetHandler) {
	base := "/" + name + "s"
	routes := []struct {
		pattern string
		action  gate.Action
		handler http.HandlerFunc
	}{
		{"GET " + base, gate.ActionList, h.List},
		{"GET " + base + "/new", gate.ActionCreate, h.New},
		{"POST " + base, gate.ActionCreate, h.Create},
		{"GET " + base + "/export", gate.ActionExport, ds.Export(name + "s")},
		{"GET " + base + "/import", gate.ActionImport, ds.ImportForm(name + "s")},
		{"POST " + base + "/import", gate.ActionImport, ds.Import(name + "s")},
		{"GET " + base + "/{id}", gate.ActionView, h.Get},
		{"POST " + base + "/{id}", gate.ActionUpdate, h.Update},
		{"PUT " + base + "/{id}", gate.ActionUpdate, h.Update},
		{"POST " + base + "/{id}/delete", gate.ActionDelete, h.Delete},
		{"DELETE " + base + "/{id}", gate.ActionDelete, h.Delete},
	}
	for _, rt := range routes {
		a.mux.Handle(rt.pattern, a.protect(name, rt.action, rt.handler))
	}
}

// protect requires a session and the resource:action permission.
func (a *App) protect(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.authGate.RequirePermission(resource, action)(h))
}

func (a *App) admin(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.authGate.RequireAdmin()(h))
}
