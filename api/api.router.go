// FilePath: api/api.router.go
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/api/middleware"
	"github.com/mirnanodes/broilink-backend/api/resources"
	"github.com/mirnanodes/broilink-backend/internal/config"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/monitoring"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.JWTMiddleware
	resources *resources.Resources
	handler   http.Handler
}

func NewRouter(svc *farmservice.FarmService, authConfig config.AuthConfig) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewJWTMiddleware(authConfig),
		resources: resources.NewResources(svc),
	}
	r.resources.Users.SetTokenIssuer(r.auth)

	r.setupRoutes()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	r.handler = cors(r.router)
	return r
}

// Users exposes the user handlers so the server can wire the Telegram
// bot in once it is started.
func (r *Router) Users() *resources.UserHandlers {
	return r.resources.Users
}

func (r *Router) setupRoutes() {
	r.router.Use(metricsMiddleware)

	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", r.resources.Users.Login).Methods(http.MethodPost)
	api.HandleFunc("/requests", r.resources.Users.SubmitRequest).Methods(http.MethodPost)
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	// Farms
	farms := protected.PathPrefix("/farms").Subrouter()
	farms.HandleFunc("", r.resources.Farms.ListFarms).Methods(http.MethodGet)
	farms.Handle("", r.admin(r.resources.Farms.CreateFarm)).Methods(http.MethodPost)
	farms.HandleFunc("/{id}", r.resources.Farms.GetFarm).Methods(http.MethodGet)
	farms.Handle("/{id}", r.admin(r.resources.Farms.UpdateFarm)).Methods(http.MethodPut)
	farms.Handle("/{id}", r.admin(r.resources.Farms.DeleteFarm)).Methods(http.MethodDelete)
	farms.Handle("/{id}/peternak", r.admin(r.resources.Farms.AssignPeternak)).Methods(http.MethodPut)
	farms.Handle("/{id}/config", r.admin(r.resources.Farms.GetFarmConfig)).Methods(http.MethodGet)
	farms.Handle("/{id}/config", r.admin(r.resources.Farms.UpdateFarmConfig)).Methods(http.MethodPut)
	farms.Handle("/{id}/config/reset", r.admin(r.resources.Farms.ResetFarmConfig)).Methods(http.MethodPost)
	farms.HandleFunc("/{id}/status", r.resources.Monitoring.GetFarmStatus).Methods(http.MethodGet)
	farms.HandleFunc("/{id}/reports", r.resources.Reports.SubmitReport).Methods(http.MethodPost)
	farms.HandleFunc("/{id}/reports", r.resources.Reports.GetReport).Methods(http.MethodGet)
	farms.Handle("/{id}/readings/import", r.admin(r.resources.Monitoring.ImportReadingsCSV)).Methods(http.MethodPost)
	farms.HandleFunc("/{id}/export", r.resources.Monitoring.ExportFarmDataCSV).Methods(http.MethodGet)

	// Aggregates
	protected.HandleFunc("/monitoring/aggregate", r.resources.Monitoring.MonitoringAggregate).Methods(http.MethodGet)
	protected.HandleFunc("/analysis/aggregate", r.resources.Monitoring.AnalysisAggregate).Methods(http.MethodGet)
	protected.HandleFunc("/monitoring/readings", r.resources.Monitoring.SubmitReading).Methods(http.MethodPost)

	// Users
	users := protected.PathPrefix("/users").Subrouter()
	users.Handle("", r.admin(r.resources.Users.ListUsers)).Methods(http.MethodGet)
	users.Handle("", r.admin(r.resources.Users.CreateUser)).Methods(http.MethodPost)
	users.HandleFunc("/me/password", r.resources.Users.ChangePassword).Methods(http.MethodPut)
	users.HandleFunc("/me/photo", r.resources.Users.UploadProfilePhoto).Methods(http.MethodPost)
	users.HandleFunc("/me/photo", r.resources.Users.DeleteProfilePhoto).Methods(http.MethodDelete)
	users.HandleFunc("/me/telegram-link", r.resources.Users.CreateTelegramLink).Methods(http.MethodPost)
	users.HandleFunc("/{id}", r.resources.Users.GetUser).Methods(http.MethodGet)
	users.Handle("/{id}", r.admin(r.resources.Users.DeleteUser)).Methods(http.MethodDelete)
	users.HandleFunc("/{id}/photo", r.resources.Users.GetProfilePhoto).Methods(http.MethodGet)

	// Admin request inbox
	protected.Handle("/requests", r.admin(r.resources.Users.ListRequests)).Methods(http.MethodGet)
	protected.Handle("/requests/{id}/resolve", r.admin(r.resources.Users.ResolveRequest)).Methods(http.MethodPost)

	// Admin Telegram broadcast
	protected.Handle("/broadcast", r.admin(r.resources.Users.Broadcast)).Methods(http.MethodPost)

	// Dashboards
	protected.Handle("/dashboard/owner", r.roles(r.resources.Users.OwnerDashboard, "owner")).Methods(http.MethodGet)
	protected.Handle("/dashboard/peternak", r.roles(r.resources.Users.PeternakDashboard, "peternak")).Methods(http.MethodGet)
}

func (r *Router) admin(h http.HandlerFunc) http.Handler {
	return r.auth.RequireRoles("admin")(h)
}

func (r *Router) roles(h http.HandlerFunc, roles ...string) http.Handler {
	return r.auth.RequireRoles(roles...)(h)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
}

// metricsMiddleware records request counts and latency per route.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, req)

		path := req.URL.Path
		if route := mux.CurrentRoute(req); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		monitoring.HTTPRequestTotal.WithLabelValues(req.Method, path, strconv.Itoa(recorder.status)).Inc()
		monitoring.HTTPRequestDurationSeconds.WithLabelValues(req.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
