// Package router assembles the HTTP surface on a gorilla/mux router.
package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gudson/kpi/infrastructure/http/handler"
	"github.com/gudson/kpi/infrastructure/http/middleware"
)

type tableRoutes interface {
	Register(r *mux.Router, prefix string)
}

type Handlers struct {
	Auth      *handler.AuthHandler
	Suppliers tableRoutes
	Buyers    tableRoutes
	Orders    tableRoutes
	Audit     *handler.AuditHandler
	Reports   *handler.ReportHandler
	Exports   *handler.ExportHandler
	Users     *handler.UserManagementHandler
}

type Options struct {
	Auth *middleware.AuthMiddleware
	// Optional collaborators; nil disables them.
	RateLimit      *middleware.RateLimitMiddleware
	Metrics        middleware.RequestObserver
	MetricsHandler http.Handler

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

func New(h Handlers, opts Options) http.Handler {
	r := mux.NewRouter()
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}

	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/v1").Subrouter()
	var login http.Handler = http.HandlerFunc(h.Auth.Login)
	if opts.RateLimit != nil {
		login = opts.RateLimit.RateLimit(middleware.LoginRateLimit, login)
	}
	api.Handle("/auth/login", login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(opts.Auth.RequireAuth)
	protected.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet)
	h.Suppliers.Register(protected, "/suppliers")
	h.Buyers.Register(protected, "/buyers")
	h.Orders.Register(protected, "/orders")
	h.Audit.Register(protected)
	h.Reports.Register(protected)
	h.Exports.Register(protected)
	h.Users.RegisterRoutes(protected)

	var out http.Handler = r
	if opts.CORSEnabled && len(opts.CORSAllowedOrigins) > 0 {
		out = middleware.CORSMiddleware(out, opts.CORSAllowedOrigins, opts.CORSAllowCredentials)
	}
	return middleware.CorrelationIDMiddleware(out)
}
