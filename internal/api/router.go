// internal/api/router.go
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// RouterConfig holds the optional protections of the HTTP stack.
type RouterConfig struct {
	CSRFKey      []byte // empty disables CSRF protection
	SecureCookie bool

	LimiterEnabled bool
	LimiterRPS     float64
	LimiterBurst   int
}

// NewHTTPRouter wires the routes and wraps them in the middleware chain.
// Background work started by the middleware ends with ctx.
func NewHTTPRouter(ctx context.Context, films *FilmHandler, auth *AuthHandler, sessions *Sessions, views *Renderer, logger *slog.Logger, cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		views.Error(w, r, http.StatusNotFound, "Page not found.")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		views.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed.")
	})
	router.Use(sessions.Load)

	router.HandleFunc("/healthz", films.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/", films.Home).Methods(http.MethodGet)
	router.HandleFunc("/login", auth.LoginForm).Methods(http.MethodGet)
	router.HandleFunc("/login", auth.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", auth.Logout).Methods(http.MethodPost)

	filmsRouter := router.PathPrefix("/films").Subrouter()
	filmsRouter.Use(sessions.RequireAuth)
	filmsRouter.HandleFunc("", films.Index).Methods(http.MethodGet)
	filmsRouter.HandleFunc("", films.Store).Methods(http.MethodPost)
	filmsRouter.HandleFunc("/create", films.Create).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/{id:[0-9]+}", films.Show).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/{id:[0-9]+}/edit", films.Edit).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/{id:[0-9]+}", films.Update).Methods(http.MethodPut, http.MethodPatch)
	filmsRouter.HandleFunc("/{id:[0-9]+}", films.Destroy).Methods(http.MethodDelete)
	filmsRouter.HandleFunc("/{id:[0-9]+}/delete", films.Destroy).Methods(http.MethodPost)

	// Outermost first: request id, access log, recover, limiter, csrf, method override.
	var handler http.Handler = MethodOverride(router)
	if len(cfg.CSRFKey) > 0 {
		handler = CSRF(cfg.CSRFKey, cfg.SecureCookie, logger, views)(handler)
	}
	if cfg.LimiterEnabled {
		handler = RateLimit(ctx, cfg.LimiterRPS, cfg.LimiterBurst, views)(handler)
	}
	handler = RecoverPanic(logger, views)(handler)
	handler = AccessLog(logger)(handler)
	return RequestID(handler)
}
