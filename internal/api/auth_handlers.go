// internal/api/auth_handlers.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/Victorissad/Mario-VIS/internal/clients"
	"github.com/Victorissad/Mario-VIS/internal/domain"
)

// Authenticator exchanges credentials for a catalog API token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
}

// AuthHandler serves sign in and sign out.
type AuthHandler struct {
	auth      Authenticator
	sessions  *Sessions
	views     *Renderer
	validator *validator.Validate
	decoder   *schema.Decoder
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(a Authenticator, sessions *Sessions, views *Renderer, v *validator.Validate, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      a,
		sessions:  sessions,
		views:     views,
		validator: v,
		decoder:   newFormDecoder(),
		logger:    l,
	}
}

// LoginForm displays the sign in page. Signed-in users go to the catalog.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r) != nil {
		http.Redirect(w, r, "/films", http.StatusFound)
		return
	}
	data := newView(r, "Sign in", h.sessions.PopFlashes(w, r))
	h.views.Render(w, r, http.StatusOK, "login.html", data)
}

// Login checks the credentials against the catalog API and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.LoginRequest
	if err := decodeForm(r, h.decoder, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode login form", slog.String("error", err.Error()))
		h.views.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	data := newView(r, "Sign in", Flashes{})
	data.Email = req.Email

	fieldErrs, err := validateStruct(ctx, h.validator, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "Login validation failed unexpectedly", slog.String("error", err.Error()))
		h.views.Error(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
		return
	}
	if fieldErrs != nil {
		data.Errors = fieldErrs
		h.views.Render(w, r, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		status, message := loginFailure(err)
		h.logger.WarnContext(ctx, "Login failed", slog.String("email", req.Email), slog.String("error", err.Error()))
		data.Flash.Error = []string{message}
		h.views.Render(w, r, status, "login.html", data)
		return
	}

	if _, err := h.sessions.Start(w, r, result); err != nil {
		h.logger.ErrorContext(ctx, "Failed to start session", slog.String("error", err.Error()))
		data.Flash.Error = []string{"Could not sign you in, please try again."}
		h.views.Render(w, r, http.StatusInternalServerError, "login.html", data)
		return
	}

	http.Redirect(w, r, "/films", http.StatusSeeOther)
}

// Logout ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(w, r)
	h.sessions.Flash(w, r, flashSuccess, "You have been signed out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func loginFailure(err error) (int, string) {
	var remoteErr *clients.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.StatusCode < http.StatusInternalServerError {
		return http.StatusUnauthorized, "These credentials do not match our records."
	}
	return http.StatusBadGateway, "The authentication service is unavailable right now."
}
