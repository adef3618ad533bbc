// internal/api/sessions.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/Victorissad/Mario-VIS/internal/domain"
	"github.com/Victorissad/Mario-VIS/internal/store"
	"github.com/Victorissad/Mario-VIS/pkg/auth"
)

// ContextKey is used for values stored in the request context.
type ContextKey string

const (
	// UserKey holds the *domain.UserSession of a signed-in request.
	UserKey ContextKey = "user"
	// RequestIDKey holds the request ID.
	RequestIDKey ContextKey = "requestID"
)

const (
	cookieName   = "filmweb_session"
	sessionIDKey = "sid"

	flashSuccess = "success"
	flashError   = "error"
)

// Flashes are one-shot messages carried to the next rendered page.
type Flashes struct {
	Success []string
	Error   []string
}

// Sessions ties the signed browser cookie to server-side session records.
// The cookie carries the session ID and flash messages, never the token.
type Sessions struct {
	cookies sessions.Store
	store   store.SessionStore
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewSessions creates the session manager. key signs the cookie.
func NewSessions(key []byte, secure bool, ttl time.Duration, s store.SessionStore, logger *slog.Logger) *Sessions {
	cookies := sessions.NewCookieStore(key)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{cookies: cookies, store: s, ttl: ttl, logger: logger, now: time.Now}
}

func (s *Sessions) cookie(r *http.Request) *sessions.Session {
	session, err := s.cookies.Get(r, cookieName)
	if err != nil {
		// Tampered or stale cookie (e.g. rotated key); Get still returns a fresh session.
		s.logger.DebugContext(r.Context(), "Discarding unreadable session cookie", slog.String("error", err.Error()))
	}
	return session
}

func (s *Sessions) save(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	if err := session.Save(r, w); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save session cookie", slog.String("error", err.Error()))
	}
}

// Start creates a server-side session for a successful login and points
// the cookie at it. Any previous session of the browser is dropped.
func (s *Sessions) Start(w http.ResponseWriter, r *http.Request, login *domain.LoginResult) (*domain.UserSession, error) {
	ctx := r.Context()
	cookie := s.cookie(r)
	if old, ok := cookie.Values[sessionIDKey].(string); ok {
		if err := s.store.Delete(ctx, old); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			s.logger.WarnContext(ctx, "Failed to drop previous session", slog.String("error", err.Error()))
		}
	}

	now := s.now().UTC()
	user := &domain.UserSession{
		ID:        uuid.NewString(),
		Token:     login.Token,
		Email:     login.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if claims, err := auth.Inspect(login.Token); err == nil {
		user.Subject = claims.Subject
		if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(user.ExpiresAt) {
			user.ExpiresAt = claims.ExpiresAt.UTC()
		}
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	cookie.Values[sessionIDKey] = user.ID
	s.save(w, r, cookie)
	s.logger.InfoContext(ctx, "Session started", slog.String("sessionID", user.ID), slog.String("email", user.Email))
	return user, nil
}

// End deletes the server-side session. The cookie is kept for flashes but
// loses its session ID.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cookie := s.cookie(r)
	if id, ok := cookie.Values[sessionIDKey].(string); ok {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			s.logger.ErrorContext(ctx, "Failed to delete session", slog.String("sessionID", id), slog.String("error", err.Error()))
		}
		delete(cookie.Values, sessionIDKey)
	}
	s.save(w, r, cookie)
}

// Flash queues a message for the next rendered page.
func (s *Sessions) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	cookie := s.cookie(r)
	cookie.AddFlash(message, kind)
	s.save(w, r, cookie)
}

// PopFlashes returns and clears the queued messages. It must run before the
// response body is written.
func (s *Sessions) PopFlashes(w http.ResponseWriter, r *http.Request) Flashes {
	cookie := s.cookie(r)
	success := cookie.Flashes(flashSuccess)
	failure := cookie.Flashes(flashError)
	if len(success) == 0 && len(failure) == 0 {
		return Flashes{}
	}
	s.save(w, r, cookie)
	return Flashes{Success: toStrings(success), Error: toStrings(failure)}
}

func toStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Load resolves the cookie into a *domain.UserSession in the request context.
// Expired sessions, including those whose token has expired, are removed.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.cookie(r).Values[sessionIDKey].(string)
		ctx := r.Context()
		if !ok || id == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.store.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, store.ErrSessionNotFound) {
				s.logger.ErrorContext(ctx, "Failed to load session", slog.String("sessionID", id), slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r)
			return
		}

		now := s.now()
		if user.Expired(now) || tokenExpired(user.Token, now) {
			s.logger.InfoContext(ctx, "Session expired", slog.String("sessionID", id))
			if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
				s.logger.WarnContext(ctx, "Failed to delete expired session", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, UserKey, user)))
	})
}

// RequireAuth redirects anonymous requests to the login page.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			s.logger.DebugContext(r.Context(), "Anonymous request redirected to login", slog.String("path", r.URL.Path))
			s.Flash(w, r, flashError, "Please sign in to continue.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunJanitor purges expired session records every interval until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.store.DeleteExpired(ctx, s.now()); err != nil {
				s.logger.ErrorContext(ctx, "Session janitor failed", slog.String("error", err.Error()))
			}
		}
	}
}

// CurrentUser returns the signed-in session of r, or nil.
func CurrentUser(r *http.Request) *domain.UserSession {
	user, _ := r.Context().Value(UserKey).(*domain.UserSession)
	return user
}

func tokenExpired(token string, now time.Time) bool {
	claims, err := auth.Inspect(token)
	if err != nil {
		return false
	}
	return claims.Expired(now)
}
