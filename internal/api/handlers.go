// internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"

	"github.com/Victorissad/Mario-VIS/internal/clients"
	"github.com/Victorissad/Mario-VIS/internal/domain"
)

// FilmService is the remote catalog as seen by the film pages.
type FilmService interface {
	ListFilms(ctx context.Context, token string) ([]domain.Film, error)
	GetFilm(ctx context.Context, token string, id int) (*domain.Film, error)
	CreateFilm(ctx context.Context, token string, in domain.FilmInput) (*domain.Film, error)
	UpdateFilm(ctx context.Context, token string, id int, in domain.FilmInput) (*domain.Film, error)
	DeleteFilm(ctx context.Context, token string, id int) error
}

// FilmHandler serves the film pages.
type FilmHandler struct {
	films     FilmService
	sessions  *Sessions
	views     *Renderer
	validator *validator.Validate
	decoder   *schema.Decoder
	logger    *slog.Logger
}

// NewFilmHandler creates a FilmHandler.
func NewFilmHandler(films FilmService, sessions *Sessions, views *Renderer, v *validator.Validate, l *slog.Logger) *FilmHandler {
	return &FilmHandler{
		films:     films,
		sessions:  sessions,
		views:     views,
		validator: v,
		decoder:   newFormDecoder(),
		logger:    l,
	}
}

func token(r *http.Request) string {
	if user := CurrentUser(r); user != nil {
		return user.Token
	}
	return ""
}

func filmID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func filmPath(id int) string {
	return "/films/" + strconv.Itoa(id)
}

// Index lists the catalog. A failing catalog shows an empty list.
func (h *FilmHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := newView(r, "Films", h.sessions.PopFlashes(w, r))

	films, err := h.films.ListFilms(ctx, token(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list films", slog.String("error", err.Error()))
		films = []domain.Film{}
		data.Flash.Error = append(data.Flash.Error, "The film catalog is unavailable right now.")
	}
	data.Films = films
	h.views.Render(w, r, http.StatusOK, "films/index.html", data)
}

// Show displays one film, or the 404 page when it cannot be fetched.
func (h *FilmHandler) Show(w http.ResponseWriter, r *http.Request) {
	film, ok := h.lookup(w, r)
	if !ok {
		return
	}
	data := newView(r, film.Title, h.sessions.PopFlashes(w, r))
	data.Film = film
	h.views.Render(w, r, http.StatusOK, "films/show.html", data)
}

// Create displays the empty creation form.
func (h *FilmHandler) Create(w http.ResponseWriter, r *http.Request) {
	data := newView(r, "Add a film", h.sessions.PopFlashes(w, r))
	data.Action = "/films"
	h.views.Render(w, r, http.StatusOK, "films/form.html", data)
}

// Store validates the creation form and creates the film.
func (h *FilmHandler) Store(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP Store film request received", slog.String("path", r.URL.Path))

	var form domain.FilmForm
	if err := decodeForm(r, h.decoder, &form); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode film form", slog.String("error", err.Error()))
		h.views.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	data := newView(r, "Add a film", Flashes{})
	data.Action = "/films"
	data.Form = form

	in, fieldErrs, err := validateFilm(ctx, h.validator, form)
	if err != nil {
		h.logger.ErrorContext(ctx, "Film validation failed unexpectedly", slog.String("error", err.Error()))
		h.views.Error(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
		return
	}
	if fieldErrs != nil {
		h.logger.InfoContext(ctx, "Film form rejected", slog.Int("fields", len(fieldErrs)))
		data.Errors = fieldErrs
		h.views.Render(w, r, http.StatusUnprocessableEntity, "films/form.html", data)
		return
	}

	if _, err := h.films.CreateFilm(ctx, token(r), in); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create film", slog.String("error", err.Error()))
		data.Flash.Error = []string{"An error occurred while creating the film."}
		h.views.Render(w, r, http.StatusOK, "films/form.html", data)
		return
	}

	h.sessions.Flash(w, r, flashSuccess, "The film was created.")
	http.Redirect(w, r, "/films", http.StatusSeeOther)
}

// Edit displays the edit form prefilled with the current film.
func (h *FilmHandler) Edit(w http.ResponseWriter, r *http.Request) {
	film, ok := h.lookup(w, r)
	if !ok {
		return
	}
	data := newView(r, "Edit "+film.Title, h.sessions.PopFlashes(w, r))
	data.Film = film
	data.Form = film.Form()
	data.Action = filmPath(film.Key())
	data.Method = http.MethodPut
	h.views.Render(w, r, http.StatusOK, "films/form.html", data)
}

// Update validates the edit form and updates the film.
func (h *FilmHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := filmID(r)
	if !ok {
		h.views.Error(w, r, http.StatusNotFound, "Film not found.")
		return
	}
	h.logger.InfoContext(ctx, "HTTP Update film request received", slog.Int("film_id", id))

	var form domain.FilmForm
	if err := decodeForm(r, h.decoder, &form); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode film form", slog.String("error", err.Error()))
		h.views.Error(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	data := newView(r, "Edit film", Flashes{})
	data.Film = &domain.Film{FilmID: id, Title: form.Title}
	data.Form = form
	data.Action = filmPath(id)
	data.Method = http.MethodPut

	in, fieldErrs, err := validateFilm(ctx, h.validator, form)
	if err != nil {
		h.logger.ErrorContext(ctx, "Film validation failed unexpectedly", slog.String("error", err.Error()))
		h.views.Error(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
		return
	}
	if fieldErrs != nil {
		data.Errors = fieldErrs
		h.views.Render(w, r, http.StatusUnprocessableEntity, "films/form.html", data)
		return
	}

	if _, err := h.films.UpdateFilm(ctx, token(r), id, in); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update film", slog.Int("film_id", id), slog.String("error", err.Error()))
		data.Flash.Error = []string{"An error occurred while updating the film."}
		h.views.Render(w, r, http.StatusOK, "films/form.html", data)
		return
	}

	h.sessions.Flash(w, r, flashSuccess, "The film was updated.")
	http.Redirect(w, r, filmPath(id), http.StatusSeeOther)
}

// Destroy deletes the film. On failure the browser is sent back to where it came from.
func (h *FilmHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := filmID(r)
	if !ok {
		h.views.Error(w, r, http.StatusNotFound, "Film not found.")
		return
	}

	if err := h.films.DeleteFilm(ctx, token(r), id); err != nil {
		h.logger.ErrorContext(ctx, "Failed to delete film", slog.Int("film_id", id), slog.String("error", err.Error()))
		h.sessions.Flash(w, r, flashError, "An error occurred while deleting the film.")
		http.Redirect(w, r, backURL(r, filmPath(id)), http.StatusSeeOther)
		return
	}

	h.logger.InfoContext(ctx, "Film deleted", slog.Int("film_id", id))
	h.sessions.Flash(w, r, flashSuccess, "The film was deleted.")
	http.Redirect(w, r, "/films", http.StatusSeeOther)
}

// Home sends the site root to the catalog.
func (h *FilmHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/films", http.StatusFound)
}

// Healthz is a plain liveness probe.
func (h *FilmHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, h.logger, http.StatusOK, map[string]string{"status": "available"})
}

// lookup fetches the film named by the route, rendering the 404 page when
// the catalog cannot provide it.
func (h *FilmHandler) lookup(w http.ResponseWriter, r *http.Request) (*domain.Film, bool) {
	ctx := r.Context()
	id, ok := filmID(r)
	if !ok {
		h.views.Error(w, r, http.StatusNotFound, "Film not found.")
		return nil, false
	}

	film, err := h.films.GetFilm(ctx, token(r), id)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			h.logger.WarnContext(ctx, "Film not found", slog.Int("film_id", id))
		} else {
			h.logger.ErrorContext(ctx, "Failed to get film", slog.Int("film_id", id), slog.String("error", err.Error()))
		}
		h.views.Error(w, r, http.StatusNotFound, "Film not found.")
		return nil, false
	}
	if film.Key() == 0 {
		film.FilmID = id
	}
	return film, true
}

// backURL returns the same-site Referer path, or fallback.
func backURL(r *http.Request, fallback string) string {
	ref := r.Referer()
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return fallback
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	back := u.Path
	if u.RawQuery != "" {
		back += "?" + u.RawQuery
	}
	return back
}
