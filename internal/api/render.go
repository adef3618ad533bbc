// internal/api/render.go
package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

//go:embed templates
var templateFS embed.FS

// pages are rendered inside templates/layout.html.
var pages = []string{
	"films/index.html",
	"films/show.html",
	"films/form.html",
	"login.html",
	"error.html",
}

// viewData is what every page template receives.
type viewData struct {
	Title     string
	User      *domain.UserSession
	CSRFField template.HTML
	Flash     Flashes
	Errors    map[string]string

	Films  []domain.Film
	Film   *domain.Film
	Form   domain.FilmForm
	Action string
	Method string

	Email string

	Status  int
	Message string

	Languages []domain.Language
	Ratings   []string
	MinYear   int
	MaxYear   int
}

// Renderer executes the page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

var templateFuncs = template.FuncMap{
	"itoa": strconv.Itoa,
	"money": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"filmPath": func(f domain.Film) string {
		return "/films/" + strconv.Itoa(f.Key())
	},
}

// NewRenderer parses every page against the layout.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	root, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger}
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(root, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// newView fills the fields shared by every page.
func newView(r *http.Request, title string, flashes Flashes) *viewData {
	now := time.Now()
	return &viewData{
		Title:     title,
		User:      CurrentUser(r),
		CSRFField: csrf.TemplateField(r),
		Flash:     flashes,
		Languages: domain.Languages,
		Ratings:   domain.Ratings,
		MinYear:   domain.MinReleaseYear,
		MaxYear:   MaxReleaseYear(now),
	}
}

// Render writes page with status. The page is executed into a buffer first so
// that a template failure still yields a clean 500.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *viewData) {
	t, ok := rd.pages[page]
	if !ok {
		rd.logger.ErrorContext(r.Context(), "Unknown template", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.ErrorContext(r.Context(), "Failed to render template", slog.String("page", page), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.WarnContext(r.Context(), "Failed to write response", slog.String("error", err.Error()))
	}
}

// Error renders the error page.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := newView(r, http.StatusText(status), Flashes{})
	data.Status = status
	data.Message = message
	rd.Render(w, r, status, "error.html", data)
}

func respondJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}
