// internal/clients/film_api_client.go
package clients

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

// FilmAPIClient talks to the remote film catalog over HTTP.
// Each operation makes exactly one attempt bounded by DefaultTimeout.
type FilmAPIClient struct {
	remote
}

// NewFilmAPIClient creates a client for the catalog served at baseURL.
// A nil httpClient falls back to a plain *http.Client.
func NewFilmAPIClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *FilmAPIClient {
	return &FilmAPIClient{remote: newRemote(baseURL, httpClient, logger)}
}

func (c *FilmAPIClient) filmsURL() string {
	return c.baseURL + "/films"
}

func (c *FilmAPIClient) filmURL(id int) string {
	return c.baseURL + "/films/" + strconv.Itoa(id)
}

// ListFilms fetches the whole catalog.
func (c *FilmAPIClient) ListFilms(ctx context.Context, token string) ([]domain.Film, error) {
	var films []domain.Film
	if err := c.call(ctx, "list films", http.MethodGet, c.filmsURL(), token, nil, &films); err != nil {
		return nil, err
	}
	if films == nil {
		films = []domain.Film{}
	}
	c.logger.InfoContext(ctx, "Films retrieved from API", slog.Int("count", len(films)))
	return films, nil
}

// GetFilm fetches one film. A missing film yields an error matching ErrNotFound.
func (c *FilmAPIClient) GetFilm(ctx context.Context, token string, id int) (*domain.Film, error) {
	return c.callFilm(ctx, "get film", http.MethodGet, c.filmURL(id), token, nil)
}

// CreateFilm posts a new film and returns the catalog's copy of it.
func (c *FilmAPIClient) CreateFilm(ctx context.Context, token string, in domain.FilmInput) (*domain.Film, error) {
	payload := ToAPIPayload(in)
	c.logger.DebugContext(ctx, "Creating film", slog.String("url", c.filmsURL()), slog.Any("data", payload))

	film, err := c.callFilm(ctx, "create film", http.MethodPost, c.filmsURL(), token, payload)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "Film created", slog.Int("filmID", film.Key()), slog.String("title", film.Title))
	return film, nil
}

// UpdateFilm replaces the film with the given id.
func (c *FilmAPIClient) UpdateFilm(ctx context.Context, token string, id int, in domain.FilmInput) (*domain.Film, error) {
	payload := ToAPIPayload(in)
	c.logger.DebugContext(ctx, "Updating film", slog.String("url", c.filmURL(id)), slog.Int("filmID", id), slog.Any("data", payload))

	film, err := c.callFilm(ctx, "update film", http.MethodPut, c.filmURL(id), token, payload)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "Film updated", slog.Int("filmID", id))
	return film, nil
}

// DeleteFilm removes the film with the given id. A nil error means success.
func (c *FilmAPIClient) DeleteFilm(ctx context.Context, token string, id int) error {
	if err := c.call(ctx, "delete film", http.MethodDelete, c.filmURL(id), token, nil, nil); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Film deleted", slog.Int("filmID", id))
	return nil
}

// callFilm performs a call answered by a single film. A JSON null body is
// not a film and is reported as a TransportError.
func (c *FilmAPIClient) callFilm(ctx context.Context, op, method, url, token string, payload any) (*domain.Film, error) {
	var film *domain.Film
	if err := c.call(ctx, op, method, url, token, payload, &film); err != nil {
		return nil, err
	}
	if film == nil {
		c.logger.ErrorContext(ctx, "Film API answered without a film", slog.String("op", op), slog.String("url", url))
		return nil, &TransportError{Op: op, URL: url, Err: ErrEmptyBody}
	}
	return film, nil
}
