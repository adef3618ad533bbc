package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Victorissad/Mario-VIS/internal/clients"
	"github.com/Victorissad/Mario-VIS/internal/domain"
	"github.com/Victorissad/Mario-VIS/internal/store"
)

const testSessionKey = "test-session-key-0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFilms is an in-memory FilmService.
type fakeFilms struct {
	mu sync.Mutex

	films     map[int]domain.Film
	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	tokens  []string
	created []domain.FilmInput
	updated map[int]domain.FilmInput
	deleted []int
}

func newFakeFilms(films ...domain.Film) *fakeFilms {
	f := &fakeFilms{films: make(map[int]domain.Film), updated: make(map[int]domain.FilmInput)}
	for _, film := range films {
		f.films[film.Key()] = film
	}
	return f
}

func (f *fakeFilms) seen(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeFilms) ListFilms(ctx context.Context, token string) ([]domain.Film, error) {
	f.seen(token)
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Film, 0, len(f.films))
	for _, film := range f.films {
		out = append(out, film)
	}
	return out, nil
}

func (f *fakeFilms) GetFilm(ctx context.Context, token string, id int) (*domain.Film, error) {
	f.seen(token)
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	film, ok := f.films[id]
	if !ok {
		return nil, &clients.RemoteError{Op: "get film", StatusCode: http.StatusNotFound}
	}
	return &film, nil
}

func (f *fakeFilms) CreateFilm(ctx context.Context, token string, in domain.FilmInput) (*domain.Film, error) {
	f.seen(token)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	film := domain.Film{FilmID: 1000 + len(f.created), Title: in.Title}
	return &film, nil
}

func (f *fakeFilms) UpdateFilm(ctx context.Context, token string, id int, in domain.FilmInput) (*domain.Film, error) {
	f.seen(token)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = in
	film := domain.Film{FilmID: id, Title: in.Title}
	return &film, nil
}

func (f *fakeFilms) DeleteFilm(ctx context.Context, token string, id int) error {
	f.seen(token)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeFilms) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

// fakeAuth accepts every credential unless err is set.
type fakeAuth struct {
	token string
	err   error
}

func (a *fakeAuth) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	token := a.token
	if token == "" {
		token = "tok-123"
	}
	return &domain.LoginResult{Token: token, Email: email}, nil
}

type testApp struct {
	handler  http.Handler
	sessions *Sessions
	store    *store.MemorySessionStore
}

func newTestApp(t *testing.T, films FilmService, auth Authenticator, cfg RouterConfig) *testApp {
	t.Helper()
	logger := discardLogger()
	views, err := NewRenderer(logger)
	require.NoError(t, err)

	memStore := store.NewMemorySessionStore(logger)
	sessions := NewSessions([]byte(testSessionKey), false, time.Hour, memStore, logger)
	v := NewValidator()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	handler := NewHTTPRouter(ctx,
		NewFilmHandler(films, sessions, views, v, logger),
		NewAuthHandler(auth, sessions, views, v, logger),
		sessions, views, logger, cfg,
	)
	return &testApp{handler: handler, sessions: sessions, store: memStore}
}

// browser keeps cookies between requests.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, handler: h, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form, nil)
}

func (b *browser) login() {
	b.t.Helper()
	rec := b.post("/login", url.Values{"email": {"mario@example.com"}, "password": {"secret"}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(b.t, "/films", rec.Header().Get("Location"))
}
