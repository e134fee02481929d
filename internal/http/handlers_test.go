package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/config"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/repository"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/tmdb"
)

// fakeTMDB is a stub upstream client for handler tests.
type fakeTMDB struct {
	lastQuery  string
	lastPage   int
	page       domain.SearchPage
	searchErr  error
	genres     []domain.Genre
	genresErr  error
	session    domain.GuestSession
	sessionErr error
}

func (f *fakeTMDB) SearchMovies(ctx context.Context, query string, page int) (domain.SearchPage, error) {
	f.lastQuery = query
	f.lastPage = page
	if f.searchErr != nil {
		return domain.SearchPage{}, f.searchErr
	}
	return f.page, nil
}

func (f *fakeTMDB) Genres(ctx context.Context) ([]domain.Genre, error) {
	return f.genres, f.genresErr
}

func (f *fakeTMDB) CreateGuestSession(ctx context.Context) (domain.GuestSession, error) {
	if f.sessionErr != nil {
		return domain.GuestSession{}, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeTMDB) RateMovie(ctx context.Context, sessionID string, movieID int64, value int) error {
	return nil
}

func (f *fakeTMDB) DeleteRating(ctx context.Context, sessionID string, movieID int64) error {
	return nil
}

func (f *fakeTMDB) RatedMovies(ctx context.Context, sessionID string) ([]domain.RatedMovie, error) {
	return nil, nil
}

func buildTestServer(t *testing.T, client tmdb.Client, ratings repository.RatingStore) *Server {
	t.Helper()
	cfg := config.Config{
		Port:             "0",
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
	}
	if ratings == nil {
		ratings = repository.NewMemoryRatings()
	}
	return New(cfg, nil, ratings, client, zap.NewNop())
}

func doRequest(srv *Server, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSearchMoviesSuccess(t *testing.T) {
	fake := &fakeTMDB{page: domain.SearchPage{
		Movies: []domain.Movie{
			{ID: 5, Title: "The Return"},
			{ID: 6, Title: "Return to Sender"},
		},
		TotalPages: 1,
	}}
	srv := buildTestServer(t, fake, nil)

	rec := doRequest(srv, http.MethodGet, "/movies?query=return&page=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload searchEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Movies, 2)
	assert.Equal(t, 1, payload.TotalPages)
	assert.Equal(t, "return", fake.lastQuery)
	assert.Equal(t, 1, fake.lastPage)
}

func TestSearchMoviesDefaultsQuery(t *testing.T) {
	fake := &fakeTMDB{}
	srv := buildTestServer(t, fake, nil)

	rec := doRequest(srv, http.MethodGet, "/movies", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultQuery, fake.lastQuery)
	assert.Equal(t, 1, fake.lastPage)
}

func TestSearchMoviesMirrorsUpstreamStatus(t *testing.T) {
	fake := &fakeTMDB{searchErr: &tmdb.StatusError{Code: http.StatusNotFound}}
	srv := buildTestServer(t, fake, nil)

	rec := doRequest(srv, http.MethodGet, "/movies?query=zzz", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var payload errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload.ErrorMessage, "404")
}

func TestSearchMoviesTransportFailure(t *testing.T) {
	fake := &fakeTMDB{searchErr: errors.New("connection refused")}
	srv := buildTestServer(t, fake, nil)

	rec := doRequest(srv, http.MethodGet, "/movies?query=return", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "could not retrieve data from TMDB", payload.ErrorMessage)
}

func TestSearchMoviesInvalidPage(t *testing.T) {
	srv := buildTestServer(t, &fakeTMDB{}, nil)

	for _, target := range []string{"/movies?page=abc", "/movies?page=0", "/movies?page=-2"} {
		rec := doRequest(srv, http.MethodGet, target, nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGuestSessionSuccess(t *testing.T) {
	expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeTMDB{session: domain.GuestSession{ID: "abc123", ExpiresAt: expires}}
	srv := buildTestServer(t, fake, nil)

	rec := doRequest(srv, http.MethodGet, "/guest-session", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload guestSessionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "abc123", payload.GuestSessionID)
	assert.Equal(t, "2026-09-01T12:00:00Z", payload.ExpiresAt)
}

func TestGuestSessionFailure(t *testing.T) {
	fake := &fakeTMDB{sessionErr: errors.New("upstream down")}
	srv := buildTestServer(t, fake, nil)

	rec := doRequest(srv, http.MethodGet, "/guest-session", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "failed to create guest session", payload["error"])
}

func TestSaveRatingUpsertAndList(t *testing.T) {
	srv := buildTestServer(t, &fakeTMDB{}, nil)

	body := []byte(`{"movieId":5,"value":8,"title":"The Return","vote_average":7.1}`)
	rec := doRequest(srv, http.MethodPost, "/rated-movies", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload rateEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Rating saved", payload.Message)
	require.Len(t, payload.RatedMovies, 1)
	assert.Equal(t, int64(5), payload.RatedMovies[0].ID)
	assert.Equal(t, 8, payload.RatedMovies[0].Rating)

	// Re-rating overwrites, not duplicates.
	body = []byte(`{"movieId":5,"value":3,"title":"The Return"}`)
	rec = doRequest(srv, http.MethodPost, "/rated-movies", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.RatedMovies, 1)
	assert.Equal(t, 3, payload.RatedMovies[0].Rating)

	rec = doRequest(srv, http.MethodGet, "/rated-movies", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.RatedMovie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Rating)
}

func TestSaveRatingZeroDeletes(t *testing.T) {
	srv := buildTestServer(t, &fakeTMDB{}, nil)

	body := []byte(`{"movieId":5,"value":8,"title":"The Return"}`)
	rec := doRequest(srv, http.MethodPost, "/rated-movies", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body = []byte(`{"movieId":5,"value":0,"title":"The Return"}`)
	rec = doRequest(srv, http.MethodPost, "/rated-movies", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload rateEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Rating removed", payload.Message)
	assert.Empty(t, payload.RatedMovies)
}

func TestSaveRatingValidation(t *testing.T) {
	srv := buildTestServer(t, &fakeTMDB{}, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"value above range", `{"movieId":5,"value":11,"title":"X"}`, http.StatusUnprocessableEntity},
		{"missing movie id", `{"value":5,"title":"X"}`, http.StatusUnprocessableEntity},
		{"missing title", `{"movieId":5,"value":5}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"movieId":5,}`, http.StatusUnprocessableEntity},
		{"empty body", ``, http.StatusUnprocessableEntity},
		{"unknown field", `{"movieId":5,"value":5,"title":"X","bogus":true}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/rated-movies", []byte(tt.body), nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSaveRatingNoSessionWithGuestBackend(t *testing.T) {
	store := repository.NewGuestSessionRatings(&fakeTMDB{})
	srv := buildTestServer(t, &fakeTMDB{}, store)

	body := []byte(`{"movieId":5,"value":8,"title":"The Return"}`)
	rec := doRequest(srv, http.MethodPost, "/rated-movies", body, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var payload errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "guest session required", payload.ErrorMessage)
}

func TestHealthz(t *testing.T) {
	srv := buildTestServer(t, &fakeTMDB{}, nil)
	rec := doRequest(srv, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
