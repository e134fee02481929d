package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
)

// expiresAtLayout is the timestamp format TMDB uses on guest sessions,
// e.g. "2016-08-27 16:26:40 UTC".
const expiresAtLayout = "2006-01-02 15:04:05 MST"

// StatusError reports a non-2xx upstream response with its status preserved
// so callers can mirror it for diagnostics.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: upstream returned %d", e.Code)
}

// Client defines the contract for querying the upstream TMDB API.
type Client interface {
	SearchMovies(ctx context.Context, query string, page int) (domain.SearchPage, error)
	Genres(ctx context.Context) ([]domain.Genre, error)
	CreateGuestSession(ctx context.Context) (domain.GuestSession, error)
	RateMovie(ctx context.Context, sessionID string, movieID int64, value int) error
	DeleteRating(ctx context.Context, sessionID string, movieID int64) error
	RatedMovies(ctx context.Context, sessionID string) ([]domain.RatedMovie, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHTTPClient constructs a new HTTP-backed TMDB client. reqsPerSec caps the
// outbound request rate; TMDB throttles clients that exceed its quota.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, reqsPerSec int, logger *zap.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	if reqsPerSec <= 0 {
		reqsPerSec = 40
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(reqsPerSec), reqsPerSec),
		logger:  logger,
	}, nil
}

type searchResponse struct {
	Page       int            `json:"page"`
	Results    []domain.Movie `json:"results"`
	TotalPages int            `json:"total_pages"`
}

type genresResponse struct {
	Genres []domain.Genre `json:"genres"`
}

type guestSessionResponse struct {
	Success        bool   `json:"success"`
	GuestSessionID string `json:"guest_session_id"`
	ExpiresAt      string `json:"expires_at"`
}

type ratedMoviesResponse struct {
	Results []ratedMovieEntry `json:"results"`
}

type ratedMovieEntry struct {
	domain.Movie
	Rating float64 `json:"rating"`
}

// SearchMovies queries /search/movie for the given query and page.
func (c *HTTPClient) SearchMovies(ctx context.Context, query string, page int) (domain.SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var payload searchResponse
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return domain.SearchPage{}, err
	}
	if payload.Results == nil {
		payload.Results = []domain.Movie{}
	}
	return domain.SearchPage{Movies: payload.Results, TotalPages: payload.TotalPages}, nil
}

// Genres fetches the movie genre list.
func (c *HTTPClient) Genres(ctx context.Context) ([]domain.Genre, error) {
	var payload genresResponse
	if err := c.get(ctx, "/genre/movie/list", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

// CreateGuestSession requests a fresh guest session and converts the upstream
// expiry into an absolute timestamp.
func (c *HTTPClient) CreateGuestSession(ctx context.Context) (domain.GuestSession, error) {
	var payload guestSessionResponse
	if err := c.get(ctx, "/authentication/guest_session/new", nil, &payload); err != nil {
		return domain.GuestSession{}, err
	}
	if payload.GuestSessionID == "" {
		return domain.GuestSession{}, fmt.Errorf("tmdb: empty guest session id")
	}
	expires, err := parseExpiresAt(payload.ExpiresAt)
	if err != nil {
		return domain.GuestSession{}, err
	}
	return domain.GuestSession{ID: payload.GuestSessionID, ExpiresAt: expires}, nil
}

// RateMovie submits a rating for a movie on behalf of a guest session.
func (c *HTTPClient) RateMovie(ctx context.Context, sessionID string, movieID int64, value int) error {
	params := url.Values{}
	params.Set("guest_session_id", sessionID)
	body, err := json.Marshal(map[string]float64{"value": float64(value)})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/movie/%d/rating", movieID), params, body, nil)
}

// DeleteRating removes a guest session's rating for a movie.
func (c *HTTPClient) DeleteRating(ctx context.Context, sessionID string, movieID int64) error {
	params := url.Values{}
	params.Set("guest_session_id", sessionID)
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/movie/%d/rating", movieID), params, nil, nil)
}

// RatedMovies lists all movies the guest session has rated.
func (c *HTTPClient) RatedMovies(ctx context.Context, sessionID string) ([]domain.RatedMovie, error) {
	var payload ratedMoviesResponse
	path := fmt.Sprintf("/guest_session/%s/rated/movies", url.PathEscape(sessionID))
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return nil, err
	}
	rated := make([]domain.RatedMovie, 0, len(payload.Results))
	for _, entry := range payload.Results {
		rated = append(rated, domain.RatedMovie{Movie: entry.Movie, Rating: int(entry.Rating)})
	}
	return rated, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, dst interface{}) error {
	return c.do(ctx, http.MethodGet, path, params, nil, dst)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body []byte, dst interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	rel := &url.URL{Path: path, RawQuery: params.Encode()}
	endpoint := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=utf-8")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if dst == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode tmdb response: %w", err)
		}
		return nil
	default:
		c.logger.Warn("tmdb unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path))
		return &StatusError{Code: resp.StatusCode}
	}
}

func parseExpiresAt(raw string) (time.Time, error) {
	if ts, err := time.Parse(expiresAtLayout, raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse guest session expiry %q: %w", raw, err)
	}
	return ts.UTC(), nil
}
