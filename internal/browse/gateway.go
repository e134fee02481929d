package browse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
)

// Gateway is the server API surface the browser core depends on. SaveRating
// with value 0 removes the rating.
type Gateway interface {
	Search(ctx context.Context, query string, page int) (domain.SearchPage, error)
	CreateGuestSession(ctx context.Context) (domain.GuestSession, error)
	SaveRating(ctx context.Context, sessionID string, movie domain.Movie, value int) ([]domain.RatedMovie, error)
	RatedMovies(ctx context.Context, sessionID string) ([]domain.RatedMovie, error)
}

// APIGateway implements Gateway over HTTP against the search service.
type APIGateway struct {
	baseURL *url.URL
	client  *http.Client
}

// NewAPIGateway constructs a Gateway for the given server base URL. A zero
// timeout leaves the transport defaults in charge.
func NewAPIGateway(baseURL string, timeout time.Duration) (*APIGateway, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &APIGateway{
		baseURL: parsed,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type searchPayload struct {
	Movies     []domain.Movie `json:"movies"`
	TotalPages int            `json:"total_pages"`
}

type guestSessionPayload struct {
	GuestSessionID string `json:"guest_session_id"`
	ExpiresAt      string `json:"expires_at"`
}

type ratePayload struct {
	Message     string              `json:"message"`
	RatedMovies []domain.RatedMovie `json:"ratedMovies"`
}

type errorPayload struct {
	ErrorMessage string `json:"errorMessage"`
	Error        string `json:"error"`
}

// Search fetches one page of search results.
func (g *APIGateway) Search(ctx context.Context, query string, page int) (domain.SearchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var payload searchPayload
	if err := g.call(ctx, http.MethodGet, "/movies", params, "", nil, &payload); err != nil {
		return domain.SearchPage{}, err
	}
	return domain.SearchPage{Movies: payload.Movies, TotalPages: payload.TotalPages}, nil
}

// CreateGuestSession requests a guest session through the server.
func (g *APIGateway) CreateGuestSession(ctx context.Context) (domain.GuestSession, error) {
	var payload guestSessionPayload
	if err := g.call(ctx, http.MethodGet, "/guest-session", nil, "", nil, &payload); err != nil {
		return domain.GuestSession{}, err
	}
	expires, err := time.Parse(time.RFC3339, payload.ExpiresAt)
	if err != nil {
		return domain.GuestSession{}, fmt.Errorf("parse session expiry: %w", err)
	}
	return domain.GuestSession{ID: payload.GuestSessionID, ExpiresAt: expires}, nil
}

// SaveRating submits (or, with value 0, removes) a rating and returns the
// server's rated list.
func (g *APIGateway) SaveRating(ctx context.Context, sessionID string, movie domain.Movie, value int) ([]domain.RatedMovie, error) {
	body, err := json.Marshal(map[string]interface{}{
		"movieId":      movie.ID,
		"value":        value,
		"title":        movie.Title,
		"overview":     movie.Overview,
		"poster_path":  movie.PosterPath,
		"release_date": movie.ReleaseDate,
		"vote_average": movie.VoteAverage,
		"genre_ids":    movie.GenreIDs,
	})
	if err != nil {
		return nil, err
	}

	var payload ratePayload
	if err := g.call(ctx, http.MethodPost, "/rated-movies", nil, sessionID, body, &payload); err != nil {
		return nil, err
	}
	return payload.RatedMovies, nil
}

// RatedMovies fetches the authoritative rated list.
func (g *APIGateway) RatedMovies(ctx context.Context, sessionID string) ([]domain.RatedMovie, error) {
	var list []domain.RatedMovie
	if err := g.call(ctx, http.MethodGet, "/rated-movies", nil, sessionID, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (g *APIGateway) call(ctx context.Context, method, path string, params url.Values, sessionID string, body []byte, dst interface{}) error {
	rel := &url.URL{Path: path}
	if params != nil {
		rel.RawQuery = params.Encode()
	}
	endpoint := g.baseURL.ResolveReference(rel)

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
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set("X-Guest-Session", sessionID)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure errorPayload
		if decodeErr := json.NewDecoder(resp.Body).Decode(&failure); decodeErr == nil {
			if failure.ErrorMessage != "" {
				return fmt.Errorf("%s", failure.ErrorMessage)
			}
			if failure.Error != "" {
				return fmt.Errorf("%s", failure.Error)
			}
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode server response: %w", err)
	}
	return nil
}
