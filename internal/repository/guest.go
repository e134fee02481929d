package repository

import (
	"context"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/tmdb"
)

// GuestSessionRatings proxies rating reads and writes to the upstream
// guest-session rating endpoints instead of holding local state. The caller's
// guest session scopes every operation.
type GuestSessionRatings struct {
	client tmdb.Client
}

// NewGuestSessionRatings constructs an upstream-proxied rating store.
func NewGuestSessionRatings(client tmdb.Client) *GuestSessionRatings {
	return &GuestSessionRatings{client: client}
}

// Upsert submits the rating upstream and returns the session's rated list.
func (g *GuestSessionRatings) Upsert(ctx context.Context, sessionID string, entry domain.RatedMovie) ([]domain.RatedMovie, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if err := g.client.RateMovie(ctx, sessionID, entry.ID, entry.Rating); err != nil {
		return nil, err
	}
	return g.client.RatedMovies(ctx, sessionID)
}

// Delete removes the rating upstream and returns the session's rated list.
func (g *GuestSessionRatings) Delete(ctx context.Context, sessionID string, movieID int64) ([]domain.RatedMovie, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if err := g.client.DeleteRating(ctx, sessionID, movieID); err != nil {
		return nil, err
	}
	return g.client.RatedMovies(ctx, sessionID)
}

// List returns the session's rated movies from upstream.
func (g *GuestSessionRatings) List(ctx context.Context, sessionID string) ([]domain.RatedMovie, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	return g.client.RatedMovies(ctx, sessionID)
}
