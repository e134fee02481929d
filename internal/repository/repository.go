package repository

import (
	"context"
	"errors"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
)

// ErrNoSession indicates a backend that scopes ratings to a guest session was
// called without one.
var ErrNoSession = errors.New("repository: guest session required")

// RatingStore is the injected rating store owned by the composition root.
// Entries are keyed by movie ID with find-or-append semantics: at most one
// entry per movie, insertion order preserved, values overwritten on
// resubmission. sessionID scopes the list for backends that proxy to the
// upstream guest-session API; the local backends ignore it.
type RatingStore interface {
	Upsert(ctx context.Context, sessionID string, entry domain.RatedMovie) ([]domain.RatedMovie, error)
	Delete(ctx context.Context, sessionID string, movieID int64) ([]domain.RatedMovie, error)
	List(ctx context.Context, sessionID string) ([]domain.RatedMovie, error)
}
