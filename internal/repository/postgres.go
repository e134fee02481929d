package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
)

// PostgresRatings persists rated movies in Postgres. Insertion order is
// recovered from created_at so listings match the in-memory backend.
type PostgresRatings struct {
	pool *pgxpool.Pool
}

// NewPostgresRatings constructs a Postgres-backed rating store.
func NewPostgresRatings(pool *pgxpool.Pool) *PostgresRatings {
	return &PostgresRatings{pool: pool}
}

const ratedColumns = `
    movie_id,
    title,
    overview,
    poster_path,
    release_date,
    vote_average,
    genre_ids,
    rating
`

// Upsert inserts or updates the rating row for the movie, then returns the
// full list.
func (p *PostgresRatings) Upsert(ctx context.Context, sessionID string, entry domain.RatedMovie) ([]domain.RatedMovie, error) {
	const query = `
        INSERT INTO rated_movies (movie_id, title, overview, poster_path, release_date, vote_average, genre_ids, rating)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (movie_id)
        DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
    `
	genreIDs := entry.GenreIDs
	if genreIDs == nil {
		genreIDs = []int32{}
	}
	_, err := p.pool.Exec(ctx, query,
		entry.ID,
		entry.Title,
		entry.Overview,
		entry.PosterPath,
		entry.ReleaseDate,
		entry.VoteAverage,
		genreIDs,
		entry.Rating,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return p.List(ctx, sessionID)
}

// Delete removes the rating row for the movie, then returns the full list.
func (p *PostgresRatings) Delete(ctx context.Context, sessionID string, movieID int64) ([]domain.RatedMovie, error) {
	if _, err := p.pool.Exec(ctx, `DELETE FROM rated_movies WHERE movie_id = $1`, movieID); err != nil {
		return nil, fmt.Errorf("delete rating: %w", err)
	}
	return p.List(ctx, sessionID)
}

// List returns every rated movie ordered by first rating time.
func (p *PostgresRatings) List(ctx context.Context, _ string) ([]domain.RatedMovie, error) {
	query := fmt.Sprintf(`SELECT %s FROM rated_movies ORDER BY created_at, movie_id`, ratedColumns)
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	rated := make([]domain.RatedMovie, 0)
	for rows.Next() {
		var entry domain.RatedMovie
		if err := rows.Scan(
			&entry.ID,
			&entry.Title,
			&entry.Overview,
			&entry.PosterPath,
			&entry.ReleaseDate,
			&entry.VoteAverage,
			&entry.GenreIDs,
			&entry.Rating,
		); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		rated = append(rated, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rated, nil
}
