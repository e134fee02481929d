package domain

// RatedMovie associates a movie with a single user's rating. Ratings are
// keyed by movie ID with last-write-wins semantics; a value of 0 means the
// rating was removed.
type RatedMovie struct {
	Movie
	Rating int `json:"value"`
}

// RatingStatus tags the lifecycle of an optimistic rating write so stale
// local state is never silently indistinguishable from confirmed state.
type RatingStatus string

const (
	RatingPending   RatingStatus = "pending"
	RatingConfirmed RatingStatus = "confirmed"
	RatingFailed    RatingStatus = "failed"
)
