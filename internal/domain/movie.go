package domain

// Movie mirrors the subset of the TMDB search payload this service exposes.
// Instances are transient: fetched per page request and discarded on the next
// fetch, never cached across pages.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int32 `json:"genre_ids"`
}

// Genre is a TMDB genre entry used to resolve GenreIDs for display.
type Genre struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// SearchPage is one page of search results plus the upstream page count.
type SearchPage struct {
	Movies     []Movie `json:"movies"`
	TotalPages int     `json:"total_pages"`
}
